package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneSpelledOutWithCue(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	got := e.Phone("Great runner. Call nine zero eight five five five one two one two anytime")
	assert.Equal(t, "908-555-1212", got)
}

func TestPhoneTensAndTeens(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	got := e.Phone("text me at nine zero eight five fifty-five twelve twelve")
	assert.Equal(t, "908-555-1212", got)
}

func TestPhoneCueWinsOverNonPhoneContext(t *testing.T) {
	t.Parallel()

	// cue word and VIN/price/year noise in the same fragment: the cue
	// makes the fragment scannable, and short digit runs are discarded
	e := NewExtractor()
	got := e.Phone("VIN 1FAHP3F2 price $22,500 year 2015, call 630 943 7111")
	assert.Equal(t, "630-943-7111", got)
}

func TestPhoneRejectsCuelessNonPhoneContext(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Empty(t, e.Phone("VIN 1HGBH41JXMN109186, mileage 120000 miles"))
}

func TestPhonePlainShapeFallback(t *testing.T) {
	t.Parallel()

	// the fragment is context-rejected (no cue, has "year"), but the
	// conventional shape still matches over the raw text
	e := NewExtractor()
	got := e.Phone("Great car 908-555-1212 year 2015 low miles")
	assert.Equal(t, "908-555-1212", got)
}

func TestPhonePrefersPlausibleAreaCode(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	got := e.Phone("call 123 456 7890 or 908 555 1212")
	assert.Equal(t, "908-555-1212", got)
}

func TestPhoneBareSevenDigits(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Equal(t, "555-1212", e.Phone("call 555 1212"))
}

func TestPhoneObfuscatedWithOhs(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Equal(t, "908-555-1209", e.Phone("contact me: 9o8 555 12o9"))
}

func TestPhoneEmojiDigits(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Equal(t, "908-555-1212", e.Phone("call ⑨⓪⑧ ⑤⑤⑤ ①②①②"))
}

func TestPhoneDenylist(t *testing.T) {
	t.Parallel()

	e := NewExtractor("775-323-4478")
	assert.Empty(t, e.Phone("Questions? Call 775-323-4478"))

	// a real number alongside the template one still comes back
	got := e.Phone("Call 775-323-4478 or reach the owner at 630 943 7111")
	assert.Equal(t, "630-943-7111", got)
}

func TestPhoneElevenDigitCountryCode(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Equal(t, "1-908-555-1212", e.Phone("call 1 908 555 1212"))
}

func TestPhoneEmptyAndNoDigits(t *testing.T) {
	t.Parallel()

	e := NewExtractor()
	assert.Empty(t, e.Phone(""))
	assert.Empty(t, e.Phone("clean low mileage garage kept"))
}

func TestEmail(t *testing.T) {
	t.Parallel()

	e := NewExtractor()

	assert.Equal(t, "seller@example.com", e.Email("write to seller@example.com today"))
	assert.Equal(t, "john.doe@example.com", e.Email("john [dot] doe [at] example [dot] com"))
	assert.Equal(t, "jane@cars.net", e.Email("jane (at) cars (dot) net"))
	assert.Equal(t, "bob@mail.org", e.Email("reach bob at mail dot org"))
	assert.Empty(t, e.Email("no address in this text"))
	assert.Empty(t, e.Email(""))
}
