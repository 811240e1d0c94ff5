package contact

import (
	"regexp"
	"strings"
)

// Heuristics stay an ordered rule list on purpose: new exception
// patterns slot in without destabilizing existing matches.
//
// Precedence rule, applied uniformly for every site: a fragment carrying
// an explicit contact-cue word is always scanned, even when it also
// matches the non-phone-context pattern. Context rejection only ever
// discards cue-less fragments.

var (
	fragmentRe = regexp.MustCompile(`[\n.?!;]+`)

	cueRe = regexp.MustCompile(
		`(?i)\b(call|text|contact|reach|phone|cell|number|msg|message|reply)\b`)

	// digit runs that look like phones but aren't: VINs, odometer
	// readings, prices, model years, stock numbers
	nonPhoneRe = regexp.MustCompile(
		`(?i)\b(vin|mileage|miles|odometer|price|msrp|engine|stock\s*(?:no\.?|number|#)?|model\s+year|year)\b`)

	// digit run inside normalized text; spaces and dashes may separate
	// the groups
	digitRunRe = regexp.MustCompile(`\d(?:[\d \-]*\d)?`)

	// last-resort conventional shape over the raw text
	plainPhoneRe = regexp.MustCompile(
		`(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	emailRe = regexp.MustCompile(
		`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	atTokenRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*\[at\]\s*`),
		regexp.MustCompile(`(?i)\s*\(at\)\s*`),
		regexp.MustCompile(`(?i)\s+at\s+`),
	}
	dotTokenRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*\[dot\]\s*`),
		regexp.MustCompile(`(?i)\s*\(dot\)\s*`),
		regexp.MustCompile(`(?i)\s+dot\s+`),
	}
)

// Extractor pulls at most one phone and one email out of a free-text
// blob. The denylist holds normalized digit strings that are known
// template noise on a site (a support number printed on every page) and
// must never be reported as a seller contact.
type Extractor struct {
	deny map[string]bool
}

func NewExtractor(denyNumbers ...string) *Extractor {
	deny := make(map[string]bool, len(denyNumbers))
	for _, n := range denyNumbers {
		deny[DigitsOnly(n)] = true
	}
	return &Extractor{deny: deny}
}

// Phone returns the best-guess phone number formatted for display, or ""
// when the text holds nothing plausible. Absence is not an error.
func (e *Extractor) Phone(text string) string {
	if text == "" {
		return ""
	}

	fragments := fragmentRe.Split(text, -1)

	// pass 1: cue-bearing fragments win outright
	for _, frag := range fragments {
		if !cueRe.MatchString(frag) {
			continue
		}
		if d := e.candidate(frag); d != "" {
			return FormatPhone(d)
		}
	}

	// pass 2: cue-less fragments, minus non-phone context
	for _, frag := range fragments {
		if cueRe.MatchString(frag) || nonPhoneRe.MatchString(frag) {
			continue
		}
		if d := e.candidate(frag); d != "" {
			return FormatPhone(d)
		}
	}

	// pass 3: conventional NNN-NNN-NNNN anywhere in the raw text
	for _, m := range plainPhoneRe.FindAllString(text, -1) {
		d := DigitsOnly(m)
		if !e.deny[d] {
			return FormatPhone(d)
		}
	}

	return ""
}

// candidate normalizes one fragment and returns the most plausible digit
// run in it, or "".
func (e *Extractor) candidate(frag string) string {
	norm := DeobfuscateDigits(frag)
	if norm == "" {
		return ""
	}

	var bareSeven, other string
	for _, run := range digitRunRe.FindAllString(norm, -1) {
		d := DigitsOnly(run)
		if len(d) < 7 || len(d) > 15 || e.deny[d] {
			continue
		}
		switch {
		case len(d) == 10 && isAreaCode(d[0]):
			return d
		case len(d) == 11 && d[0] == '1' && isAreaCode(d[1]):
			return d
		case len(d) == 7 && bareSeven == "":
			bareSeven = d
		case other == "":
			other = d
		}
	}
	if bareSeven != "" {
		return bareSeven
	}
	return other
}

// NANP area codes never start with 0 or 1.
func isAreaCode(b byte) bool {
	return b >= '2' && b <= '9'
}

// Email de-obfuscates [at]/[dot]-style tokens and returns the first
// address in the text, or "".
func (e *Extractor) Email(text string) string {
	if text == "" {
		return ""
	}
	s := text
	for _, re := range atTokenRes {
		s = re.ReplaceAllString(s, "@")
	}
	for _, re := range dotTokenRes {
		s = re.ReplaceAllString(s, ".")
	}
	return strings.TrimSpace(emailRe.FindString(s))
}
