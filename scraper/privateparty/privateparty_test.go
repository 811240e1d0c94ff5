package privateparty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sheezylodhi/Scrapper/config"
)

func TestPhoneNearContactWord(t *testing.T) {
	t.Parallel()

	a := New(config.DefaultConfig())

	t.Run("accepted near contact words", func(t *testing.T) {
		got := a.phoneNearContactWord("Clean title, runs great. Contact the owner at 630-943-7111 for a test drive.")
		assert.Equal(t, "630-943-7111", got)
	})

	t.Run("rejected without contact words nearby", func(t *testing.T) {
		got := a.phoneNearContactWord("Reference number for this unit is 630-943-7111 per the dealer sheet.")
		assert.Empty(t, got)
	})

	t.Run("template support number skipped", func(t *testing.T) {
		got := a.phoneNearContactWord("Questions about the site? Call 775-323-4478. The seller's mobile is 630-943-7111.")
		assert.Equal(t, "630-943-7111", got)
	})

	t.Run("no digits", func(t *testing.T) {
		assert.Empty(t, a.phoneNearContactWord("garage kept, adult owned"))
	})
}
