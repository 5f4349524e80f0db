package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", Colorize(Red, "danger"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mlevel: 3\033[0m", Colorf(Green, "level: %d", 3))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
	assert.Equal(t, "plain text", StripANSI("plain text"))
	assert.Equal(t, "", StripANSI(""))
	assert.Equal(t, "broken \033[31", StripANSI("broken \033[31"), "unterminated sequences are kept")
}

func TestStyler(t *testing.T) {
	assert.Equal(t, "warn", Styler{}.Paint(Yellow, "warn"))
	assert.Equal(t, Colorize(Yellow, "warn"), Styler{Enabled: true}.Paint(Yellow, "warn"))
	assert.Equal(t, "3 of 4", Styler{}.Paintf(Cyan, "%d of %d", 3, 4))
}

// Property: StripANSI(Colorize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Blue, Yellow, Cyan, Magenta, White, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		color := rapid.SampledFrom(colors).Draw(t, "color")
		assert.Equal(t, text, StripANSI(Colorize(color, text)))
	})
}

// Property: StripANSI output never contains ESC character.
func TestPropertyStripANSINoEscapeInOutput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,30}`).Draw(t, "text")
		out := StripANSI(Colorf(BrightYellow, "%s", text) + Colorize(Bold, text))
		if strings.ContainsRune(out, '\033') {
			t.Fatalf("escape left in %q", out)
		}
	})
}
