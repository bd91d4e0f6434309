package fundval

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Color is a 24-bit RGB color.
type Color struct{ R, G, B uint8 }

// Hex returns the css hex form, e.g. "#ff2c2c".
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// MarshalJSON renders the color as its hex string.
func (c Color) MarshalJSON() ([]byte, error) { return []byte(`"` + c.Hex() + `"`), nil }

// UnmarshalJSON parses a "#rrggbb" string.
func (c *Color) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	var r, g, bl uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &bl); err != nil {
		return fmt.Errorf("invalid color %q: %w", s, err)
	}
	*c = Color{r, g, bl}
	return nil
}

var (
	colorWhite    = Color{255, 255, 255}
	colorBlack    = Color{0, 0, 0}
	colorFundUp   = Color{0, 230, 18}
	colorFundDown = Color{255, 44, 44}
)

func scoreChannel(score float64, channel uint8) uint8 {
	v := math.Round(255 + score*(float64(channel)-255))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// gainColor interpolates between white and the profit or loss base color,
// scaled by the most extreme gain observed across all funds. Zero gain, or a
// degenerate range, is white.
func gainColor(gain, min, max float64) Color {
	base := colorFundDown
	rangeEnd := min
	if gain > 0 {
		base = colorFundUp
		rangeEnd = max
	}
	if gain == 0 || rangeEnd == 0 {
		return colorWhite
	}
	score := gain / rangeEnd
	return Color{
		R: scoreChannel(score, base.R),
		G: scoreChannel(score, base.G),
		B: scoreChannel(score, base.B),
	}
}

var fundNameNoise = regexp.MustCompile(`(?i)\s*\([^)]*\)|\b(fund|trust|index|class|accum\.?|inc\.?|shares)\b|[.%]`)

// abbreviateFundName strips share-class noise from a fund name so that the
// same underlying holding keys to the same color across name variants.
func abbreviateFundName(name string) string {
	short := fundNameNoise.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(short), " ")
}

// colorKey assigns a stable, reasonably distinct color to a name.
func colorKey(name string) Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()
	c := Color{
		R: uint8(sum >> 16),
		G: uint8(sum >> 8),
		B: uint8(sum),
	}
	// keep it dark enough to read against a white chart background
	if int(c.R)+int(c.G)+int(c.B) > 600 {
		c.R /= 2
		c.G /= 2
		c.B /= 2
	}
	return c
}
