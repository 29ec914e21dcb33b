// Package palette maps the symbolic token color names used by seal layouts to
// RGB hex values, and picks legible foreground colors for text drawn on top
// of a token.
//
// Lookups never fail: an unknown or empty name resolves to [White], so a
// single bad color in a layout can only make one token plainer.
package palette

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Fixed colors used by the compositor itself.
const (
	White = "#FFFFFF"
	Black = "#000000"
	Gold  = "#D4AF37"
)

// luminanceThreshold splits light from dark fills for text contrast.
const luminanceThreshold = 0.5

// named is the closed set of colors produced by upstream token generation.
var named = map[string]string{
	"RED":       "#E53935",
	"CRIMSON":   "#DC143C",
	"RUBY":      "#9B111E",
	"MAROON":    "#800000",
	"ROSE":      "#FF007F",
	"PINK":      "#FFC0CB",
	"MAGENTA":   "#FF00FF",
	"CORAL":     "#FF7F50",
	"SALMON":    "#FA8072",
	"ORANGE":    "#FF8C00",
	"AMBER":     "#FFBF00",
	"YELLOW":    "#FFEB3B",
	"GOLD":      Gold,
	"BEIGE":     "#F5F5DC",
	"IVORY":     "#FFFFF0",
	"OLIVE":     "#808000",
	"LIME":      "#32CD32",
	"GREEN":     "#43A047",
	"EMERALD":   "#50C878",
	"TEAL":      "#008080",
	"TURQUOISE": "#40E0D0",
	"AQUA":      "#00FFFF",
	"CYAN":      "#00BCD4",
	"BLUE":      "#1E88E5",
	"SAPPHIRE":  "#0F52BA",
	"NAVY":      "#000080",
	"INDIGO":    "#4B0082",
	"VIOLET":    "#8F00FF",
	"PURPLE":    "#8E24AA",
	"LAVENDER":  "#E6E6FA",
	"BROWN":     "#795548",
	"COPPER":    "#B87333",
	"BRONZE":    "#CD7F32",
	"SILVER":    "#C0C0C0",
	"GRAY":      "#9E9E9E",
	"GREY":      "#9E9E9E",
	"WHITE":     White,
	"BLACK":     Black,
}

// Resolve returns the hex value for a color name such as "TURQUOISE".
// Matching ignores case and surrounding whitespace.
func Resolve(name string) string {
	hex, _ := Lookup(name)
	return hex
}

// Lookup is like [Resolve] but also reports whether name was recognized.
func Lookup(name string) (string, bool) {
	hex, ok := named[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return White, false
	}
	return hex, true
}

// Names returns every recognized color name.
func Names() []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	return names
}

// Luminance returns the perceptual luminance of hex in [0, 1] using
// 0.299r + 0.587g + 0.114b. Unparseable input counts as white.
func Luminance(hex string) float64 {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return 1
	}
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// ContrastingText returns black for light fills and white for dark fills.
func ContrastingText(hex string) string {
	if Luminance(hex) > luminanceThreshold {
		return Black
	}
	return White
}

// Outline returns the stroke color drawn around text filled with
// [ContrastingText], giving the numeral an edge against any fill.
func Outline(hex string) string {
	if ContrastingText(hex) == Black {
		return White
	}
	return Black
}

// RGBA parses hex into an opaque color. Unparseable input yields white.
func RGBA(hex string) color.RGBA {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// normalizeHex accepts "D4AF37", "#d4af37" and "#D4AF37" alike.
func normalizeHex(hex string) string {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return strings.ToLower(hex)
}
