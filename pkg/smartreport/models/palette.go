package models

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the default border and fill color pair for a component type.
type Palette struct {
	Border     string
	Background string
}

// FallbackPalette is used for types without an entry in DefaultPalettes.
var FallbackPalette = Palette{Border: "#9ca3af", Background: "rgba(156, 163, 175, 0.2)"}

// DefaultPalettes maps a component type to its default colors.
var DefaultPalettes = map[ComponentType]Palette{
	TypeText:    {Border: "#3b82f6", Background: "rgba(59, 130, 246, 0.1)"},
	TypeTable:   {Border: "#10b981", Background: "rgba(16, 185, 129, 0.1)"},
	TypeChart:   {Border: "#f59e0b", Background: "rgba(245, 158, 11, 0.1)"},
	TypeImage:   {Border: "#8b5cf6", Background: "rgba(139, 92, 246, 0.1)"},
	TypeFormula: {Border: "#ef4444", Background: "rgba(239, 68, 68, 0.1)"},
}

// EffectiveStyle resolves the colors a component is drawn with: explicit
// overrides first, then the type palette, then the fallback palette.
func (c Component) EffectiveStyle() Style {
	p, ok := DefaultPalettes[c.Type]
	if !ok {
		p = FallbackPalette
	}
	s := Style{BorderColor: p.Border, BackgroundColor: p.Background}
	if c.Style != nil {
		if c.Style.BorderColor != "" {
			s.BorderColor = c.Style.BorderColor
		}
		if c.Style.BackgroundColor != "" {
			s.BackgroundColor = c.Style.BackgroundColor
		}
		if c.Style.TextColor != "" {
			s.TextColor = c.Style.TextColor
		}
	}
	if s.TextColor == "" {
		s.TextColor = s.BorderColor
	}
	return s
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// OpaqueHex converts a "#rrggbb", "#rgb" or "rgba(r, g, b, a)" color into an
// opaque "#rrggbb" value, flattening any alpha over a white background.
func OpaqueHex(color string) (string, error) {
	color = strings.TrimSpace(strings.ToLower(color))
	if strings.HasPrefix(color, "#") {
		c, err := colorful.Hex(color)
		if err != nil {
			return "", fmt.Errorf("parse color %q: %w", color, err)
		}
		return c.Hex(), nil
	}

	var r, g, b, a float64
	switch {
	case strings.HasPrefix(color, "rgba("):
		if _, err := fmt.Sscanf(color, "rgba(%f,%f,%f,%f)", &r, &g, &b, &a); err != nil {
			return "", fmt.Errorf("parse color %q: %w", color, err)
		}
	case strings.HasPrefix(color, "rgb("):
		a = 1
		if _, err := fmt.Sscanf(color, "rgb(%f,%f,%f)", &r, &g, &b); err != nil {
			return "", fmt.Errorf("parse color %q: %w", color, err)
		}
	default:
		return "", fmt.Errorf("unsupported color %q", color)
	}

	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Clamped()
	a = min(max(a, 0), 1)
	return c.BlendRgb(white, 1-a).Clamped().Hex(), nil
}
