// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/js-arias/blind"
)

// A Scale assigns colors to dN/dS values.
type Scale interface {
	// Color returns the color of omega
	// in a tree in which the largest dN/dS
	// is max.
	Color(omega, max float64) color.Color
}

// Sunset is the diverging sunset color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_sunset>.
// The central color is pale yellow.
var Sunset = blind.ColSeq{
	{R: 54, G: 75, B: 154, A: 255},
	{R: 74, G: 123, B: 183, A: 255},
	{R: 110, G: 166, B: 205, A: 255},
	{R: 152, G: 202, B: 225, A: 255},
	{R: 194, G: 228, B: 239, A: 255},
	{R: 234, G: 236, B: 204, A: 255},
	{R: 254, G: 218, B: 139, A: 255},
	{R: 253, G: 179, B: 102, A: 255},
	{R: 246, G: 126, B: 75, A: 255},
	{R: 221, G: 61, B: 45, A: 255},
	{R: 165, G: 0, B: 38, A: 255},
}

// Selection is a diverging scale centered on neutral evolution:
// purifying selection (omega < 1) is blue,
// omega = 1 is the central color,
// and positive selection (omega > 1) is red.
type Selection struct {
	Seq blind.ColSeq
}

func (s Selection) Color(omega, max float64) color.Color {
	if omega <= 1 {
		return blind.Sequential(s.Seq, clamp(omega)/2)
	}
	if max <= 1 {
		return blind.Sequential(s.Seq, 0.5)
	}
	return blind.Sequential(s.Seq, 0.5+clamp((omega-1)/(max-1))/2)
}

// Linear is a sequential scale
// from zero to the largest dN/dS.
type Linear struct {
	Seq blind.ColSeq
}

func (l Linear) Color(omega, max float64) color.Color {
	if max <= 0 {
		return blind.Sequential(l.Seq, 0)
	}
	return blind.Sequential(l.Seq, clamp(omega/max))
}

// Gray is a gray scale from black to mid gray.
type Gray struct{}

func (g Gray) Color(omega, max float64) color.Color {
	v := 0.0
	if max > 0 {
		v = clamp(omega / max)
	}
	c := uint8(127 * v)
	return color.RGBA{c, c, c, 255}
}

// ParseScale returns a color scale from its name.
// Valid names are
// "sunset" (the default, diverging at omega = 1),
// "rainbow",
// "iridescent",
// "incandescent",
// and "gray".
func ParseScale(name string) (Scale, error) {
	switch strings.ToLower(name) {
	case "", "sunset":
		return Selection{Seq: Sunset}, nil
	case "rainbow":
		return Linear{Seq: blind.RainbowPurpleToRed}, nil
	case "iridescent":
		return Linear{Seq: blind.Iridescent}, nil
	case "incandescent":
		return Linear{Seq: blind.Incandescent}, nil
	case "gray":
		return Gray{}, nil
	}
	return nil, fmt.Errorf("unknown color scale %q", name)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rgb(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
}
