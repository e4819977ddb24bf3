package calculators

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL holds a hue in degrees [0, 360) and saturation and lightness in
// percent.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

type Colour struct {
	Hex string `json:"hex"`
	RGB RGB    `json:"rgb"`
	HSL HSL    `json:"hsl"`
}

func ColourOf(c RGB) Colour {
	return Colour{Hex: c.Hex(), RGB: c, HSL: c.HSL()}
}

// ParseHex accepts #rgb and #rrggbb, with or without the leading '#'.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}

	if len(h) != 6 {
		return RGB{}, invalid("%q is not a hex colour", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, invalid("%q is not a hex colour", s)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) HSL() HSL {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	l := (hi + lo) / 2

	if hi == lo {
		return HSL{L: round(l*100, 1)}
	}

	d := hi - lo
	s := d / (1 - math.Abs(2*l-1))

	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}

	h *= 60
	if h < 0 {
		h += 360
	}

	return HSL{H: round(h, 1), S: round(s*100, 1), L: round(l*100, 1)}
}

func (c HSL) RGB() (RGB, error) {
	// Written as positive ranges so NaN is rejected too.
	if !(c.H >= 0 && c.H < 360 && c.S >= 0 && c.S <= 100 && c.L >= 0 && c.L <= 100) {
		return RGB{}, invalid("hsl(%g, %g%%, %g%%) is out of range", c.H, c.S, c.L)
	}

	s, l := c.S/100, c.L/100
	ch := (1 - math.Abs(2*l-1)) * s
	x := ch * (1 - math.Abs(math.Mod(c.H/60, 2)-1))
	m := l - ch/2

	var r, g, b float64
	switch {
	case c.H < 60:
		r, g, b = ch, x, 0
	case c.H < 120:
		r, g, b = x, ch, 0
	case c.H < 180:
		r, g, b = 0, ch, x
	case c.H < 240:
		r, g, b = 0, x, ch
	case c.H < 300:
		r, g, b = x, 0, ch
	default:
		r, g, b = ch, 0, x
	}

	return RGB{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
