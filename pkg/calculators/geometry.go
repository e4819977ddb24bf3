package calculators

import (
	"math"
	"strings"
)

// Shape is one of the fixed set of shapes the geometry calculator knows.
// Each shape has a fixed list of input fields.
type Shape int

const (
	Circle Shape = iota
	Square
	Rectangle
	Triangle
	Sphere
	Cube
	Cylinder
	Cone
)

var shapeNames = []string{"circle", "square", "rectangle", "triangle", "sphere", "cube", "cylinder", "cone"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}

	return "unknown"
}

func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}

	return 0, invalid("unknown shape %q", name)
}

func (s Shape) Fields() []string {
	switch s {
	case Circle, Sphere:
		return []string{"radius"}
	case Square, Cube:
		return []string{"side"}
	case Rectangle:
		return []string{"length", "width"}
	case Triangle:
		return []string{"a", "b", "c"}
	case Cylinder, Cone:
		return []string{"radius", "height"}
	}

	return nil
}

// Measurement holds what applies to the shape; the rest stay zero.
type Measurement struct {
	Area        float64 `json:"area,omitempty"`
	Perimeter   float64 `json:"perimeter,omitempty"`
	Volume      float64 `json:"volume,omitempty"`
	SurfaceArea float64 `json:"surface_area,omitempty"`
}

// Measure computes the measurement of s from values, which must hold every
// name in Fields as a positive number.
func (s Shape) Measure(values map[string]float64) (Measurement, error) {
	fields := s.Fields()
	if fields == nil {
		return Measurement{}, invalid("unknown shape %s", s)
	}

	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			return Measurement{}, invalid("%s: missing %s", s, f)
		}

		if err := finite(f, v); err != nil {
			return Measurement{}, err
		}

		if v <= 0 {
			return Measurement{}, invalid("%s: %s must be positive", s, f)
		}
	}

	switch s {
	case Circle:
		r := values["radius"]
		return Measurement{Area: math.Pi * r * r, Perimeter: 2 * math.Pi * r}, nil
	case Square:
		a := values["side"]
		return Measurement{Area: a * a, Perimeter: 4 * a}, nil
	case Rectangle:
		l, w := values["length"], values["width"]
		return Measurement{Area: l * w, Perimeter: 2 * (l + w)}, nil
	case Triangle:
		a, b, c := values["a"], values["b"], values["c"]
		if a+b <= c || a+c <= b || b+c <= a {
			return Measurement{}, invalid("sides %g, %g, %g do not form a triangle", a, b, c)
		}

		// Heron's formula
		p := (a + b + c) / 2
		return Measurement{Area: math.Sqrt(p * (p - a) * (p - b) * (p - c)), Perimeter: a + b + c}, nil
	case Sphere:
		r := values["radius"]
		return Measurement{Volume: 4.0 / 3.0 * math.Pi * r * r * r, SurfaceArea: 4 * math.Pi * r * r}, nil
	case Cube:
		a := values["side"]
		return Measurement{Volume: a * a * a, SurfaceArea: 6 * a * a}, nil
	case Cylinder:
		r, h := values["radius"], values["height"]
		return Measurement{Volume: math.Pi * r * r * h, SurfaceArea: 2 * math.Pi * r * (r + h)}, nil
	default:
		r, h := values["radius"], values["height"]
		slant := math.Hypot(r, h)
		return Measurement{Volume: math.Pi * r * r * h / 3, SurfaceArea: math.Pi * r * (r + slant)}, nil
	}
}
