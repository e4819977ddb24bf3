package calculators

import "strings"

type UnitCategory int

const (
	Length UnitCategory = iota
	Mass
	Temperature
	Area
	Volume
	Time
	Data
)

var categoryNames = []string{"length", "mass", "temperature", "area", "volume", "time", "data"}

func (c UnitCategory) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}

	return "unknown"
}

func ParseUnitCategory(name string) (UnitCategory, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range categoryNames {
		if n == name {
			return UnitCategory(i), nil
		}
	}

	return 0, invalid("unknown unit category %q", name)
}

// Factors to the base unit of each category. Temperature is affine and
// handled separately.
var unitFactors = map[UnitCategory]map[string]float64{
	Length: {
		"mm": 0.001, "cm": 0.01, "m": 1, "km": 1000,
		"in": 0.0254, "ft": 0.3048, "yd": 0.9144, "mi": 1609.344, "nmi": 1852,
	},
	Mass: {
		"mg": 1e-6, "g": 0.001, "kg": 1, "t": 1000,
		"oz": 0.028349523125, "lb": 0.45359237, "st": 6.35029318,
	},
	Area: {
		"mm2": 1e-6, "cm2": 1e-4, "m2": 1, "ha": 1e4, "km2": 1e6,
		"in2": 0.00064516, "ft2": 0.09290304, "yd2": 0.83612736, "acre": 4046.8564224, "mi2": 2589988.110336,
	},
	Volume: {
		"ml": 0.001, "l": 1, "m3": 1000, "cm3": 0.001,
		"tsp": 0.00492892159375, "tbsp": 0.01478676478125, "cup": 0.2365882365,
		"pt": 0.473176473, "qt": 0.946352946, "gal": 3.785411784,
	},
	Time: {
		"ms": 0.001, "s": 1, "min": 60, "h": 3600, "d": 86400, "wk": 604800, "yr": 31557600,
	},
	Data: {
		"bit": 0.125, "B": 1, "KB": 1 << 10, "MB": 1 << 20, "GB": 1 << 30, "TB": 1 << 40,
	},
}

// Units lists the units of c.
func Units(c UnitCategory) []string {
	if c == Temperature {
		return []string{"C", "F", "K"}
	}

	var out []string
	for u := range unitFactors[c] {
		out = append(out, u)
	}

	return out
}

// ConvertUnit converts v between two units of the same category.
func ConvertUnit(c UnitCategory, v float64, from, to string) (float64, error) {
	if err := finite("value", v); err != nil {
		return 0, err
	}

	if c == Temperature {
		return convertTemperature(v, from, to)
	}

	factors, ok := unitFactors[c]
	if !ok {
		return 0, invalid("unknown unit category %s", c)
	}

	f1, ok := factors[from]
	if !ok {
		return 0, invalid("unknown %s unit %q", c, from)
	}

	f2, ok := factors[to]
	if !ok {
		return 0, invalid("unknown %s unit %q", c, to)
	}

	return v * f1 / f2, nil
}

func convertTemperature(v float64, from, to string) (float64, error) {
	var kelvin float64
	switch strings.ToUpper(from) {
	case "C":
		kelvin = v + 273.15
	case "F":
		kelvin = (v-32)*5/9 + 273.15
	case "K":
		kelvin = v
	default:
		return 0, invalid("unknown temperature unit %q", from)
	}

	if kelvin < 0 {
		return 0, invalid("temperature below absolute zero")
	}

	switch strings.ToUpper(to) {
	case "C":
		return kelvin - 273.15, nil
	case "F":
		return (kelvin-273.15)*9/5 + 32, nil
	case "K":
		return kelvin, nil
	}

	return 0, invalid("unknown temperature unit %q", to)
}
