// Package calculators holds the leaf calculators: small closed-form
// formulas that take a validated input and return a result or an error.
// None of them share state.
package calculators

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDivisionByZero = errors.New("division by zero")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid("%s must be a finite number", name)
	}

	return nil
}

// Params are the raw named inputs of a calculation as they arrive from the
// command line or a request body.
type Params map[string]string

func (p Params) String(name string) (string, error) {
	v, ok := p[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", invalid("missing parameter %q", name)
	}

	return strings.TrimSpace(v), nil
}

func (p Params) Float(name string) (float64, error) {
	s, err := p.String(name)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid("parameter %q: %q is not a number", name, s)
	}

	return v, finite(name, v)
}

// FloatOr is Float with a default for absent parameters.
func (p Params) FloatOr(name string, def float64) (float64, error) {
	if _, ok := p[name]; !ok {
		return def, nil
	}

	return p.Float(name)
}

func (p Params) Int(name string) (int64, error) {
	s, err := p.String(name)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, invalid("parameter %q: %q is not an integer", name, s)
	}

	return v, nil
}

// IntOr is Int with a default for absent parameters.
func (p Params) IntOr(name string, def int64) (int64, error) {
	if _, ok := p[name]; !ok {
		return def, nil
	}

	return p.Int(name)
}

// Ints parses a comma separated list of integers.
func (p Params) Ints(name string) ([]int64, error) {
	s, err := p.String(name)
	if err != nil {
		return nil, err
	}

	var out []int64
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, invalid("parameter %q: %q is not an integer", name, field)
		}

		out = append(out, v)
	}

	return out, nil
}

func (p Params) Date(name string) (time.Time, error) {
	s, err := p.String(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("parameter %q: %q is not a date (%s)", name, s, DateLayout)
	}

	return t, nil
}

// Kind names a calculator reachable through Run.
type Kind int

const (
	KindSimpleInterest Kind = iota
	KindCompoundInterest
	KindLoanEMI
	KindPercentOf
	KindWhatPercent
	KindPercentChange
	KindDivide
	KindHCF
	KindLCM
	KindColour
	KindGeometry
	KindUnit
	KindAge
	KindDaysBetween
	KindAddDuration
	KindGratuity
	KindTDSLateFee
)

var kindNames = map[Kind]string{
	KindSimpleInterest:   "simple-interest",
	KindCompoundInterest: "compound-interest",
	KindLoanEMI:          "emi",
	KindPercentOf:        "percent-of",
	KindWhatPercent:      "what-percent",
	KindPercentChange:    "percent-change",
	KindDivide:           "divide",
	KindHCF:              "hcf",
	KindLCM:              "lcm",
	KindColour:           "colour",
	KindGeometry:         "geometry",
	KindUnit:             "unit",
	KindAge:              "age",
	KindDaysBetween:      "days-between",
	KindAddDuration:      "add-duration",
	KindGratuity:         "gratuity",
	KindTDSLateFee:       "tds-late-fee",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, invalid("unknown calculator %q", name)
}

// Kinds lists every calculator name in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(kindNames))
	for _, n := range kindNames {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// Run decodes params for kind and runs the matching calculator. India
// payroll rules come from rules; pass DefaultIndiaRules when unsure.
func Run(kind Kind, params Params, rules PayrollRules) (any, error) {
	switch kind {
	case KindSimpleInterest:
		in, err := loanInput(params, "years")
		if err != nil {
			return nil, err
		}

		return SimpleInterest(InterestInput{Principal: in.Principal, RatePercent: in.RatePercent, Years: in.Term})
	case KindCompoundInterest:
		in, err := loanInput(params, "years")
		if err != nil {
			return nil, err
		}

		n, err := params.IntOr("compounds", 1)
		if err != nil {
			return nil, err
		}

		if n < 1 || n > maxPeriods {
			return nil, invalid("compounds must be between 1 and %d", maxPeriods)
		}

		return CompoundInterest(InterestInput{
			Principal:        in.Principal,
			RatePercent:      in.RatePercent,
			Years:            in.Term,
			CompoundsPerYear: int(n),
		})
	case KindLoanEMI:
		in, err := loanInput(params, "")
		if err != nil {
			return nil, err
		}

		months, err := params.Int("months")
		if err != nil {
			return nil, err
		}

		if months < 1 || months > maxPeriods {
			return nil, invalid("months must be between 1 and %d", maxPeriods)
		}

		return LoanEMI(in.Principal, in.RatePercent, int(months))
	case KindPercentOf, KindWhatPercent, KindPercentChange:
		a, err := params.Float("a")
		if err != nil {
			return nil, err
		}

		b, err := params.Float("b")
		if err != nil {
			return nil, err
		}

		var v float64
		switch kind {
		case KindPercentOf:
			v = PercentOf(a, b)
		case KindWhatPercent:
			v, err = WhatPercent(a, b)
		default:
			v, err = PercentChange(a, b)
		}
		if err != nil {
			return nil, err
		}

		return Value{Value: v}, nil
	case KindDivide:
		a, err := params.Float("a")
		if err != nil {
			return nil, err
		}

		b, err := params.Float("b")
		if err != nil {
			return nil, err
		}

		return Divide(a, b)
	case KindHCF, KindLCM:
		nums, err := params.Ints("numbers")
		if err != nil {
			return nil, err
		}

		var v int64
		if kind == KindHCF {
			v, err = HCF(nums...)
		} else {
			v, err = LCM(nums...)
		}
		if err != nil {
			return nil, err
		}

		return Value{Value: float64(v)}, nil
	case KindColour:
		return runColour(params)
	case KindGeometry:
		name, err := params.String("shape")
		if err != nil {
			return nil, err
		}

		shape, err := ParseShape(name)
		if err != nil {
			return nil, err
		}

		values := make(map[string]float64)
		for _, f := range shape.Fields() {
			if values[f], err = params.Float(f); err != nil {
				return nil, err
			}
		}

		return shape.Measure(values)
	case KindUnit:
		return runUnit(params)
	case KindAge, KindDaysBetween:
		from, err := params.Date("from")
		if err != nil {
			return nil, err
		}

		to, err := params.Date("to")
		if err != nil {
			return nil, err
		}

		if kind == KindAge {
			return Age(from, to)
		}

		return Value{Value: float64(DaysBetween(from, to))}, nil
	case KindAddDuration:
		return runAddDuration(params)
	case KindGratuity:
		salary, err := params.Float("salary")
		if err != nil {
			return nil, err
		}

		years, err := params.Float("years")
		if err != nil {
			return nil, err
		}

		v, err := rules.Gratuity(salary, years)
		if err != nil {
			return nil, err
		}

		return Value{Value: v}, nil
	case KindTDSLateFee:
		days, err := params.Int("days")
		if err != nil {
			return nil, err
		}

		tds, err := params.Float("tds")
		if err != nil {
			return nil, err
		}

		v, err := rules.TDSLateFee(int(days), tds)
		if err != nil {
			return nil, err
		}

		return Value{Value: v}, nil
	}

	return nil, invalid("unknown calculator %s", kind)
}

// Value is the result of calculators that produce a single number.
type Value struct {
	Value float64 `json:"value"`
}

// maxPeriods bounds compounding periods per year and loan months.
const maxPeriods = 100000

type loan struct {
	Principal   float64
	RatePercent float64
	Term        float64
}

func loanInput(params Params, term string) (loan, error) {
	var (
		in  loan
		err error
	)

	if in.Principal, err = params.Float("principal"); err != nil {
		return in, err
	}

	if in.RatePercent, err = params.Float("rate"); err != nil {
		return in, err
	}

	if term == "" {
		return in, nil
	}

	if in.Term, err = params.Float(term); err != nil {
		return in, err
	}

	return in, nil
}

func runColour(params Params) (any, error) {
	if hex, ok := params["hex"]; ok {
		rgb, err := ParseHex(hex)
		if err != nil {
			return nil, err
		}

		return ColourOf(rgb), nil
	}

	if _, ok := params["h"]; ok {
		var hsl HSL
		for _, f := range []struct {
			name string
			dst  *float64
		}{{"h", &hsl.H}, {"s", &hsl.S}, {"l", &hsl.L}} {
			v, err := params.Float(f.name)
			if err != nil {
				return nil, err
			}

			*f.dst = v
		}

		rgb, err := hsl.RGB()
		if err != nil {
			return nil, err
		}

		return ColourOf(rgb), nil
	}

	var vals [3]float64
	for i, name := range []string{"r", "g", "b"} {
		v, err := params.Float(name)
		if err != nil {
			return nil, err
		}

		if v < 0 || v > 255 || v != math.Trunc(v) {
			return nil, invalid("%s must be an integer between 0 and 255", name)
		}

		vals[i] = v
	}

	return ColourOf(RGB{R: uint8(vals[0]), G: uint8(vals[1]), B: uint8(vals[2])}), nil
}

func runUnit(params Params) (any, error) {
	catName, err := params.String("category")
	if err != nil {
		return nil, err
	}

	cat, err := ParseUnitCategory(catName)
	if err != nil {
		return nil, err
	}

	from, err := params.String("from")
	if err != nil {
		return nil, err
	}

	to, err := params.String("to")
	if err != nil {
		return nil, err
	}

	v, err := params.Float("value")
	if err != nil {
		return nil, err
	}

	out, err := ConvertUnit(cat, v, from, to)
	if err != nil {
		return nil, err
	}

	return Value{Value: out}, nil
}

func runAddDuration(params Params) (any, error) {
	start, err := params.Date("from")
	if err != nil {
		return nil, err
	}

	var d [3]float64
	for i, name := range []string{"years", "months", "days"} {
		if d[i], err = params.FloatOr(name, 0); err != nil {
			return nil, err
		}
	}

	return DateResult{Date: AddDuration(start, int(d[0]), int(d[1]), int(d[2])).Format(DateLayout)}, nil
}
