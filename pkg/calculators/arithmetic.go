package calculators

import "math"

// PercentOf returns pct percent of base.
func PercentOf(pct, base float64) float64 {
	return pct / 100 * base
}

// WhatPercent returns the percentage part is of whole.
func WhatPercent(part, whole float64) (float64, error) {
	if whole == 0 {
		return 0, ErrDivisionByZero
	}

	return part / whole * 100, nil
}

// PercentChange returns the relative change from `from` to `to` in percent.
func PercentChange(from, to float64) (float64, error) {
	if from == 0 {
		return 0, ErrDivisionByZero
	}

	return (to - from) / math.Abs(from) * 100, nil
}

type DivisionResult struct {
	Quotient  float64 `json:"quotient"`
	Remainder float64 `json:"remainder"`
	// Integer is the truncated quotient.
	Integer float64 `json:"integer"`
}

func Divide(a, b float64) (DivisionResult, error) {
	if b == 0 {
		return DivisionResult{}, ErrDivisionByZero
	}

	return DivisionResult{
		Quotient:  a / b,
		Remainder: math.Mod(a, b),
		Integer:   math.Trunc(a / b),
	}, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

// HCF returns the highest common factor of nums. Signs are ignored.
func HCF(nums ...int64) (int64, error) {
	if len(nums) == 0 {
		return 0, invalid("at least one number is required")
	}

	h := abs64(nums[0])
	for _, n := range nums[1:] {
		h = gcd(h, abs64(n))
	}

	return h, nil
}

// LCM returns the least common multiple of nums. Any zero makes it zero.
func LCM(nums ...int64) (int64, error) {
	if len(nums) == 0 {
		return 0, invalid("at least one number is required")
	}

	l := abs64(nums[0])
	for _, n := range nums[1:] {
		n = abs64(n)
		if l == 0 || n == 0 {
			return 0, nil
		}

		g := gcd(l, n)
		if l/g > math.MaxInt64/n {
			return 0, invalid("least common multiple overflows")
		}

		l = l / g * n
	}

	return l, nil
}
