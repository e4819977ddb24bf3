package calculators

import "math"

// PayrollRules carries jurisdiction specific constants for the payroll
// calculators so they can be swapped without touching the formulas.
type PayrollRules struct {
	// Gratuity = salary * years * WageDays / MonthDays, capped at Cap.
	GratuityWageDays  float64
	GratuityMonthDays float64
	GratuityCap       float64
	// Minimum completed years before gratuity is payable.
	GratuityMinYears float64
	// Fee per day of delay in filing TDS returns, capped at the TDS amount.
	TDSLateFeePerDay float64
}

// DefaultIndiaRules follows the Payment of Gratuity Act and section 234E
// of the Income Tax Act.
var DefaultIndiaRules = PayrollRules{
	GratuityWageDays:  15,
	GratuityMonthDays: 26,
	GratuityCap:       2000000,
	GratuityMinYears:  5,
	TDSLateFeePerDay:  200,
}

// Gratuity is payable on the last drawn monthly salary. A final part year
// of six months or more counts as a full year.
func (r PayrollRules) Gratuity(salary, years float64) (float64, error) {
	if err := finite("salary", salary); err != nil {
		return 0, err
	}

	if err := finite("years", years); err != nil {
		return 0, err
	}

	if salary < 0 || years < 0 {
		return 0, invalid("salary and years must not be negative")
	}

	if r.GratuityMonthDays <= 0 {
		return 0, invalid("gratuity month days must be positive")
	}

	counted := math.Floor(years)
	if years-counted >= 0.5 {
		counted++
	}

	if counted < r.GratuityMinYears {
		return 0, nil
	}

	g := salary * counted * r.GratuityWageDays / r.GratuityMonthDays
	if r.GratuityCap > 0 && g > r.GratuityCap {
		g = r.GratuityCap
	}

	return round(g, 2), nil
}

func (r PayrollRules) TDSLateFee(days int, tds float64) (float64, error) {
	if err := finite("tds", tds); err != nil {
		return 0, err
	}

	if days < 0 || tds < 0 {
		return 0, invalid("days and tds must not be negative")
	}

	return math.Min(float64(days)*r.TDSLateFeePerDay, tds), nil
}
