package calculators

import "math"

type InterestInput struct {
	Principal   float64
	RatePercent float64
	Years       float64
	// CompoundsPerYear is only used by CompoundInterest, 1 when zero.
	CompoundsPerYear int
}

type InterestResult struct {
	Interest float64 `json:"interest"`
	Total    float64 `json:"total"`
}

func (in InterestInput) validate() error {
	for name, v := range map[string]float64{"principal": in.Principal, "rate": in.RatePercent, "years": in.Years} {
		if err := finite(name, v); err != nil {
			return err
		}

		if v < 0 {
			return invalid("%s must not be negative", name)
		}
	}

	if in.CompoundsPerYear < 0 {
		return invalid("compounds per year must not be negative")
	}

	return nil
}

// SimpleInterest computes P*r*t.
func SimpleInterest(in InterestInput) (InterestResult, error) {
	if err := in.validate(); err != nil {
		return InterestResult{}, err
	}

	interest := in.Principal * in.RatePercent / 100 * in.Years
	return InterestResult{Interest: interest, Total: in.Principal + interest}, nil
}

// CompoundInterest computes P*(1 + r/n)^(n*t) - P.
func CompoundInterest(in InterestInput) (InterestResult, error) {
	if err := in.validate(); err != nil {
		return InterestResult{}, err
	}

	n := float64(in.CompoundsPerYear)
	if n == 0 {
		n = 1
	}

	total := in.Principal * math.Pow(1+in.RatePercent/100/n, n*in.Years)
	return InterestResult{Interest: total - in.Principal, Total: total}, nil
}

type EMIResult struct {
	EMI           float64 `json:"emi"`
	TotalPayment  float64 `json:"total_payment"`
	TotalInterest float64 `json:"total_interest"`
}

// LoanEMI computes the equated monthly instalment of a loan at an annual
// rate repaid over months.
func LoanEMI(principal, ratePercent float64, months int) (EMIResult, error) {
	if err := (InterestInput{Principal: principal, RatePercent: ratePercent}).validate(); err != nil {
		return EMIResult{}, err
	}

	if months <= 0 {
		return EMIResult{}, invalid("months must be positive")
	}

	n := float64(months)
	r := ratePercent / 12 / 100

	var emi float64
	if r == 0 {
		emi = principal / n
	} else {
		f := math.Pow(1+r, n)
		emi = principal * r * f / (f - 1)
	}

	total := emi * n
	return EMIResult{EMI: emi, TotalPayment: total, TotalInterest: total - principal}, nil
}
