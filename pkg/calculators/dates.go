package calculators

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

type AgeResult struct {
	Years     int `json:"years"`
	Months    int `json:"months"`
	Days      int `json:"days"`
	TotalDays int `json:"total_days"`
}

type DateResult struct {
	Date string `json:"date"`
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Age returns the calendar difference between birth and on. A day of
// month missing in a short month borrows from the previous month.
func Age(birth, on time.Time) (AgeResult, error) {
	birth, on = civil(birth), civil(on)
	if on.Before(birth) {
		return AgeResult{}, invalid("date %s is before birth date %s", on.Format(DateLayout), birth.Format(DateLayout))
	}

	years := on.Year() - birth.Year()
	months := int(on.Month()) - int(birth.Month())
	days := on.Day() - birth.Day()

	if days < 0 {
		months--
		// days in the month before on
		days += time.Date(on.Year(), on.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
	}

	if months < 0 {
		years--
		months += 12
	}

	return AgeResult{Years: years, Months: months, Days: days, TotalDays: DaysBetween(birth, on)}, nil
}

// DaysBetween counts calendar days from a to b, negative when b is first.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(civil(b).Sub(civil(a)).Hours() / 24))
}

// AddDuration adds a calendar offset to t with time.AddDate normalisation
// (Jan 31 + 1 month is Mar 2 or 3).
func AddDuration(t time.Time, years, months, days int) time.Time {
	return civil(t).AddDate(years, months, days)
}
