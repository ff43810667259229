package valueobject

import (
	"fmt"
	"time"
)

// PeriodType classifies the length of an achievement period
type PeriodType string

const (
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeYearly    PeriodType = "YEARLY"
	PeriodTypeLifetime  PeriodType = "LIFETIME"
)

// IsValid checks if the period type is valid
func (t PeriodType) IsValid() bool {
	switch t {
	case PeriodTypeMonthly, PeriodTypeQuarterly, PeriodTypeYearly, PeriodTypeLifetime:
		return true
	}
	return false
}

// String returns the string representation of PeriodType
func (t PeriodType) String() string {
	return string(t)
}

// lifetimeEnd is the sentinel end for open-ended lifetime periods
var lifetimeEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Period is a value object representing a half-open time range [Start, End)
// derived deterministically from its type and anchor.
// All boundaries are in UTC.
type Period struct {
	periodType PeriodType
	start      time.Time
	end        time.Time
}

// NewMonthlyPeriod builds the calendar-month period for (year, month)
func NewMonthlyPeriod(year int, month time.Month) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("invalid month: %d", month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		periodType: PeriodTypeMonthly,
		start:      start,
		end:        start.AddDate(0, 1, 0),
	}, nil
}

// NewQuarterlyPeriod builds the calendar-quarter period for (year, quarter)
func NewQuarterlyPeriod(year, quarter int) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	if quarter < 1 || quarter > 4 {
		return Period{}, fmt.Errorf("invalid quarter: %d", quarter)
	}
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		periodType: PeriodTypeQuarterly,
		start:      start,
		end:        start.AddDate(0, 3, 0),
	}, nil
}

// NewYearlyPeriod builds the calendar-year period for year
func NewYearlyPeriod(year int) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		periodType: PeriodTypeYearly,
		start:      start,
		end:        start.AddDate(1, 0, 0),
	}, nil
}

// NewLifetimePeriod builds an open-ended period starting at the given time
func NewLifetimePeriod(start time.Time) Period {
	return Period{
		periodType: PeriodTypeLifetime,
		start:      start.UTC(),
		end:        lifetimeEnd,
	}
}

// NewPeriod reconstitutes a period from persisted boundaries
func NewPeriod(periodType PeriodType, start, end time.Time) (Period, error) {
	if !periodType.IsValid() {
		return Period{}, fmt.Errorf("invalid period type: %s", periodType)
	}
	if !end.After(start) {
		return Period{}, fmt.Errorf("period end %s must be after start %s", end, start)
	}
	return Period{periodType: periodType, start: start.UTC(), end: end.UTC()}, nil
}

// Type returns the period type
func (p Period) Type() PeriodType {
	return p.periodType
}

// Start returns the inclusive start of the period
func (p Period) Start() time.Time {
	return p.start
}

// End returns the exclusive end of the period
func (p Period) End() time.Time {
	return p.end
}

// Contains reports whether t falls within [Start, End)
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.start) && t.Before(p.end)
}

// HasEnded reports whether the period is over at time t
func (p Period) HasEnded(t time.Time) bool {
	return !t.UTC().Before(p.end)
}

// String returns a human-readable representation
func (p Period) String() string {
	if p.periodType == PeriodTypeLifetime {
		return fmt.Sprintf("LIFETIME from %s", p.start.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s %s..%s", p.periodType, p.start.Format("2006-01-02"), p.end.Format("2006-01-02"))
}

func validateYear(year int) error {
	if year < 2000 || year > 2100 {
		return fmt.Errorf("year out of range: %d", year)
	}
	return nil
}
