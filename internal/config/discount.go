package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Discount struct {
	Timezone string `env:"DISCOUNT_TIMEZONE" envDefault:"UTC" validate:"timezone"`

	FixedDateMonth int     `env:"DISCOUNT_FIXED_DATE_MONTH" envDefault:"11" validate:"min=1,max=12"`
	FixedDateDay   int     `env:"DISCOUNT_FIXED_DATE_DAY" envDefault:"24" validate:"min=1,max=31"`
	FixedDateRate  float64 `env:"DISCOUNT_FIXED_DATE_RATE" envDefault:"0.10" validate:"gte=0,lte=1"`

	WeeklyDay  Weekday `env:"DISCOUNT_WEEKLY_DAY" envDefault:"SATURDAY" validate:"enum"`
	WeeklyRate float64 `env:"DISCOUNT_WEEKLY_RATE" envDefault:"0.05" validate:"gte=0,lte=1"`
}

// ValidateRules checks the parameters the discount rules are built from:
// rates within [0,1], a fixed month and day that exist together, and a
// valid weekday. February 29 is accepted and matches in leap years only.
func (d Discount) ValidateRules() error {
	var errs []error

	if !validRate(d.FixedDateRate) {
		errs = append(errs, fmt.Errorf("fixed date rate %v outside [0,1]", d.FixedDateRate))
	}
	if !validRate(d.WeeklyRate) {
		errs = append(errs, fmt.Errorf("weekly rate %v outside [0,1]", d.WeeklyRate))
	}
	if d.FixedDateMonth < 1 || d.FixedDateMonth > 12 {
		errs = append(errs, fmt.Errorf("fixed date month %d outside 1-12", d.FixedDateMonth))
	} else if !d.fixedDateExists() {
		errs = append(errs, fmt.Errorf("fixed date day %d does not exist in %s",
			d.FixedDateDay, time.Month(d.FixedDateMonth)))
	}
	if err := d.WeeklyDay.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// fixedDateExists reports whether FixedDateDay is a day of FixedDateMonth
// in a leap year.
func (d Discount) fixedDateExists() bool {
	last := time.Date(2024, time.Month(d.FixedDateMonth)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return d.FixedDateDay >= 1 && d.FixedDateDay <= last
}

// validRate also rejects NaN.
func validRate(r float64) bool {
	return r >= 0 && r <= 1
}

// Location loads the time zone used to decide the current calendar date.
func (d Discount) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// Weekday is a [time.Weekday] that can be read from the environment by name.
type Weekday time.Weekday

// String returns the upper-case English name of the day.
func (w Weekday) String() string {
	return strings.ToUpper(time.Weekday(w).String())
}

// UnmarshalText implements [encoding.TextUnmarshaler].
// It accepts full English day names in any case, e.g. "saturday".
func (w *Weekday) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToUpper(d.String()) == name {
			*w = Weekday(d)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday: %s", text)
}

func (w Weekday) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Validate reports whether w is one of the seven days of the week.
func (w Weekday) Validate() error {
	if time.Weekday(w) < time.Sunday || time.Weekday(w) > time.Saturday {
		return fmt.Errorf("weekday out of range: %d", w)
	}
	return nil
}
