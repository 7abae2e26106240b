package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// Strategy computes the amount to subtract from a price.
type Strategy interface {
	Discount(price decimal.Decimal) decimal.Decimal
}

var (
	_ Strategy = RateStrategy{}
	_ Strategy = FlatStrategy{}
)

// RateStrategy subtracts a fraction of the price.
type RateStrategy struct {
	Rate decimal.Decimal
}

// NewRateStrategy returns a strategy discounting rate*price, e.g. 0.1 for 10%.
func NewRateStrategy(rate float64) RateStrategy {
	return RateStrategy{Rate: decimal.NewFromFloat(rate)}
}

func (s RateStrategy) Discount(price decimal.Decimal) decimal.Decimal {
	return price.Mul(s.Rate)
}

// FlatStrategy subtracts a fixed amount regardless of the price.
type FlatStrategy struct {
	Amount decimal.Decimal
}

func NewFlatStrategy(amount float64) FlatStrategy {
	return FlatStrategy{Amount: decimal.NewFromFloat(amount)}
}

func (s FlatStrategy) Discount(_ decimal.Decimal) decimal.Decimal {
	return s.Amount
}

// Predicate reports whether a rule applies on the given day.
type Predicate func(day time.Time) bool

// OnDate matches the given month and day of month in every year.
func OnDate(month time.Month, dayOfMonth int) Predicate {
	return func(day time.Time) bool {
		return day.Month() == month && day.Day() == dayOfMonth
	}
}

// OnWeekday matches every occurrence of weekday.
func OnWeekday(weekday time.Weekday) Predicate {
	return func(day time.Time) bool {
		return day.Weekday() == weekday
	}
}

// Rule is a discount gated by a calendar predicate.
type Rule struct {
	When     Predicate
	Strategy Strategy
}
