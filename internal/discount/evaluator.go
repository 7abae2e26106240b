package discount

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
)

const (
	RuleFixedDate = "fixed-date"
	RuleWeekly    = "weekly"
)

// Result is the outcome of evaluating all rules against a price.
type Result struct {
	// Price is the adjusted price, never below zero.
	Price float64
	// Discount is the total amount subtracted from the original price.
	Discount float64
	// Applied holds the names of the triggered rules in lexical order.
	Applied []string
}

// Evaluator applies every matching rule to a base price.
//
// Each rule computes its discount from the original price, so rules never
// compound: price - d1(price) - d2(price), not price*(1-r1)*(1-r2).
type Evaluator struct {
	names []string
	rules map[string]Rule
}

// NewEvaluator creates an evaluator over the named rules.
func NewEvaluator(rules map[string]Rule) *Evaluator {
	rs := maps.Clone(rules)
	if rs == nil {
		rs = map[string]Rule{}
	}

	return &Evaluator{
		names: slices.Sorted(maps.Keys(rs)),
		rules: rs,
	}
}

// NewEvaluatorFromConfig creates an evaluator with the fixed-date and weekly
// rules described by cfg.
func NewEvaluatorFromConfig(cfg config.Discount) (*Evaluator, error) {
	if err := cfg.ValidateRules(); err != nil {
		return nil, fmt.Errorf("validate discount rules: %w", err)
	}

	return NewEvaluator(map[string]Rule{
		RuleFixedDate: {
			When:     OnDate(time.Month(cfg.FixedDateMonth), cfg.FixedDateDay),
			Strategy: NewRateStrategy(cfg.FixedDateRate),
		},
		RuleWeekly: {
			When:     OnWeekday(time.Weekday(cfg.WeeklyDay)),
			Strategy: NewRateStrategy(cfg.WeeklyRate),
		},
	}), nil
}

// Rules returns the configured rule names in lexical order.
func (e *Evaluator) Rules() []string {
	return slices.Clone(e.names)
}

// Evaluate returns the price adjusted by every rule that applies on day.
func (e *Evaluator) Evaluate(day time.Time, price float64) Result {
	original := decimal.NewFromFloat(price)
	total := decimal.Zero
	applied := []string{}

	for _, name := range e.names {
		rule := e.rules[name]
		if rule.When == nil || rule.Strategy == nil || !rule.When(day) {
			continue
		}

		total = total.Add(rule.Strategy.Discount(original))
		applied = append(applied, name)
	}

	adjusted := original.Sub(total)
	if adjusted.IsNegative() {
		adjusted = decimal.Zero
	}

	return Result{
		Price:    adjusted.InexactFloat64(),
		Discount: original.Sub(adjusted).InexactFloat64(),
		Applied:  applied,
	}
}
