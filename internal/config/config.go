package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/product-discount/pkg/validator"
)

// New reads configuration from environment variables and unmarshals them into
// a struct of type T. Fields carrying `validate` tags are checked afterwards.
// Returns the populated configuration struct or an error.
func New[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return cfg, fmt.Errorf("new validator: %w", err)
	}

	v.RegisterStructValidation(validateDiscountDate, Discount{})

	if err := v.Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// validateDiscountDate rejects fixed dates such as February 31 that pass the
// per-field month and day ranges but never occur.
func validateDiscountDate(sl govalidator.StructLevel) {
	d, ok := sl.Current().Interface().(Discount)
	if !ok || d.FixedDateMonth < 1 || d.FixedDateMonth > 12 {
		return
	}
	if !d.fixedDateExists() {
		sl.ReportError(d.FixedDateDay, "FixedDateDay", "FixedDateDay", "monthday", time.Month(d.FixedDateMonth).String())
	}
}
