package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func float64ToNumeric(v float64) pgtype.Numeric {
	d := decimal.NewFromFloat(v)
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func numericToFloat64(n pgtype.Numeric) (float64, error) {
	f, err := n.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("numeric to float64: %w", err)
	}
	if !f.Valid {
		return 0, fmt.Errorf("numeric is null")
	}
	return f.Float64, nil
}
