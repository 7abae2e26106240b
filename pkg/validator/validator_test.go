package validator_test

import (
	"errors"
	"fmt"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-discount/pkg/validator"
)

type color int

func (c color) Validate() error {
	if c < 0 || c > 2 {
		return errors.New("unknown color")
	}
	return nil
}

type payload struct {
	Name   string `json:"name" validate:"required,notblank,max=10"`
	Color  color  `json:"color" validate:"enum"`
	Hidden string `json:"-" validate:"required"`
	Plain  int    `validate:"gte=0"`
	Skip   string `json:"skip" validate:"-"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept valid struct", func(t *testing.T) {
		assert.NoError(t, v.Validate(payload{Name: "Desk Lamp", Color: 1, Hidden: "x"}))
	})

	t.Run("Should report json field names", func(t *testing.T) {
		err := v.Validate(payload{Name: "   ", Color: 7, Plain: -1})
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		var verrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &verrs)

		fields := map[string]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = validator.ValidationErrorMessage(fe)
		}
		assert.Len(t, fields, 4)
		assert.Equal(t, "must not be blank", fields["name"])
		assert.Contains(t, fields["color"], "invalid enum value")
		assert.Equal(t, "must be greater than or equal to 0", fields["Plain"])
		assert.Equal(t, "field is required", fields["Hidden"], "json:\"-\" fields keep their Go name")
		assert.NotContains(t, fields, "-")
	})

	t.Run("Should describe string length limits", func(t *testing.T) {
		err := v.Validate(payload{Name: "Extra long lamp", Color: 1, Hidden: "x"})

		var verrs govalidator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "must be at most 10 characters long", validator.ValidationErrorMessage(verrs[0]))
	})

	t.Run("Should detect wrapped validation errors", func(t *testing.T) {
		err := v.Validate(payload{Color: 1})
		assert.True(t, validator.IsValidationError(fmt.Errorf("validate: %w", err)))
		assert.False(t, validator.IsValidationError(errors.New("boom")))
	})
}
