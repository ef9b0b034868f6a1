package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatRowRule(t *testing.T) {
	v := NewValidator()

	type input struct {
		Row string `validate:"seat_row"`
	}

	tests := []struct {
		row     string
		wantErr bool
	}{
		{"A", false},
		{"AB", false},
		{"AAA", false},
		{"", true},
		{"a", true},
		{"AAAA", true},
		{"A1", true},
	}

	for _, tt := range tests {
		err := v.Struct(input{Row: tt.row})
		if tt.wantErr {
			assert.Error(t, err, "row %q should be rejected", tt.row)
		} else {
			assert.NoError(t, err, "row %q should be accepted", tt.row)
		}
	}
}

func TestPaymentMethodRule(t *testing.T) {
	v := NewValidator()

	type input struct {
		Method string `validate:"payment_method"`
	}

	for _, method := range []string{"CASH", "CARD", "TRANSFER"} {
		assert.NoError(t, v.Struct(input{Method: method}))
	}

	for _, method := range []string{"", "card", "BARTER"} {
		assert.Error(t, v.Struct(input{Method: method}))
	}
}
