package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10", "10.00", false},
		{"10.5", "10.50", false},
		{"0.01", "0.01", false},
		{"0", "0.00", false},
		{"10.001", "", true},
		{"-1.00", "", true},
		{"ten", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(got))
		})
	}
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "20.00", Format(LineTotal(2, decimal.RequireFromString("10.00"))))
	assert.Equal(t, "0.00", Format(LineTotal(0, decimal.RequireFromString("3.33"))))
	assert.Equal(t, "9.99", Format(LineTotal(3, decimal.RequireFromString("3.33"))))
}

func TestAfterTax(t *testing.T) {
	assert.Equal(t, "10.90", Format(AfterTax(decimal.RequireFromString("10.00"))))
	// 5.55 * 1.09 = 6.0495
	assert.Equal(t, "6.05", Format(AfterTax(decimal.RequireFromString("5.55"))))
}
