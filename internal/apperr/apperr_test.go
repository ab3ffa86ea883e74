package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		msg   string
	}{
		{"not found", NotFound("cart", "c1"), IsNotFound, "no cart with id c1"},
		{"validation", Invalid("quantity", "must be at least 1"), IsValidation, "quantity: must be at least 1"},
		{"conflict", Conflict("cart", "c1", "already checked out"), IsConflict, "cart c1: already checked out"},
		{"transaction", Transaction("commit", errors.New("boom")), IsTransaction, "transaction failed during commit: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	err := NotFound("order", 7)
	assert.False(t, IsValidation(err))
	assert.False(t, IsConflict(err))
	assert.False(t, IsTransaction(err))
}

func TestValidationWithoutField(t *testing.T) {
	assert.Equal(t, "cart is empty", Invalid("", "cart is empty").Error())
}

func TestTransactionUnwrap(t *testing.T) {
	cause := errors.New("serialization failure")
	err := Transaction("checkout", cause)
	assert.ErrorIs(t, err, cause)
}
