package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyInputErrorIsNil(t *testing.T) {
	ie := NewInputError()

	assert.True(t, ie.Empty())
	assert.NoError(t, ie.Err())

	var missing *InputError
	assert.NoError(t, missing.Err())
}

func TestInputErrorMessageIsSortedByField(t *testing.T) {
	ie := NewInputError()
	ie.Add("guests", "must be positive")
	ie.Add("checkIn", "required")
	ie.Add("guests", "too many")

	require.Error(t, ie.Err())
	assert.Equal(t, "validation: checkIn: required, guests: must be positive; too many", ie.Error())
	assert.Equal(t, []string{"must be positive", "too many"}, ie.Messages("guests"))
}

func TestFieldsReturnsCopy(t *testing.T) {
	ie := NewInputError()
	ie.Add("rating", "out of range")

	fields := ie.Fields()
	fields["rating"][0] = "changed"
	fields["extra"] = []string{"x"}

	assert.Equal(t, []string{"out of range"}, ie.Messages("rating"))
	assert.Len(t, ie.Fields(), 1)
}

func TestAsInputErrorUnwraps(t *testing.T) {
	ie := NewInputError()
	ie.Add("comment", "required")
	wrapped := fmt.Errorf("submit review: %w", ie.Err())

	got, ok := AsInputError(wrapped)
	require.True(t, ok)
	assert.Same(t, ie, got)

	_, ok = AsInputError(nil)
	assert.False(t, ok)
	_, ok = AsInputError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
