package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("Wraps error with trace", func(t *testing.T) {
		err := NewError("read corpus", errors.New("file missing"))

		require.Error(t, err)
		assert.Equal(t, "read corpus: file missing", err.Error())
	})

	t.Run("Returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, NewError("noop", nil))
	})

	t.Run("Keeps sentinel errors reachable", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := NewError("outer", NewError("inner", sentinel))

		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, "outer: inner: sentinel", err.Error())
	})

	t.Run("Records calling function", func(t *testing.T) {
		err := NewError("step", errors.New("boom"))

		var helperErr *Error
		require.ErrorAs(t, err, &helperErr)
		assert.Contains(t, helperErr.Function, "TestNewError")
	})
}
