package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetKindAndMessage(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
		msg  string
	}{
		{NotFound("booking %s not found", "abc"), KindNotFound, "booking abc not found"},
		{Forbidden("not your booking"), KindForbidden, "not your booking"},
		{InvalidState("event is cancelled"), KindInvalidState, "event is cancelled"},
		{Conflict("already booked"), KindConflict, "already booked"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.err.Kind)
		assert.Equal(t, tc.msg, tc.err.Error())
	}
}

func TestExternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := External(cause, "payment provider unreachable")

	require.Equal(t, KindExternal, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "payment provider unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	inner := Conflict("maximum participants reached")
	wrapped := fmt.Errorf("book event: %w", inner)

	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindConflict))
}
