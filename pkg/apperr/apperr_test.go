package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindConflict, "already voted on this argument")
	assert.Equal(t, KindConflict, KindOf(err))

	wrapped := fmt.Errorf("casting vote: %w", err)
	assert.Equal(t, KindConflict, KindOf(wrapped), "kind should survive wrapping")

	assert.Equal(t, KindDependency, KindOf(errors.New("socket closed")), "untyped errors are dependency failures")
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindDependency, "moderation gate unreachable", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "moderation gate unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindState, http.StatusBadRequest},
		{KindContentRejected, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindPermission, http.StatusForbidden},
		{KindConflict, http.StatusConflict},
		{KindDependency, http.StatusBadGateway},
	}

	for _, c := range cases {
		if got := HTTPStatus(New(c.kind, "x")); got != c.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestReason(t *testing.T) {
	assert.Equal(t, "arena is full", Reason(New(KindConflict, "arena is full")))
	assert.Equal(t, "something went wrong", Reason(errors.New("internal detail")))
}
