package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	err := ErrNotFound.WithInternal(errors.New("trial missing"))
	require.Contains(t, err.Error(), "trial missing")
	require.Equal(t, ErrNotFound.Code, err.Code)
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	wrapped := Wrap(errors.New("disk full"), "unable to save flight")
	got := FromError(wrapped)
	require.Equal(t, wrapped.Code, got.Code)
	require.Equal(t, "unable to save flight", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, got.Code)
	require.Equal(t, http.StatusInternalServerError, got.StatusCode)
}

func TestUnwrapExposesInternal(t *testing.T) {
	inner := errors.New("ws dial refused")
	err := Wrap(inner, "connect failed")
	require.True(t, errors.Is(err, inner))
}
