package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("visit"), http.StatusNotFound},
		{Conflict("email already exists"), http.StatusConflict},
		{&StorageError{Err: errors.New("bucket gone")}, http.StatusBadGateway},
		{&TransportError{Err: errors.New("timeout")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, HTTPStatus(c.err))
	}
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("submit visitor: %w", NotFound("visit"))
	require.True(t, IsNotFound(err))
	require.False(t, IsValidation(err))

	err = fmt.Errorf("register: %w", Validation("token required"))
	require.True(t, IsValidation(err))
	require.False(t, IsConflict(err))
}
