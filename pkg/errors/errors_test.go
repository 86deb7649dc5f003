package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrInvalidLink,
		ErrUnauthorized, ErrForbidden, ErrInternal, ErrConflict, ErrGone,
		ErrServiceUnavail,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withInner := &AppError{Code: "INTERNAL_ERROR", Message: "broke", Err: fmt.Errorf("pool closed")}
	assert.Equal(t, "INTERNAL_ERROR: broke: pool closed", withInner.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "product 7 not found"}
	assert.Equal(t, "NOT_FOUND: product 7 not found", bare.Error())
}

func TestInvalidLink_WrapsSentinel(t *testing.T) {
	err := InvalidLink("INVALID_PRODUCT_LINK", "invalid product link")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidLink)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Upstream(cause)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestConstructors_StatusAndSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "12"), http.StatusNotFound, ErrNotFound},
		{"already exists", AlreadyExists("customer", "id", "c-1"), http.StatusConflict, ErrAlreadyExists},
		{"invalid input", InvalidInput("name is required"), http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("admin only"), http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("stale"), http.StatusConflict, ErrConflict},
		{"gone", Gone("removed"), http.StatusGone, ErrGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(Wrap(ErrNotFound, "get product")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(ErrInvalidLink, "parse")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Wrap(ErrServiceUnavail, "ping")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
