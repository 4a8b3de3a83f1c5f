package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "catalogadmin/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{apperror.NewValidationError("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperror.NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.NewConflictError("x"), http.StatusConflict, "CONFLICT"},
		{apperror.NewUnauthorizedError("x"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperror.NewForbiddenError("x"), http.StatusForbidden, "FORBIDDEN"},
		{apperror.NewDBError("x", stderrors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{apperror.NewRemoteStatusError("create", 500, "x"), http.StatusBadGateway, "REMOTE_ERROR"},
		{fmt.Errorf("contexto: %w", apperror.NewNotFoundError("x")), http.StatusNotFound, "NOT_FOUND"},
		{stderrors.New("sem tipo"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}
	for _, tc := range cases {
		status, category, _ := apperror.MapToHTTPStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.category, category, tc.err.Error())
	}
}

func TestWrapRemote(t *testing.T) {
	assert.Nil(t, apperror.WrapRemote("list", nil))

	raw := stderrors.New("connection refused")
	wrapped := apperror.WrapRemote("list", raw)
	assert.True(t, apperror.IsRemote(wrapped))
	assert.ErrorIs(t, wrapped, raw)

	validation := apperror.NewValidationError("x")
	assert.Same(t, validation, apperror.WrapRemote("list", validation))
}
