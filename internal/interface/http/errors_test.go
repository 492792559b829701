package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-auth-service/internal/application"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{application.ErrInvalidCredentials, http.StatusUnauthorized},
		{application.ErrEmailNotVerified, http.StatusForbidden},
		{application.ErrMissingToken, http.StatusUnauthorized},
		{application.ErrInvalidOrExpiredToken, http.StatusForbidden},
		{application.ErrInvalidToken, http.StatusForbidden},
		{application.ErrAlreadyVerified, http.StatusBadRequest},
		{application.ErrTokenExpiredOrInvalid, http.StatusBadRequest},
		{application.ErrUserExists, http.StatusConflict},
		{application.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: smtp", application.ErrEmailDeliveryFailed), http.StatusInternalServerError},
		{fmt.Errorf("%w: bucket", application.ErrAvatarUploadFailed), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _, known := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.True(t, known)
	}
}

func TestStatusForValidationAndUnknown(t *testing.T) {
	status, msg, known := statusFor(fmt.Errorf("%w: password is required", application.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password is required", msg)
	assert.True(t, known)

	status, msg, known = statusFor(errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Something went wrong", msg)
	assert.False(t, known)
}
