package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/pkg/response"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

var errorTable = []errorMapping{
	{application.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{application.ErrEmailNotVerified, http.StatusForbidden, "Please verify your email before logging in"},
	{application.ErrMissingToken, http.StatusUnauthorized, "Token missing"},
	{application.ErrInvalidOrExpiredToken, http.StatusForbidden, "Invalid or expired refresh token"},
	{application.ErrInvalidToken, http.StatusForbidden, "Invalid refresh token"},
	{application.ErrAlreadyVerified, http.StatusBadRequest, "Email is already verified"},
	{application.ErrTokenExpiredOrInvalid, http.StatusBadRequest, "Token is expired or invalid"},
	{application.ErrUserExists, http.StatusConflict, "Email or username already exists"},
	{application.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{application.ErrEmailDeliveryFailed, http.StatusInternalServerError, "Failed to send email"},
	{application.ErrAvatarUploadFailed, http.StatusInternalServerError, "Failed to upload avatar image"},
}

// statusFor translates a service error into a status and a client-safe message.
func statusFor(err error) (int, string, bool) {
	if errors.Is(err, application.ErrValidation) {
		return http.StatusBadRequest, validationMessage(err), true
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message, true
		}
	}
	return http.StatusInternalServerError, "Something went wrong", false
}

// validationMessage drops the sentinel prefix: "validation failed: x" -> "x".
func validationMessage(err error) string {
	msg := err.Error()
	prefix := application.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg, known := statusFor(err)
	if logger != nil && (!known || status >= http.StatusInternalServerError) {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
	}
	response.Error(c, status, msg, nil)
}
