package application

import "errors"

// Expected outcomes of the auth flows. The HTTP layer maps each one to a
// status code; anything else is an internal failure.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrUserExists         = errors.New("email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("email is already verified")

	ErrMissingToken          = errors.New("token missing")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidToken          = errors.New("invalid refresh token")
	ErrTokenExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrEmailDeliveryFailed = errors.New("failed to send email")
	ErrAvatarUploadFailed  = errors.New("failed to upload avatar image")
)
