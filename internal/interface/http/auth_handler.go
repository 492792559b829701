package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/response"
	"github.com/oksasatya/go-auth-service/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type AuthHandler struct {
	Auth    *application.AuthService
	Verify  *application.VerificationService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, verify *application.VerificationService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	validation.Init()
	return &AuthHandler{Auth: auth, Verify: verify, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullname" form:"fullname" binding:"required"`
	Username string `json:"username" form:"username" binding:"required,username"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required_without=Username"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginResponse struct {
	AccessToken string               `json:"accessToken"`
	User        entity.SanitizedUser `json:"user"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register POST /auth/register, JSON or multipart with an optional "avatar" file.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		msg := "Invalid payload"
		if validation.MissingOnly(err) {
			msg = "All fields (fullname, email, username, password) are required"
		}
		response.Error(c, http.StatusBadRequest, msg, validation.ToDetails(err))
		return
	}

	in := application.RegisterInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		avatar, closeFn, err := openAvatar(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		defer closeFn()
		in.Avatar = avatar
	}

	u, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Sanitize(), "User registered successfully")
}

func openAvatar(fh *multipart.FileHeader) (*application.Avatar, func(), error) {
	if fh.Size > maxAvatarBytes {
		return nil, nil, errors.New("avatar must be at most 5MB")
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return nil, nil, errors.New("avatar must be an image")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.New("avatar could not be read")
	}
	return &application.Avatar{Filename: fh.Filename, ContentType: ct, Body: f}, func() { _ = f.Close() }, nil
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Please provide email or username and password", validation.ToDetails(err))
		return
	}
	// The service treats an identifier with '@' as an email, so each field
	// must look like what it claims to be.
	identifier := req.Email
	if identifier != "" && !strings.Contains(identifier, "@") {
		response.Error(c, http.StatusBadRequest, "Please provide a valid email", map[string]string{"email": "must be a valid email address"})
		return
	}
	if identifier == "" {
		identifier = req.Username
		if strings.Contains(identifier, "@") {
			response.Error(c, http.StatusBadRequest, "Please provide a valid username", map[string]string{"username": "must not contain '@'"})
			return
		}
	}

	res, err := h.Auth.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, res.RefreshToken)
	response.Success(c, http.StatusOK, loginResponse{AccessToken: res.AccessToken, User: res.User}, "User logged in successfully")
}

// Logout POST /auth/logout (access token required)
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		writeError(c, h.Logger, application.ErrMissingToken)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), p.UserID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, nil, "User logged out successfully")
}

// Refresh POST /auth/refresh-token, token from the refreshToken cookie or body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookieName)
	if token == "" {
		var req refreshRequest
		if c.Request.ContentLength != 0 {
			// an unreadable body leaves the token empty and ends in ErrMissingToken
			_ = c.ShouldBindJSON(&req)
		}
		token = req.RefreshToken
	}

	pair, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, pair.RefreshToken)
	response.Success(c, http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken}, "Token refreshed")
}

// VerifyEmail GET /auth/verifyemail?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusBadRequest, "Token is missing", nil)
		return
	}
	if err := h.Verify.Redeem(c.Request.Context(), token); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Email verified successfully.")
}

// ResendVerification POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email is required", validation.ToDetails(err))
		return
	}
	if err := h.Verify.ResendVerification(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Verification email resent successfully. Please check your inbox.")
}

// ForgotPassword POST /auth/forgot-password. Unknown emails get the same answer.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email is required", validation.ToDetails(err))
		return
	}
	if err := h.Verify.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "If the account exists, a reset link has been sent.")
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Verify.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, nil, "Password has been reset. Please log in again.")
}

// Me GET /auth/me (access token required)
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		writeError(c, h.Logger, application.ErrMissingToken)
		return
	}
	u, err := h.Auth.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u.Sanitize(), "Current user")
}
