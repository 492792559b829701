package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerifyEmail(t *testing.T) {
	link := "https://app.example/verifyemail?token=abc.def"
	data := NewActionEmailData(Branding{AppName: "Acme", CompanyName: "Acme Inc"}, VerifyEmail, "a@x.com", link,
		WithName("Alice"), WithTTL(time.Hour), WithExpiresAt(time.Now().Add(time.Hour)))

	subject, text, html, err := Render(VerifyEmail, data)
	require.NoError(t, err)

	assert.Equal(t, "Verify your email", subject)
	assert.Contains(t, text, link)
	assert.Contains(t, text, "1 hour")
	assert.Contains(t, html, "Hello Alice")
	assert.Contains(t, html, "Verify Email")
	assert.Contains(t, html, "token=abc.def")
}

func TestRenderForgotPasswordDefaults(t *testing.T) {
	data := NewActionEmailData(Branding{}, ForgotPassword, "a@x.com", "https://app.example/reset-password?token=x.y")

	subject, text, html, err := Render(ForgotPassword, data)
	require.NoError(t, err)

	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, text, "Hello there")
	assert.Contains(t, html, "The Team")
	assert.NotContains(t, html, "Contact support")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", EmailData{})
	assert.Error(t, err)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
	assert.Equal(t, "", humanDuration(0))
}
