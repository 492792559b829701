package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `form:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
}

func TestToDetailsUsesTagNames(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&signup{Email: "nope", Username: "a b", Password: "short"})

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email address", d["email"])
	assert.Equal(t, "must be 3 to 32 printable characters without spaces or '@'", d["username"])
	assert.Equal(t, "must be at least 8 characters and at most 72 bytes", d["password"])
}

func TestToDetailsRequired(t *testing.T) {
	Init()
	d := ToDetails(binding.Validator.ValidateStruct(&signup{}))
	assert.Equal(t, "is required", d["email"])
	assert.Equal(t, "is required", d["username"])
}

func TestToDetailsFallbacks(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("EOF")))
	assert.NoError(t, binding.Validator.ValidateStruct(&signup{Email: "a@x.com", Username: "alice", Password: "pw123456"}))
}

func TestUsernameRejectsAtSign(t *testing.T) {
	Init()
	d := ToDetails(binding.Validator.ValidateStruct(&signup{Email: "a@x.com", Username: "bob@x.com", Password: "pw123456"}))
	assert.Contains(t, d, "username")
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	Init()
	// 36 two-byte runes fit exactly; 37 exceed bcrypt's 72 bytes.
	ok := signup{Email: "a@x.com", Username: "alice", Password: strings.Repeat("é", 36)}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	tooLong := signup{Email: "a@x.com", Username: "alice", Password: strings.Repeat("é", 40)}
	d := ToDetails(binding.Validator.ValidateStruct(&tooLong))
	assert.Equal(t, "must be at least 8 characters and at most 72 bytes", d["password"])

	// the minimum counts characters
	assert.NoError(t, binding.Validator.ValidateStruct(&signup{Email: "a@x.com", Username: "alice", Password: strings.Repeat("é", 8)}))
}
