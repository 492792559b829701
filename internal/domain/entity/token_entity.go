package entity

// TokenKind selects which verification field pair a one-time secret lives in.
type TokenKind string

const (
	TokenKindVerify TokenKind = "VERIFY"
	TokenKindReset  TokenKind = "RESET"
)

func (k TokenKind) Valid() bool {
	return k == TokenKindVerify || k == TokenKindReset
}
