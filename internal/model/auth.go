package model

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// TokenCookieName is the http-only cookie carrying the session JWT.
const TokenCookieName = "token"
