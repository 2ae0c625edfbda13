package common

// AuthorizationHeaderName carries "Bearer <token>" on inbound requests.
const AuthorizationHeaderName = "Authorization"

// TokenQueryParam is the query parameter accepted by session introspection.
const TokenQueryParam = "token"

// RequestIDHeaderName is echoed on every response.
const RequestIDHeaderName = "X-Request-ID"

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes; longer passwords are rejected
	// instead of being silently truncated.
	MaxPasswordBytes = 72

	DefaultCurrency = "EUR"
)
