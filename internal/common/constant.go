package common

// RefreshTokenCookieName is the cookie carrying the refresh token.
const RefreshTokenCookieName = "refresh_token"

// AuthorizationHeaderName carries "Bearer <access token>" on API requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is echoed back on every response.
const RequestIDHeaderName = "X-Request-Id"
