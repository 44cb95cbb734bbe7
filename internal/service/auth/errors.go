package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token structure is invalid or the
	// signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenVerification indicates a decode failure that is neither an
	// expiry nor a structural/signature problem.
	ErrTokenVerification = errors.New("token verification failed")

	// ErrWrongTokenType indicates a token of one type (access/refresh) was
	// presented where the other was required.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is invalid.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)
