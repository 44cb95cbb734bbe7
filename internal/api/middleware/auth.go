package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// AuthMiddleware provides JWT authentication for routes. Beyond verifying
// the token signature it re-checks the user against the store on every
// request, so a deleted or deactivated account is rejected even while its
// tokens are still within their lifetime.
type AuthMiddleware struct {
	tokenService auth.TokenService
	userStore    store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokenService auth.TokenService, userStore store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userStore:    userStore,
	}
}

// Authenticate validates the bearer token from the Authorization header,
// confirms the user still exists and is active, and attaches the principal
// to the request context. Requests failing any step get a 401 before any
// handler runs.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, status, message := m.resolvePrincipal(r)
		if status != 0 {
			shared.RespondWithError(w, r, status, message)
			return
		}

		ctx := shared.SetPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate runs the same probe as Authenticate but never
// rejects: a valid bearer token attaches a principal, anything else lets
// the request through unauthenticated.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, status, _ := m.resolvePrincipal(r)
		if status == 0 {
			r = r.WithContext(shared.SetPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose principal does not hold the admin
// role. It must sit behind Authenticate: a missing principal is a 401, a
// non-admin principal a 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := shared.GetPrincipal(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !principal.IsAdmin() {
			shared.RespondWithError(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolvePrincipal runs the extract-verify-load sequence shared by the two
// authentication variants. A zero status means success; otherwise status
// and message describe the rejection.
func (m *AuthMiddleware) resolvePrincipal(r *http.Request) (shared.Principal, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return shared.Principal{}, http.StatusUnauthorized, "Authorization header required"
	}

	token := auth.ExtractFromHeader(authHeader)
	if token == "" {
		return shared.Principal{}, http.StatusUnauthorized, "Invalid authorization format"
	}

	claims, err := m.tokenService.ValidateAccess(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return shared.Principal{}, http.StatusUnauthorized, "Token expired"
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrWrongTokenType),
			errors.Is(err, auth.ErrTokenVerification):
			// Verification fallthroughs (unknown alg, unverifiable header)
			// are client-supplied input, not server faults.
			return shared.Principal{}, http.StatusUnauthorized, "Invalid token"
		default:
			slog.Error("failed to validate token", "error", err)
			return shared.Principal{}, http.StatusInternalServerError, "Authentication error"
		}
	}

	// One store round-trip: the token may outlive the account.
	user, err := m.userStore.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return shared.Principal{}, http.StatusUnauthorized, "Invalid token"
		}
		slog.Error("failed to load user during authentication", "error", err)
		return shared.Principal{}, http.StatusInternalServerError, "Authentication error"
	}
	if !user.Active {
		return shared.Principal{}, http.StatusUnauthorized, "Account is deactivated"
	}

	// Email and role come from the store, not the token, so a profile
	// change takes effect without re-issuing tokens.
	return shared.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, 0, ""
}
