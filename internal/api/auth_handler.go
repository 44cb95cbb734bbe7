package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	bcryptCost       int
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// If logger is nil, the default logger is used.
func NewAuthHandler(
	userStore store.UserStore,
	tokenService auth.TokenService,
	passwordVerifier auth.PasswordVerifier,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		userStore:        userStore,
		tokenService:     tokenService,
		passwordVerifier: passwordVerifier,
		bcryptCost:       authConfig.BcryptCost,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// issuePair creates a token pair for the user, responding with a 500 on
// failure. Returns nil when the error response has already been written.
func (h *AuthHandler) issuePair(w http.ResponseWriter, r *http.Request, user *domain.User) *auth.TokenPair {
	pair, err := h.tokenService.IssuePair(r.Context(), auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		h.logger.Error("failed to issue token pair",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication tokens")
		return nil
	}
	return pair
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := domain.NewUser(req.Name, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	hashed, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.HashedPassword = hashed

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		h.logger.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("email", user.Email))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	pair := h.issuePair(w, r, user)
	if pair == nil {
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, "User registered successfully", AuthData{
		User:   user,
		Tokens: *pair,
	})
}

// Login handles POST /auth/login. Unknown email and wrong password are
// indistinguishable to the client.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("failed to get user by email", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if !user.Active {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	pair := h.issuePair(w, r, user)
	if pair == nil {
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Login successful", AuthData{
		User:   user,
		Tokens: *pair,
	})
}

// RefreshToken handles POST /auth/refresh: a valid refresh token yields a
// brand-new pair. The user is re-checked so pairs stop rotating for removed
// or deactivated accounts.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.tokenService.ValidateRefresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), claims.UserID)
	if err != nil || !user.Active {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	pair := h.issuePair(w, r, user)
	if pair == nil {
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Token refreshed successfully", AuthData{
		Tokens: *pair,
	})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), principal.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Profile retrieved successfully", user)
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), principal.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user.Name = req.Name
	if err := user.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userStore.Update(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword handles PUT /auth/change-password. The current password is
// verified before the new hash is stored.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), principal.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.CurrentPassword); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to change password")
		return
	}

	if err := h.userStore.UpdatePassword(r.Context(), principal.UserID, hashed); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Password changed successfully", nil)
}

// Logout handles POST /auth/logout. Token issuance is stateless, so logout
// acknowledges and leaves expiry to the token lifetime; clients discard
// their pair.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Logged out successfully", nil)
}
