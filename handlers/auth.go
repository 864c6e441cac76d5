package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"sync"
	"time"

	"taskdo-service/credentials"
	"taskdo-service/models"
	"taskdo-service/store"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// UserStore is the account persistence used by registration and login
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// AuthHandler handles registration, token issuance and the current user
type AuthHandler struct {
	users    UserStore
	creds    *credentials.Service
	tokenTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthHandler(users UserStore, creds *credentials.Service, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:    users,
		creds:    creds,
		tokenTTL: tokenTTL,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		logRequest(ctx, "error", "Invalid register body", zap.String("reason", appErr.Message))
		writeError(w, appErr)
		return
	}

	logRequest(ctx, "info", "Registering user", zap.String("username", req.Username))

	hashed, err := h.creds.HashPassword(req.Password)
	if err != nil {
		logRequest(ctx, "error", "Password hashing failed", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Failed to process password"))
		return
	}

	user, err := h.users.Create(ctx, &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	})
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		logRequest(ctx, "info", "Username taken", zap.String("username", req.Username))
		writeError(w, newBadRequestError("Username already registered"))
		return
	case errors.Is(err, store.ErrDuplicateEmail):
		logRequest(ctx, "info", "Email taken", zap.String("email", req.Email))
		writeError(w, newBadRequestError("Email already registered"))
		return
	case err != nil:
		logRequest(ctx, "error", "Failed to create user", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Failed to create user"))
		return
	}

	logRequest(ctx, "info", "User registered", zap.Int("user_id", user.ID))
	writeJSON(w, http.StatusOK, user)
}

// Token handles POST /api/token. Credentials come as form fields
// (username, password) or as a JSON object with the same keys.
func (h *AuthHandler) Token(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Token request")

	req, ok := parseLogin(r)
	if !ok {
		logRequest(ctx, "error", "Invalid token request")
		writeError(w, errs.NewValidationError("username and password are required"))
		return
	}

	user, err := h.users.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logRequest(ctx, "error", "User lookup failed", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Server error"))
		return
	}

	// Same response (and a bcrypt comparison either way) for unknown users
	// and wrong passwords
	var hash string
	if user != nil {
		hash = user.Password
	} else {
		hash = h.fallbackHash()
	}
	if !h.creds.VerifyPassword(req.Password, hash) || user == nil || !user.IsActive {
		logRequest(ctx, "info", "Invalid credentials", zap.String("username", req.Username))
		writeError(w, errs.NewAuthenticationError("Incorrect username or password"))
		return
	}

	token, _, err := h.creds.IssueToken(user.Username, h.tokenTTL)
	if err != nil {
		logRequest(ctx, "error", "Token issuance failed", zap.Error(err))
		writeError(w, errs.NewInternalServerError("Token issuance failed"))
		return
	}

	logRequest(ctx, "info", "Token issued", zap.Int("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.effectiveTTL().Seconds()),
	})
}

// Me handles GET /api/users/me
func (h *AuthHandler) Me(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(ctx)
	if !ok {
		writeError(w, errs.NewAuthenticationError("Not authenticated"))
		return
	}
	logRequest(ctx, "info", "Me retrieved")
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) effectiveTTL() time.Duration {
	if h.tokenTTL <= 0 {
		return credentials.DefaultTokenTTL
	}
	return h.tokenTTL
}

func (h *AuthHandler) fallbackHash() string {
	h.dummyOnce.Do(func() {
		h.dummyHash, _ = h.creds.HashPassword("fallback-password-for-unknown-users")
	})
	return h.dummyHash
}

func parseLogin(r *http.Request) (models.LoginRequest, bool) {
	var req models.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, false
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}
	return req, req.Username != "" && req.Password != ""
}
