package server

import (
	"context"
	"net/http"
	"strings"

	"taskdo-service/credentials"
	"taskdo-service/models"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// UserResolver maps a token subject to its account
type UserResolver interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator is the httpserver auth callback for bearer routes
type Authenticator struct {
	creds *credentials.Service
	users UserResolver
}

func NewAuthenticator(creds *credentials.Service, users UserResolver) *Authenticator {
	return &Authenticator{creds: creds, users: users}
}

// CheckAuth accepts "Authorization: Bearer <jwt>" whose subject names an
// active user. The resolved models.User is carried as the request claims.
func (a *Authenticator) CheckAuth(r *http.Request) (bool, httpserver.RequestAuth) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return false, httpserver.RequestAuth{}
	}

	username, err := a.creds.ValidateToken(token)
	if err != nil {
		logger.Debug("Rejected bearer token", zap.Error(err))
		return false, httpserver.RequestAuth{}
	}

	user, err := a.users.FindByUsername(r.Context(), username)
	if err != nil {
		logger.Debug("Token subject not resolved", zap.String("username", username), zap.Error(err))
		return false, httpserver.RequestAuth{}
	}
	if !user.IsActive {
		logger.Info("Inactive user presented a token", zap.String("username", username))
		return false, httpserver.RequestAuth{}
	}

	return true, httpserver.RequestAuth{
		Type:   "bearer",
		Client: user.Username,
		Claims: *user,
	}
}
