package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"taskdo-service/models"
	"taskdo-service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/errs"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]string{
		"invalid email":    `{"username":"alice","email":"not-an-email","password":"secret1"}`,
		"short username":   `{"username":"al","email":"al@example.com","password":"secret1"}`,
		"missing password": `{"username":"alice","email":"alice@example.com"}`,
		"long password":    `{"username":"alice","email":"alice@example.com","password":"` + strings.Repeat("x", 73) + `"}`,
		"unknown field":    `{"username":"alice","email":"alice@example.com","password":"secret1","is_active":false}`,
		"malformed json":   `{"username":`,
		"empty body":       ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(env.auth.Register, call{
				method:      http.MethodPost,
				target:      "/api/register",
				body:        body,
				contentType: "application/json",
			})
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	rec := serve(env.auth.Register, call{
		method: http.MethodPost,
		target: "/api/register",
		body:   `{"username":"alice2","email":"alice@example.com","password":"secret1"}`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode[errs.AppError](t, rec).Message)
}

func TestRegisterResponseHidesPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := serve(env.auth.Register, call{
		method: http.MethodPost,
		target: "/api/register",
		body:   `{"username":"alice","email":"alice@example.com","password":"secret1"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password")

	stored, err := env.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, env.creds.VerifyPassword("secret1", stored.Password))
}

func TestTokenJSONBody(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	rec := serve(env.auth.Token, call{
		method: http.MethodPost,
		target: "/api/token",
		body:   `{"username":"alice","password":"secret1"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[models.TokenResponse](t, rec).AccessToken)
}

func TestTokenRejections(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	t.Run("unknown user gets the generic message", func(t *testing.T) {
		rec := serve(env.auth.Token, call{
			method:      http.MethodPost,
			target:      "/api/token",
			body:        "username=nobody&password=secret1",
			contentType: "application/x-www-form-urlencoded",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect username or password", decode[errs.AppError](t, rec).Message)
	})

	t.Run("wrong password gets the generic message", func(t *testing.T) {
		rec := serve(env.auth.Token, call{
			method:      http.MethodPost,
			target:      "/api/token",
			body:        "username=alice&password=secret2",
			contentType: "application/x-www-form-urlencoded",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect username or password", decode[errs.AppError](t, rec).Message)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := serve(env.auth.Token, call{
			method:      http.MethodPost,
			target:      "/api/token",
			body:        "username=alice",
			contentType: "application/x-www-form-urlencoded",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		env := newTestEnv(t)
		hash, err := env.creds.HashPassword("secret1")
		require.NoError(t, err)
		inactive := &stubUsers{user: &models.User{ID: 9, Username: "carol", Password: hash, IsActive: false}}
		h := NewAuthHandler(inactive, env.creds, 0)

		rec := serve(h.Token, call{
			method:      http.MethodPost,
			target:      "/api/token",
			body:        "username=carol&password=secret1",
			contentType: "application/x-www-form-urlencoded",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTokenDefaultTTL(t *testing.T) {
	env := newTestEnv(t)
	hash, err := env.creds.HashPassword("secret1")
	require.NoError(t, err)
	h := NewAuthHandler(&stubUsers{user: &models.User{ID: 9, Username: "carol", Password: hash, IsActive: true}}, env.creds, 0)

	rec := serve(h.Token, call{
		method:      http.MethodPost,
		target:      "/api/token",
		body:        "username=carol&password=secret1",
		contentType: "application/x-www-form-urlencoded",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 900, decode[models.TokenResponse](t, rec).ExpiresIn)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rec := serve(env.auth.Me, call{ctx: as(alice), method: http.MethodGet, target: "/api/users/me"})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, alice.ID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	rec = serve(env.auth.Me, call{method: http.MethodGet, target: "/api/users/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubUsers struct {
	user *models.User
	err  error
}

func (s *stubUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Username != username {
		return nil, store.ErrNotFound
	}
	u := *s.user
	return &u, nil
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return nil, s.err
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	env := newTestEnv(t)

	rec := serve(env.auth.Register, call{
		method: http.MethodPost,
		target: "/api/register",
		body:   `{"username":"alice","email":"alice@example.com","password":"` + strings.Repeat("é", 72) + `"}`,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "password must be at most 72 bytes", decode[errs.AppError](t, rec).Message)

	rec = serve(env.auth.Register, call{
		method: http.MethodPost,
		target: "/api/register",
		body:   `{"username":"alice","email":"alice@example.com","password":"` + strings.Repeat("é", 36) + `"}`,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
