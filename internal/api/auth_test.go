package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	result := decode[service.AuthResult](t, w)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.RoleUser, result.Role)

	w = env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", messageOf(t, w))
}

func TestRegisterAcceptsForm(t *testing.T) {
	env := newTestEnv(t)

	form := "username=bob&email=bob%40example.com&password=password123&role=admin"
	w := env.do(t, http.MethodPost, "/api/auth/register", "", strings.NewReader(form), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, model.RoleAdmin, decode[service.AuthResult](t, w).Role)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@example.com", Password: "pw"}},
		{"missing email", RegisterRequest{Username: "a", Password: "pw"}},
		{"missing password", RegisterRequest{Username: "a", Email: "a@example.com"}},
		{"unknown role", RegisterRequest{Username: "a", Email: "a@example.com", Password: "pw", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, messageOf(t, w))
		})
	}

	w := env.do(t, http.MethodPost, "/api/auth/register", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", messageOf(t, w))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "carol", model.RoleAdmin)
	assert.NotEmpty(t, token)

	w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "carol@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", messageOf(t, w))

	w = env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", messageOf(t, w))
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "dave", model.RoleUser)

	w := env.do(t, http.MethodGet, "/api/auth/profile", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	profile := decode[model.Identity](t, w)
	assert.Equal(t, "dave", profile.Username)
	assert.Equal(t, "dave@example.com", profile.Email)
	assert.Equal(t, model.RoleUser, profile.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodGet, "/api/auth/profile", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", messageOf(t, w))

	w = env.do(t, http.MethodGet, "/api/auth/profile", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is not valid", messageOf(t, w))
}

func TestProfileOfDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "erin", model.RoleUser)
	require.NoError(t, env.db.Where("email = ?", "erin@example.com").Delete(&model.User{}).Error)

	w := env.do(t, http.MethodGet, "/api/auth/profile", token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", messageOf(t, w))
}
