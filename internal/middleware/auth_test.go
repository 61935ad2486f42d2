package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
)

type stubAuthenticator struct {
	identities map[string]model.Identity
	err        error
	lastToken  string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, &service.Error{Kind: service.ErrUnauthorized, Message: "No token, authorization denied"}
	}
	id, ok := s.identities[token]
	if !ok {
		return nil, &service.Error{Kind: service.ErrUnauthorized, Message: "Token is not valid"}
	}
	return &id, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(auth Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(auth)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuthMiddleware(t *testing.T) {
	user := model.Identity{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Role: model.RoleUser}
	auth := &stubAuthenticator{identities: map[string]model.Identity{"good": user}}
	r := newAuthRouter(auth)

	t.Run("valid token", func(t *testing.T) {
		w := doGet(r, "Bearer good")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "good", auth.lastToken)

		var got model.Identity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Username, got.Username)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		w := doGet(r, "bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := doGet(r, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token, authorization denied", decodeMessage(t, w))
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"good", "Basic good", "Bearer ", "Bearer"} {
			w := doGet(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
			assert.Equal(t, "Token is not valid", decodeMessage(t, w), header)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		w := doGet(r, "Bearer forged")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token is not valid", decodeMessage(t, w))
	})
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	auth := &stubAuthenticator{err: &service.Error{Kind: service.ErrNotFound, Message: "User not found"}}
	w := doGet(newAuthRouter(auth), "Bearer stale")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeMessage(t, w))
}

func TestAuthMiddlewareHidesInternalErrors(t *testing.T) {
	auth := &stubAuthenticator{err: errors.New("connection refused")}
	w := doGet(newAuthRouter(auth), "Bearer good")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", decodeMessage(t, w))
}

func TestRequireAdmin(t *testing.T) {
	admin := model.Identity{ID: uuid.New(), Username: "root", Role: model.RoleAdmin}
	user := model.Identity{ID: uuid.New(), Username: "bob", Role: model.RoleUser}
	auth := &stubAuthenticator{identities: map[string]model.Identity{"admin": admin, "user": user}}
	r := newAuthRouter(auth, RequireAdmin())

	w := doGet(r, "Bearer admin")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "Bearer user")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied, admin only", decodeMessage(t, w))
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/protected", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doGet(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", decodeMessage(t, w))
}
