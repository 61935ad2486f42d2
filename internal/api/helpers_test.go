package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
	"github.com/pageza/recipe-share/backend/internal/service"
	"github.com/pageza/recipe-share/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	images *testhelpers.MemoryImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.NewSQLiteDB(t)
	images := testhelpers.NewMemoryImageStore()
	tokens := service.NewTokenIssuer("test-secret", time.Hour)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB:             db,
		AuthService:    service.NewAuthService(db, tokens, true).WithBcryptCost(bcrypt.MinCost),
		RecipeService:  service.NewRecipeService(db, images, logger.Nop()),
		SocialService:  service.NewSocialService(db),
		MaxUploadBytes: 64 << 10,
	})

	return &testEnv{router: router, db: db, images: images}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, token, body, "application/json")
}

// registerAndLogin registers a user through the API and returns a login token.
func (e *testEnv) registerAndLogin(t *testing.T, username string, role model.Role) string {
	t.Helper()
	email := username + "@example.com"

	w := e.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Email:    email,
		Password: testhelpers.TestPassword,
		Role:     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: testhelpers.TestPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[service.AuthResult](t, w).Token
}

type formFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) createRecipe(t *testing.T, token string, fields map[string]string) RecipeResponse {
	t.Helper()
	body, contentType := multipartBody(t, fields, nil)
	w := e.do(t, http.MethodPost, "/api/recipes", token, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[RecipeResponse](t, w)
}

func pancakes() map[string]string {
	return map[string]string{
		"title":        "Pancakes",
		"ingredients":  "flour, eggs , milk,",
		"instructions": "Whisk and fry.",
		"category":     "Breakfast",
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[MessageResponse](t, w).Message
}
