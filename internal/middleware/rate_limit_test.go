package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-share/backend/internal/logger"
	"github.com/pageza/recipe-share/backend/internal/model"
)

var fixedNow = time.Date(2024, 3, 10, 14, 25, 0, 0, time.UTC)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	rl := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:test",
	}, logger.Nop())
	rl.now = func() time.Time { return fixedNow }
	return rl, mock
}

func expectCount(mock redismock.ClientMock, key string, count int64) {
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpire(key, time.Hour).SetVal(true)
}

func windowKey(subject string) string {
	return "rate_limit:test:" + subject + ":" + strconv.FormatInt(fixedNow.Truncate(time.Hour).Unix(), 10)
}

func TestIsAllowed(t *testing.T) {
	rl, mock := newTestLimiter(t, 2)
	key := windowKey("user-1")

	expectCount(mock, key, 1)
	expectCount(mock, key, 2)
	expectCount(mock, key, 3)

	allowed, remaining, reset, err := rl.IsAllowed(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, fixedNow.Truncate(time.Hour).Add(time.Hour), reset)

	allowed, remaining, _, err = rl.IsAllowed(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, remaining, _, err = rl.IsAllowed(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func limitedRouter(identity model.Identity, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	setIdentity := func(c *gin.Context) {
		c.Set(IdentityKey, identity)
		c.Next()
	}
	r.PUT("/recipes/:id", setIdentity, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, mock := newTestLimiter(t, 1)
	identity := model.Identity{ID: uuid.New(), Role: model.RoleAdmin}
	key := windowKey(identity.ID.String())
	r := limitedRouter(identity, rl.RateLimitMiddleware())

	expectCount(mock, key, 1)
	expectCount(mock, key, 2)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/recipes/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/recipes/abc", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
	assert.Contains(t, w.Body.String(), `"retry_after":2100`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerRecipeRateLimitMiddleware(t *testing.T) {
	rl, mock := newTestLimiter(t, 5)
	identity := model.Identity{ID: uuid.New(), Role: model.RoleUser}
	r := limitedRouter(identity, rl.PerRecipeRateLimitMiddleware())

	expectCount(mock, windowKey(identity.ID.String()+":first"), 1)
	expectCount(mock, windowKey(identity.ID.String()+":second"), 1)

	for _, id := range []string{"first", "second"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/recipes/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	rl, mock := newTestLimiter(t, 1)
	identity := model.Identity{ID: uuid.New()}
	mock.ExpectIncr(windowKey(identity.ID.String())).SetErr(errors.New("connection refused"))

	w := httptest.NewRecorder()
	limitedRouter(identity, rl.RateLimitMiddleware()).
		ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/recipes/abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitMiddlewareRequiresIdentity(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	r := gin.New()
	r.POST("/recipes", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRemaining(t *testing.T) {
	rl, mock := newTestLimiter(t, 5)

	mock.ExpectGet(windowKey("fresh")).RedisNil()
	mock.ExpectGet(windowKey("busy")).SetVal("3")
	mock.ExpectGet(windowKey("over")).SetVal("9")

	remaining, reset, err := rl.Remaining(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
	assert.Equal(t, fixedNow.Truncate(time.Hour).Add(time.Hour), reset)

	remaining, _, err = rl.Remaining(context.Background(), "busy")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	remaining, _, err = rl.Remaining(context.Background(), "over")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}
