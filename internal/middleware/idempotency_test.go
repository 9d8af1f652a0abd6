package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func newIdempotencyRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/pickup/checkout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	r := gin.New()
	r.POST("/pickup/checkout", Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fresh": true})
	})

	cacheKey := "idemp:/pickup/checkout::abc"
	mock.ExpectGet(cacheKey).SetVal(`{"id":"cached"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newIdempotencyRequest("abc"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cached")
	assert.NotContains(t, w.Body.String(), "fresh")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RejectsConcurrentDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	r := gin.New()
	r.POST("/pickup/checkout", Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fresh": true})
	})

	cacheKey := "idemp:/pickup/checkout::abc"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newIdempotencyRequest("abc"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	r := gin.New()
	r.POST("/pickup/checkout", Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fresh": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newIdempotencyRequest(""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FirstRequestAcquiresLock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()

	r := gin.New()
	r.POST("/pickup/checkout", Idempotency(rdb), func(c *gin.Context) {
		_, hasCache := c.Get("idempotency_cache_key")
		_, hasLock := c.Get("idempotency_lock_key")
		assert.True(t, hasCache)
		assert.True(t, hasLock)
		c.JSON(http.StatusOK, gin.H{"fresh": true})
	})

	cacheKey := "idemp:/pickup/checkout::abc"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newIdempotencyRequest("abc"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fresh")
	assert.NoError(t, mock.ExpectationsWereMet())
}
