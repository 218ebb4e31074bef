package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjy-OIer/blog/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestVisitorSessionIssuesAndKeepsCookie(t *testing.T) {
	r := gin.New()
	r.Use(VisitorSession("sid", time.Hour))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Body.String()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "forged", w.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())
}

func TestRateLimitRejectsBurst(t *testing.T) {
	l := NewRateLimiter(4) // burst 2
	frozen := time.Now()
	l.now = func() time.Time { return frozen }

	r := gin.New()
	r.POST("/x", RateLimit(l, nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// tokens come back with time
	frozen = frozen.Add(30 * time.Second)
	assert.True(t, l.Allow("192.0.2.1"))
}

func TestRateLimitCustomReject(t *testing.T) {
	l := NewRateLimiter(1)
	r := gin.New()
	r.POST("/x", RateLimit(l, func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/back") }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/back", w.Header().Get("Location"))
}

func TestPageViewRecorderCountsPagesOnly(t *testing.T) {
	pv := utils.NewPageViews(nil)
	r := gin.New()
	r.Use(PageViewRecorder(pv))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/", ok)
	r.GET("/health", ok)
	r.GET("/api/site/config", ok)
	r.GET("/memorial/stats", ok)
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, p := range []string{"/", "/", "/health", "/api/site/config", "/memorial/stats", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	day := utils.DayKey(time.Now())
	assert.Equal(t, map[string]int64{"/": 2}, pv.Day(context.Background(), day))
}
