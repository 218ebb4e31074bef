package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cjy-OIer/blog/utils"
)

// MsgRateLimited is shown when a client posts too often.
const MsgRateLimited = "操作过于频繁，请稍后再试"

const limiterIdle = 5 * time.Minute

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

// NewRateLimiter allows perMinute requests per IP with a burst of half that.
func NewRateLimiter(perMinute int) *RateLimiter {
	perMinute = max(perMinute, 1)
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		now:      time.Now,
		limiters: map[string]*clientLimiter{},
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, cl := range l.limiters {
		if now.After(cl.expires) {
			delete(l.limiters, k)
		}
	}
	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = cl
	}
	cl.expires = now.Add(limiterIdle)
	return cl.limiter.AllowN(now, 1)
}

// RateLimit applies l by client IP. onReject handles refused requests;
// nil answers with the JSON envelope.
func RateLimit(l *RateLimiter, onReject gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if l.Allow(ctx.ClientIP()) {
			ctx.Next()
			return
		}
		if onReject != nil {
			onReject(ctx)
		} else {
			utils.Error(ctx, http.StatusTooManyRequests, utils.CodeRateLimit, MsgRateLimited)
		}
		ctx.Abort()
	}
}
