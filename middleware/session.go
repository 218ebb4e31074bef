package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VisitorKey is the gin context key holding the visitor id.
const VisitorKey = "visitor_id"

// VisitorSession makes sure every request carries an anonymous visitor id cookie.
func VisitorSession(cookieName string, ttl time.Duration) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil {
			id = ""
		}
		if _, perr := uuid.Parse(id); perr != nil {
			id = uuid.NewString()
		}
		// sliding expiry
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, maxAge, "/", "", c.Request.TLS != nil, true)
		c.Set(VisitorKey, id)
		c.Next()
	}
}

// VisitorID returns the visitor id set by VisitorSession.
func VisitorID(c *gin.Context) string {
	return c.GetString(VisitorKey)
}
