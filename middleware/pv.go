package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/utils"
)

// PageViewRecorder records page views per day and path.
func PageViewRecorder(pv *utils.PageViews) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only successful GET page renders count.
		if c.Request.Method != http.MethodGet {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/memorial/") {
			return
		}
		pv.Record(c.Request.Context(), utils.DayKey(time.Now()), path)
	}
}
