package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/guestbook"
	"github.com/cjy-OIer/blog/utils"
)

// StatsController exposes guestbook statistics and today's page views.
type StatsController struct {
	book  *guestbook.Controller
	views *utils.PageViews
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(book *guestbook.Controller, views *utils.PageViews) *StatsController {
	return &StatsController{book: book, views: views}
}

// GetStats returns the guestbook totals. Stats are fetched on first use;
// after that they follow submissions.
func (s *StatsController) GetStats(ctx *gin.Context) {
	b := s.book.Snapshot()
	if !b.HasStats {
		s.book.UpdateStats(ctx.Request.Context())
		b = s.book.Snapshot()
	}

	today := utils.DayKey(time.Now())
	pages := s.views.Day(ctx.Request.Context(), today)
	daily := s.views.DayTotal(ctx.Request.Context(), today)

	utils.Success(ctx, gin.H{
		"available":           b.HasStats,
		"total_messages":      b.Stats.TotalMessages,
		"total_messages_text": utils.FormatCount(b.Stats.TotalMessages),
		"last_updated":        b.Stats.LastUpdated,
		"last_updated_text":   utils.FormatDate(b.Stats.LastUpdated.Time),
		"daily_views":         daily,
		"page_views":          pages,
	})
}
