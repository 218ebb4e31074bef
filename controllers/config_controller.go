package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/config"
	"github.com/cjy-OIer/blog/utils"
)

// ConfigController serves the knobs the page scripts need.
type ConfigController struct {
	cfg config.AppConfig
}

func NewConfigController(cfg config.AppConfig) *ConfigController {
	return &ConfigController{cfg: cfg}
}

// GetSiteConfig returns refresh, toast and memorial settings.
func (c *ConfigController) GetSiteConfig(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"site_title":           c.cfg.SiteTitle,
		"refresh_interval_sec": c.cfg.RefreshIntervalSec,
		"toast_seconds":        c.cfg.ToastSeconds,
		"message_limit":        c.cfg.MessageLimit,
		"author_name_max_len":  c.cfg.AuthorNameMaxLen,
		"max_candles":          c.cfg.MaxCandles,
		"silence_seconds":      c.cfg.SilenceSeconds,
		"petal_count":          c.cfg.PetalCount,
	})
}
