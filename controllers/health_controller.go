package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/models"
	"github.com/cjy-OIer/blog/utils"
)

// HealthChecker reports the health of the upstream API.
type HealthChecker interface {
	Health(ctx context.Context) (models.Health, error)
}

// HealthController answers liveness probes. The frontend stays "ok" while the API is down.
type HealthController struct {
	api   HealthChecker
	store *utils.SessionStore
}

func NewHealthController(api HealthChecker, store *utils.SessionStore) *HealthController {
	return &HealthController{api: api, store: store}
}

func (h *HealthController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	upstream := "unreachable"
	if hl, err := h.api.Health(c); err != nil {
		utils.Sugar.Warnf("api health check failed: %v", err)
	} else if hl.Status != "" {
		upstream = hl.Status
	}
	utils.Success(ctx, gin.H{
		"status":   "ok",
		"api":      upstream,
		"sessions": h.store.Backend(),
	})
}
