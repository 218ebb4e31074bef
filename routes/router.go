package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/blog"
	"github.com/cjy-OIer/blog/config"
	"github.com/cjy-OIer/blog/controllers"
	"github.com/cjy-OIer/blog/guestbook"
	"github.com/cjy-OIer/blog/memorial"
	"github.com/cjy-OIer/blog/middleware"
	"github.com/cjy-OIer/blog/templates"
	"github.com/cjy-OIer/blog/utils"
)

// Deps are the long-lived components the handlers share.
type Deps struct {
	Config    config.AppConfig
	Health    controllers.HealthChecker
	Loader    *blog.Loader
	Book      *guestbook.Controller
	Hall      *memorial.Hall
	Photos    memorial.PhotoWall
	Sessions  *utils.SessionStore
	PageViews *utils.PageViews
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := templates.Load()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.RequestID())
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.VisitorSession(cfg.SessionCookie, cfg.SessionTTL()))
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(d.PageViews))

	r.Static("/static", cfg.StaticDir)

	postController := controllers.NewPostController(d.Loader, cfg)
	memorialController := controllers.NewMemorialController(d.Book, d.Hall, d.Photos, d.Sessions, cfg, utils.Logger)
	statsController := controllers.NewStatsController(d.Book, d.PageViews)
	configController := controllers.NewConfigController(cfg)
	healthController := controllers.NewHealthController(d.Health, d.Sessions)

	r.GET("/health", healthController.Health)

	r.GET("/", postController.ListPosts)
	r.GET("/post", postController.GetPost)
	r.GET("/posts/:id", postController.GetPost)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	throttle := middleware.RateLimit(limiter, memorialController.RateLimited)

	hall := r.Group("/memorial")
	hall.GET("", memorialController.Page)
	hall.GET("/messages", memorialController.Messages)
	hall.POST("/messages", throttle, memorialController.SubmitMessage)
	hall.GET("/stats", statsController.GetStats)
	hall.POST("/candles", throttle, memorialController.LightCandle)
	hall.POST("/music", memorialController.Music)
	hall.POST("/silence", memorialController.Silence)
	hall.GET("/photos/:which", memorialController.Photo)

	api := r.Group("/api")
	api.GET("/site/config", configController.GetSiteConfig)
	api.GET("/site/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		controllers.RenderError(ctx, cfg, http.StatusNotFound, "页面不存在", "请返回首页或稍后重试")
	})

	return r, nil
}
