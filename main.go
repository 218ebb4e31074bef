package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cjy-OIer/blog/blog"
	"github.com/cjy-OIer/blog/client"
	"github.com/cjy-OIer/blog/config"
	"github.com/cjy-OIer/blog/guestbook"
	"github.com/cjy-OIer/blog/memorial"
	"github.com/cjy-OIer/blog/routes"
	"github.com/cjy-OIer/blog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.APITimeout()))

	loader := blog.NewLoader(api, utils.Logger.Named("blog"),
		blog.WithExcerptLen(cfg.PostExcerptLen),
		blog.WithFormatter(blog.NewFormatter(cfg.PostContentFormat)),
	)

	book := guestbook.New(api, utils.Logger.Named("guestbook"),
		guestbook.WithLimit(cfg.MessageLimit),
		guestbook.WithMaxNameLen(cfg.AuthorNameMaxLen),
		guestbook.WithInterval(cfg.RefreshInterval()),
	)
	if err := book.Start(ctx); err != nil {
		utils.Sugar.Fatalf("start guestbook: %v", err)
	}

	photos, err := memorial.LoadPhotoWall(cfg.PhotoManifest)
	if err != nil {
		utils.Sugar.Fatalf("load photo manifest: %v", err)
	}
	hall := memorial.NewHall(
		memorial.WithMaxCandles(cfg.MaxCandles),
		memorial.WithSilence(cfg.SilenceDuration()),
	)

	rc := utils.GetRedis()
	sessions := utils.NewSessionStore(rc, cfg.SessionTTL())
	utils.StartSessionJanitor(ctx, sessions, 5*time.Minute)

	r, err := routes.SetupRouter(routes.Deps{
		Config:    cfg,
		Health:    api,
		Loader:    loader,
		Book:      book,
		Hall:      hall,
		Photos:    photos,
		Sessions:  sessions,
		PageViews: utils.NewPageViews(rc),
	})
	if err != nil {
		utils.Sugar.Fatalf("setup router: %v", err)
	}

	utils.Logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("api", cfg.APIBaseURL),
		zap.String("sessions", sessions.Backend()),
		zap.Int("photos", len(photos.Wall)),
	)
	err = utils.GraceServer(ctx, ":"+cfg.AppPort, r, book.Stop, func() {
		if rc != nil {
			_ = rc.Close()
		}
	})
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
