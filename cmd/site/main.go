package main

import (
	"context"
	"log"
	"regexp"
	"time"

	"kingdojo/client"
	"kingdojo/internal/admin"
	"kingdojo/internal/app"
	"kingdojo/internal/auth"
	"kingdojo/internal/config"
	"kingdojo/internal/content"
	"kingdojo/internal/handlers"
	"kingdojo/internal/media"
	"kingdojo/internal/middleware"
	"kingdojo/internal/observability"
	"kingdojo/internal/platform/postgres"
	rediscfg "kingdojo/internal/platform/redis"
	"kingdojo/internal/platform/storage"
	"kingdojo/internal/site"
)

func main() {
	cfg, err := config.LoadService("SITE_")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := observability.NewLogger(cfg.ServiceName, cfg.LogLevel, cfg.Environment == "dev")
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connection failed")
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, cfg.ServiceDatabase.Role); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}
	serviceDB, err := postgres.Connect(ctx, cfg.ServiceDatabase.Database())
	if err != nil {
		logger.Fatal().Err(err).Msg("service db connection failed")
	}
	defer serviceDB.Close()
	rdb, err := rediscfg.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	exclude, err := regexp.Compile(cfg.Admin.ExcludePattern)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid EDGE_EXCLUDE_PATTERN")
	}

	cookies := auth.NewCookies(cfg.Admin, cfg.IsProduction())
	if err := cookies.Validate(); err != nil {
		// Logins answer 500 until this is fixed; public pages keep working.
		logger.Error().Err(err).Msg("admin cookie settings invalid")
	}
	authSvc := auth.NewService(auth.NewRepository(db), auth.Config{
		AccessTokenTTL:  cfg.Admin.AccessTokenTTL,
		RefreshTokenTTL: cfg.Admin.SessionTTL(),
		ReuseGrace:      cfg.Admin.RefreshGrace,
	})
	sessions := auth.NewSessionManager(authSvc, cookies, cfg.Admin.AuthTimeout, logger)
	gate := admin.NewGate(sessions, admin.NewAllowlistRepo(serviceDB), cfg.Admin.AllowlistTimeout, logger)

	settings := content.NewSettingsRepo(db)
	news := content.NewNewsRepo(db)
	achievements := content.NewAchievementRepo(db)
	products := content.NewProductRepo(db)
	schedules := content.NewScheduleRepo(db)
	students := content.NewStudentRepo(db)
	coaches := content.NewCoachRepo(db)
	gallery := content.NewGalleryRepo(db)

	uploader := media.NewUploader(storage.NewS3(cfg.Storage), cfg.Storage.Bucket, cfg.Storage.PublicBaseURL, cfg.Media.MaxWidth)
	adminHandler := admin.NewHandler(sessions, settings, admin.Stores{
		News:         news,
		Achievements: achievements,
		Products:     products,
		Schedules:    schedules,
		Students:     students,
		Coaches:      coaches,
		Gallery:      gallery,
	}, uploader, cfg.Media.MaxUploadMB, logger)

	server := app.NewSiteServer(cfg, logger, app.SiteDeps{
		Sessions: sessions,
		Gate:     gate,
		Admin:    adminHandler,
		Content: site.Content{
			Settings:     settings,
			News:         news,
			Achievements: achievements,
			Products:     products,
			Schedules:    schedules,
			Students:     students,
			Coaches:      coaches,
			Gallery:      gallery,
		},
		LoginLimit: middleware.RateLimiter(rdb, cfg.RateLimit.RequestsPerMinute),
		Ready: handlers.ReadyHandler(cfg.ServiceName, 2*time.Second, map[string]handlers.Pinger{
			"postgres":         db,
			"postgres_service": serviceDB,
			"redis":            handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
		Static:      client.StaticHandler(),
		EdgeExclude: exclude,
	})

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("site terminated")
	}
}
