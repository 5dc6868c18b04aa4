package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talent-scheduler/internal/app"
	"talent-scheduler/internal/config"
	"talent-scheduler/internal/db"
	"talent-scheduler/internal/notify"
	"talent-scheduler/internal/server"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	store := app.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	auth := app.NewAuthenticator(cfg.JWTSecret, cfg.StaticTokens, store, cfg.BookingTokenTTL)
	a := app.New(store, auth, logger, cfg.FrontendURL)
	a.LockTTL = cfg.ActionLockTTL

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		a.Events = app.NewRedisPublisher(rdb)
		a.Locks = app.NewRedisLocker(rdb, logger)
		logger.Info("redis enabled for events and action locks")
	} else {
		logger.Warn("REDIS_URL not set, using in-process action locks and no event fan-out")
	}

	a.OAuth = app.OAuthConfig(cfg.Google)
	if gc := app.NewGoogleCalendar(cfg.Google); gc != nil {
		a.Calendar = gc
		logger.Info("google calendar enabled", zap.String("calendar_id", cfg.Google.CalendarID))
	}

	if cfg.Email.Enabled() {
		a.Mailer = notify.NewSMTPSender(cfg.Email)
		logger.Info("smtp relay enabled", zap.String("host", cfg.Email.Host))
	}

	reminders := app.NewReminders(a, cfg.ReminderSchedule, cfg.ReminderWindow)
	if err := reminders.Start(ctx); err != nil {
		logger.Fatal("start reminders", zap.Error(err))
	}

	limiter := app.NewIPRateLimiter(cfg.PublicRatePerSecond, cfg.PublicRateBurst)
	router := app.NewRouter(a, limiter)

	err = server.Run(cfg.Addr(), router, logger, func() {
		cancel()
		reminders.Stop()
		a.Wait()
	})
	if err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
	logger.Info("bye")
}
