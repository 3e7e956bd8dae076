package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"summers-phone/internal/auth"
	"summers-phone/internal/calls"
	"summers-phone/internal/config"
	"summers-phone/internal/contacts"
	"summers-phone/internal/conversations"
	"summers-phone/internal/dispatch"
	"summers-phone/internal/httpapi"
	"summers-phone/internal/messages"
	"summers-phone/internal/openclaw"
	"summers-phone/internal/telephony"
	"summers-phone/pkg/logger"
	"summers-phone/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	contactSvc := contacts.NewService(contacts.NewSQLRepository(db))
	conversationSvc := conversations.NewService(conversations.NewSQLRepository(db))
	messageSvc := messages.NewService(messages.NewSQLRepository(db), contactSvc, conversationSvc)
	callSvc := calls.NewService(calls.NewSQLRepository(db))

	gateway := openclaw.New(cfg.OpenClaw.GatewayURL, cfg.OpenClaw.GatewayToken)
	dispatchSvc := dispatch.NewService(gateway, contactSvc, conversationSvc, messageSvc, callSvc)
	if cfg.OpenClaw.SendRateLimit > 0 {
		limit := cfg.OpenClaw.SendRateLimit
		window := cfg.OpenClaw.SendRateWindow
		dispatchSvc.WithRateLimiter(func(ctx context.Context, destination string) (bool, error) {
			return utils.AllowRate(ctx, rdb, "dispatch:"+destination, limit, window)
		})
	}

	webhook := telephony.SMSWebhookHandler{
		AuthToken: cfg.Twilio.AuthToken,
		PublicURL: cfg.Twilio.PublicURL,
		Ingestor:  messageSvc,
		Dedup: func(ctx context.Context, messageSid string) (bool, error) {
			return utils.MarkOnce(ctx, rdb, "webhook:sms:"+messageSid, 24*time.Hour)
		},
	}

	h := httpapi.Handlers{
		Auth:          authManager,
		Contacts:      contactSvc,
		Conversations: conversationSvc,
		Messages:      messageSvc,
		Calls:         callSvc,
		Dispatch:      dispatchSvc,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, webhook, authManager, db, rdb)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
