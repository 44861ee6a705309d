// Package main runs the Zoom link-relay HTTP server: webhook intake, OAuth
// callback, in-process pipeline worker, and keepalive pinger.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linkrelay/backend/config"
	"github.com/linkrelay/backend/internal/credentials"
	"github.com/linkrelay/backend/internal/keepalive"
	"github.com/linkrelay/backend/internal/middleware"
	"github.com/linkrelay/backend/internal/outcomes"
	"github.com/linkrelay/backend/internal/pipeline"
	"github.com/linkrelay/backend/internal/slack"
	"github.com/linkrelay/backend/internal/webhook"
	"github.com/linkrelay/backend/internal/worker"
	"github.com/linkrelay/backend/internal/zoom"
	"github.com/linkrelay/backend/pkg/queue"
	"github.com/linkrelay/backend/pkg/redis"
	"github.com/linkrelay/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	zoomClient := zoom.NewClient(zoom.Config{
		ClientID:      cfg.Zoom.ClientID,
		ClientSecret:  cfg.Zoom.ClientSecret,
		RedirectURI:   cfg.Zoom.RedirectURI,
		OAuthTokenURL: cfg.Zoom.OAuthTokenURL,
		APIBaseURL:    cfg.Zoom.APIBaseURL,
	}, logger)
	slackClient := slack.NewClient(cfg.Slack.BotToken, cfg.Slack.APIBaseURL, logger)
	credStore := credentials.NewStore(rdb.Client, cfg.Credentials.TTL, logger)
	recorder := outcomes.NewRecorder(rdb.Client, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	dispatcher := pipeline.NewDispatcher(zoomClient, slackClient, credStore, recorder, cfg.Slack.Channel, cfg.Zoom.AuthMode, logger)
	processor := worker.NewProcessor(jobQueue, dispatcher, logger)

	webhookHandler := webhook.NewHandler(jobQueue, recorder, logger)
	oauthHandler := zoom.NewOAuthHandler(zoomClient, credStore, logger)
	outcomesHandler := outcomes.NewHandler(recorder, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.POST("/webhook", webhookHandler.Receive)
	router.GET("/oauth/callback", oauthHandler.Callback)
	router.GET("/outcomes", outcomesHandler.List)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	logger.Info("pipeline worker started", zap.String("auth_mode", string(cfg.Zoom.AuthMode)))

	if cfg.KeepAlive.URL != "" {
		pinger := keepalive.NewPinger(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, logger)
		go pinger.Run(workerCtx)
		logger.Info("keepalive started", zap.String("url", cfg.KeepAlive.URL), zap.Duration("interval", cfg.KeepAlive.Interval))
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
