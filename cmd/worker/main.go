// Package main runs the pipeline worker standalone, for deployments that
// separate webhook intake from processing.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linkrelay/backend/config"
	"github.com/linkrelay/backend/internal/credentials"
	"github.com/linkrelay/backend/internal/outcomes"
	"github.com/linkrelay/backend/internal/pipeline"
	"github.com/linkrelay/backend/internal/slack"
	"github.com/linkrelay/backend/internal/worker"
	"github.com/linkrelay/backend/internal/zoom"
	"github.com/linkrelay/backend/pkg/queue"
	"github.com/linkrelay/backend/pkg/redis"
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

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started", zap.String("auth_mode", string(cfg.Zoom.AuthMode)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
