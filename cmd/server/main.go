package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"health-tracker/internal/config"
	"health-tracker/internal/core"
	"health-tracker/internal/db"
	httpserver "health-tracker/internal/http"
	"health-tracker/internal/llm"
	"health-tracker/internal/logger"
	"health-tracker/internal/render"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	dbConn, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		zlog.Fatal("failed to ping database", zap.Error(err))
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	repo := db.NewRepository(dbConn)

	aiClient := llm.New(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.Timeout, zlog)
	renderer := render.New(cfg.Render.URL, cfg.Render.Timeout)

	srv := &httpserver.Server{
		Users:     core.NewUserService(repo, zlog),
		CheckIns:  core.NewCheckInService(repo, aiClient, zlog),
		Triage:    core.NewTriageService(repo, aiClient, zlog),
		Chat:      core.NewChatService(repo, aiClient, cfg.Chat.HistoryWindow, zlog),
		Reports:   core.NewReportService(repo, aiClient, renderer, zlog),
		Exports:   core.NewExportService(repo),
		JWTSecret: cfg.JWT.Secret,
		JWTExpire: cfg.JWT.ExpireTime,
		Log:       zlog,
	}

	router := srv.Router(cfg.Server.Mode)
	addr := ":" + cfg.Server.Port
	zlog.Info("listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
