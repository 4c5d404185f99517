package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aridelmo/argus/internal/audit"
	"github.com/aridelmo/argus/internal/config"
	"github.com/aridelmo/argus/internal/database"
	"github.com/aridelmo/argus/internal/logger"
	"github.com/aridelmo/argus/internal/rulefile"
	"github.com/aridelmo/argus/internal/server"
	"github.com/aridelmo/argus/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and a rotated file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("ensure log directory: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "argus.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().Infof("starting %s %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RulesFile != "" {
		added, err := rulefile.Load(cfg.RulesFile, srv.Deps.Rules)
		if err != nil {
			log.Fatalf("load seed rules: %v", err)
		}
		logger.Log().WithField("added", added).Info("seed rules loaded")

		if err := rulefile.Watch(ctx, cfg.RulesFile, srv.Deps.Rules); err != nil {
			log.Fatalf("watch seed rules: %v", err)
		}
	}

	if cfg.AuditRetentionDays > 0 {
		retention := audit.NewRetention(srv.Deps.Audit, time.Duration(cfg.AuditRetentionDays)*24*time.Hour)
		if err := retention.Start(); err != nil {
			log.Fatalf("start audit retention: %v", err)
		}
		defer retention.Stop()
	}

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
