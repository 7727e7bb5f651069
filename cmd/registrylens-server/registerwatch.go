package main

import (
	"context"
	"log/slog"
	"os"
	"registrylens-backend/lib/sqliteutil"
	"registrylens-backend/services/companysearch"
	"registrylens-backend/services/registerwatch"
	"registrylens-backend/services/registerwatch/db"
	"time"

	"github.com/go-chi/chi/v5"
)

type RegisterWatchConfig struct {
	Database             sqliteutil.Config        `json:"database"`
	CheckIntervalMinutes int                      `json:"check_interval_minutes"`
	Smtp                 registerwatch.SmtpConfig `json:"smtp"`
}

func InitRegisterWatch(
	ctx context.Context,
	r chi.Router,
	cfg RegisterWatchConfig,
	search companysearch.Service,
	checkNow *bool,
) error {
	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		return err
	}

	// the smtp password rides in the environment, not in config.json5
	if password := os.Getenv("SMTP_PASSWORD"); password != "" {
		cfg.Smtp.Password = password
	}

	service := registerwatch.NewService(
		database,
		search,
		registerwatch.NewSmtpMailer(cfg.Smtp),
		registerwatch.Options{
			CheckInterval: time.Duration(cfg.CheckIntervalMinutes) * time.Minute,
		},
	)

	if *checkNow {
		slog.Info("sweeping register watches on start")
		go func() {
			err := service.CheckAll(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "initial register watch sweep", "err", err)
			}
		}()
	}
	go service.WatchDaemon(ctx)

	r.Mount("/v1/watches", service.Router())
	return nil
}
