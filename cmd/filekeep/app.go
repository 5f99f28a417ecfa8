package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/config"
	"github.com/sagarc03/filekeep/database"
	"github.com/sagarc03/filekeep/storage"
)

// app holds the collaborators shared by the subcommands.
type app struct {
	db       database.Database
	provider *storage.Provider
	service  *filekeep.FileService
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Open(ctx, cfg.Database, cfg.Database.AutoMigrate)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type, "table", cfg.Database.Tables.Files)

	provider, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("opened storage", "provider", cfg.Storage.Provider, "bucket", cfg.Storage.Bucket)

	service, err := filekeep.NewFileService(db.GetRepo(), provider, filekeep.ServiceConfig{
		UploadPrefix: cfg.Service.UploadPrefix,
		Owner:        cfg.Service.Owner,
	})
	if err != nil {
		_ = provider.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &app{db: db, provider: provider, service: service}, nil
}

func (a *app) Close() {
	if err := a.provider.Close(); err != nil {
		slog.Warn("close storage", "err", err)
	}
	if err := a.db.Close(); err != nil {
		slog.Warn("close database", "err", err)
	}
}
