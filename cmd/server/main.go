package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/preview"
	"resume-builder/internal/store"
	"resume-builder/internal/style"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewZapLogger("dev").Fatal("Invalid configuration", err)
	}
	log := logger.NewZapLogger(cfg.App.Env)
	defer log.Sync()

	backend, err := repo.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("Storage backend not available", err, zap.String("backend", cfg.Storage.Backend))
	}
	defer backend.Close()

	docs, err := store.Open(ctx, backend.KV, cfg.Storage.Prefix, log)
	if err != nil {
		log.Fatal("Unable to load document", err)
	}

	reg, err := fonts.Default()
	if err != nil {
		log.Fatal("Unable to load fonts", err)
	}

	exportsRepo := repo.NewExportsRepo(backend.Pool)
	exporter := usecase.NewExporter(docs, newAssembler(cfg), exportsRepo, reg, usecase.Options{
		OutDir:   cfg.Export.Dir,
		Attempts: cfg.Export.Attempts,
		Backoff:  time.Second,
		Scale:    float64(cfg.Export.Scale),
	}, log)

	app := fiber.New(fiber.Config{ErrorHandler: httpadapter.ErrorHandler(log)})
	h := httpadapter.NewHandler(docs, exporter, exportsRepo, preview.NewRenderer(style.Canonical(), layout.A4(), reg), log)
	h.Register(app)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatal("Server failed", err)
		}
	}()
	log.Info("Server started", zap.String("port", cfg.App.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Server shutdown failed", err)
	}
	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := docs.Close(closeCtx); err != nil {
		log.Error("Pending section writes were not persisted", err)
	}
}

func newAssembler(cfg config.Config) usecase.Assembler {
	if cfg.Export.Assembler == "chromedp" {
		return infra.NewChromedpAssembler(cfg.Export.ChromePath)
	}
	return infra.NewNativeAssembler()
}
