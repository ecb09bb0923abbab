// Command export writes the stored resume as a PDF and exits.
//
//	export [-out name.pdf]
//
// Exit codes: 0 success, 1 failure (no artifact written), 2 bad usage or
// configuration, 3 an export is already running.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/fonts"
	"resume-builder/internal/store"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	out := flag.String("out", "", "output file (default: <Name>_Resume.pdf in the export directory)")
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after this long")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logger.NewZapLogger(cfg.App.Env)
	code := run(cfg, *out, *timeout, log)
	log.Sync()
	os.Exit(code)
}

func run(cfg config.Config, out string, timeout time.Duration, log logger.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	backend, err := repo.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Error("Storage backend not available", err)
		return 2
	}
	defer backend.Close()

	docs, err := store.Open(ctx, backend.KV, cfg.Storage.Prefix, log)
	if err != nil {
		log.Error("Unable to load document", err)
		return 1
	}
	defer docs.Close(context.Background())

	reg, err := fonts.Default()
	if err != nil {
		log.Error("Unable to load fonts", err)
		return 1
	}

	var asm usecase.Assembler = infra.NewNativeAssembler()
	if cfg.Export.Assembler == "chromedp" {
		asm = infra.NewChromedpAssembler(cfg.Export.ChromePath)
	}
	exporter := usecase.NewExporter(docs, asm, repo.NewExportsRepo(backend.Pool), reg, usecase.Options{
		OutDir:   cfg.Export.Dir,
		Attempts: cfg.Export.Attempts,
		Backoff:  time.Second,
		Scale:    float64(cfg.Export.Scale),
	}, log)

	job, err := exporter.Export(ctx, out)
	switch {
	case errors.Is(err, usecase.ErrExportInProgress):
		fmt.Fprintln(os.Stderr, "export already in progress")
		return 3
	case err != nil:
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		return 1
	}
	log.Info("Export written", zap.String("file", job.FilePath), zap.Int("pages", job.PageCount))
	fmt.Println(job.FilePath)
	return 0
}
