package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/raster"
	"resume-builder/internal/style"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/logger"

	"go.uber.org/zap"
)

// ErrExportInProgress is returned when an export is requested while another
// one is still running. Requests are rejected, never queued.
var ErrExportInProgress = errors.New("export already in progress")

const DefaultFileName = "resume.pdf"

type Assembler interface {
	Assemble(ctx context.Context, pages []infrastructure.PageImage, meta infrastructure.Metadata) ([]byte, error)
}

type ExportsRepo interface {
	Save(ctx context.Context, j *domain.ExportJob) error
}

// DocumentSource hands out read-only document snapshots.
type DocumentSource interface {
	Document() model.Document
}

type Options struct {
	OutDir   string
	Attempts int
	Backoff  time.Duration
	Scale    float64
	Sheet    style.Sheet
	Page     layout.Page
}

// Exporter runs the export pipeline. It only reads document snapshots, so a
// failed export never touches the store or its persistence.
type Exporter struct {
	source    DocumentSource
	assembler Assembler
	repo      ExportsRepo
	fonts     *fonts.Registry
	raster    *raster.Rasterizer
	sheet     style.Sheet
	page      layout.Page
	outDir    string
	attempts  int
	backoff   time.Duration
	log       logger.Logger

	running atomic.Bool
	mu      sync.Mutex
	last    *domain.ExportJob
}

func NewExporter(src DocumentSource, asm Assembler, repo ExportsRepo, reg *fonts.Registry, opts Options, log logger.Logger) *Exporter {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Sheet == nil {
		opts.Sheet = style.Canonical()
	}
	if opts.Page == (layout.Page{}) {
		opts.Page = layout.A4()
	}
	return &Exporter{
		source:    src,
		assembler: asm,
		repo:      repo,
		fonts:     reg,
		raster:    raster.New(reg, opts.Scale),
		sheet:     opts.Sheet,
		page:      opts.Page,
		outDir:    opts.OutDir,
		attempts:  opts.Attempts,
		backoff:   opts.Backoff,
		log:       log.With(zap.String("component", "exporter")),
	}
}

// Export runs one export synchronously and writes the artifact. An empty
// outPath derives the file name from the person's name.
func (e *Exporter) Export(ctx context.Context, outPath string) (*domain.ExportJob, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.running.Store(false)

	job, doc := e.begin()
	err := e.run(ctx, job, doc, outPath)
	return e.finish(ctx, job, err), err
}

// Start launches an export in the background and returns the running job.
func (e *Exporter) Start(ctx context.Context, outPath string) (*domain.ExportJob, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	job, doc := e.begin()
	snapshot := *job

	go func() {
		defer e.running.Store(false)
		runCtx := context.WithoutCancel(ctx)
		err := e.run(runCtx, job, doc, outPath)
		e.finish(runCtx, job, err)
	}()
	return &snapshot, nil
}

// Running reports whether an export is in flight.
func (e *Exporter) Running() bool { return e.running.Load() }

// Status returns a copy of the most recent job, or an idle job if none ran.
func (e *Exporter) Status() domain.ExportJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return domain.ExportJob{Status: domain.ExportStatusIdle}
	}
	return *e.last
}

// begin takes the one snapshot an export works from.
func (e *Exporter) begin() (*domain.ExportJob, model.Document) {
	doc := e.source.Document()
	job := domain.NewExportJob(documentTitle(doc))
	e.mu.Lock()
	e.last = job
	e.mu.Unlock()
	e.log.Info("Export started", zap.String("job_id", job.ID.String()))
	return job, doc
}

func (e *Exporter) finish(ctx context.Context, job *domain.ExportJob, err error) *domain.ExportJob {
	e.mu.Lock()
	job.Finish(err)
	snapshot := *job
	e.mu.Unlock()

	if err != nil {
		e.log.Error("Export failed", err, zap.String("job_id", job.ID.String()))
	} else {
		e.log.Info("Export completed", zap.String("job_id", job.ID.String()), zap.String("file", job.FilePath), zap.Int("pages", job.PageCount))
	}
	if e.repo != nil {
		if saveErr := e.repo.Save(ctx, &snapshot); saveErr != nil {
			e.log.Warn("Unable to record export (non-fatal)", zap.Error(saveErr))
		}
	}
	return &snapshot
}

func (e *Exporter) run(ctx context.Context, job *domain.ExportJob, doc model.Document, outPath string) error {
	st := &exportState{doc: doc}
	if err := e.runStages(ctx, st); err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = filepath.Join(e.outDir, FileName(st.doc.PersonalInfo.Name))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := repository.WriteFileAtomic(path, st.pdf); err != nil {
		return err
	}

	e.mu.Lock()
	job.FilePath = path
	job.FileName = filepath.Base(path)
	job.FileSize = int64(len(st.pdf))
	job.PageCount = len(st.pages)
	e.mu.Unlock()
	return nil
}

// OutPath places a caller-chosen file name in the export directory. Any
// directory part is dropped and ".pdf" is appended when missing.
func (e *Exporter) OutPath(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = DefaultFileName
	}
	if !strings.EqualFold(filepath.Ext(base), ".pdf") {
		base += ".pdf"
	}
	return filepath.Join(e.outDir, base)
}

// FileName derives "<Name>_Resume.pdf" from a person's name, keeping letters
// and digits and joining the rest with underscores.
func FileName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(parts) == 0 {
		return DefaultFileName
	}
	return strings.Join(parts, "_") + "_Resume.pdf"
}

func documentTitle(doc model.Document) string {
	if name := strings.TrimSpace(doc.PersonalInfo.Name); name != "" {
		return name + " - Resume"
	}
	return "Resume"
}
