package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/style"
	"resume-builder/pkg/infrastructure"

	"go.uber.org/zap"
)

// exportState is threaded through the stages. Each stage reads what earlier
// stages produced and fills in its own output.
type exportState struct {
	doc      model.Document
	tree     normalize.RenderTree
	captured style.Captured
	block    *layout.Block
	pages    []layout.PageDescriptor
	images   []infrastructure.PageImage
	pdf      []byte
}

type stage struct {
	name string
	run  func(ctx context.Context, st *exportState) error
}

func (e *Exporter) stages() []stage {
	return []stage{
		{"normalize", func(_ context.Context, st *exportState) error {
			st.tree = normalize.Normalize(st.doc)
			return nil
		}},
		{"capture_styles", func(_ context.Context, st *exportState) error {
			st.captured = style.Capture(e.sheet, style.Classes, e.fonts)
			for _, w := range st.captured.Warnings {
				e.log.Warn("Style could not be captured, using fallback", zap.String("class", w.Class), zap.String("property", w.Property), zap.String("reason", w.Reason))
			}
			return nil
		}},
		{"layout", func(_ context.Context, st *exportState) error {
			block, err := layout.Build(st.tree, st.captured, e.fonts, e.page)
			st.block = block
			return err
		}},
		{"paginate", func(_ context.Context, st *exportState) error {
			pages, err := layout.Paginate(st.block, e.page)
			st.pages = pages
			return err
		}},
		{"rasterize", func(ctx context.Context, st *exportState) error {
			images, err := e.raster.Rasterize(ctx, st.pages)
			st.images = images
			return err
		}},
		{"assemble", func(ctx context.Context, st *exportState) error {
			pdf, err := e.assemble(ctx, st.images, infrastructure.Metadata{
				Title:  documentTitle(st.doc),
				Author: strings.TrimSpace(st.doc.PersonalInfo.Name),
			}, len(st.pages))
			st.pdf = pdf
			return err
		}},
	}
}

func (e *Exporter) runStages(ctx context.Context, st *exportState) error {
	for _, s := range e.stages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := s.run(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		e.log.Debug("Export stage completed", zap.String("stage", s.name), zap.Duration("took", time.Since(start)))
	}
	return nil
}

// assemble produces the document with retry and validation.
func (e *Exporter) assemble(ctx context.Context, images []infrastructure.PageImage, meta infrastructure.Metadata, pageCount int) ([]byte, error) {
	var lastErr error
	for i := 0; i < e.attempts; i++ {
		pdf, err := e.assembler.Assemble(ctx, images, meta)
		if err == nil {
			err = infrastructure.VerifyPDF(pdf, pageCount)
		}
		if err == nil {
			return pdf, nil
		}
		lastErr = err
		e.log.Warn("Assemble attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		// exponential backoff before retrying
		if i < e.attempts-1 {
			backoff := e.backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("assembling failed after %d attempts: %w", e.attempts, lastErr)
}
