package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var pagesTemplate = template.Must(template.New("pages").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
html, body { margin: 0; padding: 0; }
img { display: block; width: 210mm; height: 297mm; page-break-after: always; break-after: page; }
img:last-child { page-break-after: auto; break-after: auto; }
</style></head>
<body>{{range .Pages}}<img src="{{.}}">{{end}}</body></html>`))

// ChromedpAssembler prints the page images through headless Chrome. Each
// image fills one A4 sheet.
type ChromedpAssembler struct {
	ExecPath string
	Timeout  time.Duration
}

func NewChromedpAssembler(execPath string) *ChromedpAssembler {
	return &ChromedpAssembler{ExecPath: execPath, Timeout: 60 * time.Second}
}

func (a *ChromedpAssembler) Assemble(ctx context.Context, pages []PageImage, meta Metadata) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrAssemble)
	}
	html, err := pagesHTML(pages, meta)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if a.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(a.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, a.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: print to PDF: %v", ErrAssemble, err)
	}
	return pdfBuf, nil
}

// pagesHTML embeds every page as a lossless PNG data URL.
func pagesHTML(pages []PageImage, meta Metadata) ([]byte, error) {
	srcs := make([]template.URL, 0, len(pages))
	for _, p := range pages {
		buf, err := encodePNG(p)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, template.URL("data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes())))
	}
	var out bytes.Buffer
	err := pagesTemplate.Execute(&out, struct {
		Title string
		Pages []template.URL
	}{Title: meta.Title, Pages: srcs})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
