package infrastructure

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/ledongthuc/pdf"
)

// ErrAssemble marks failures while producing or checking the output document.
var ErrAssemble = errors.New("assemble document")

// A4 in PDF points.
const (
	A4WidthPt  = 595.28
	A4HeightPt = 841.89
)

// PageImage is one rasterized page, drawn full bleed on an A4 page.
type PageImage struct {
	Number int
	Image  image.Image
}

type Metadata struct {
	Title     string
	Author    string
	CreatedAt time.Time
}

// VerifyPDF checks the signature and that the document reads back with the
// expected number of pages.
func VerifyPDF(b []byte, wantPages int) error {
	if len(b) == 0 || !bytes.HasPrefix(b, []byte("%PDF")) {
		return fmt.Errorf("%w: invalid PDF output (len=%d)", ErrAssemble, len(b))
	}
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return fmt.Errorf("%w: read back PDF: %v", ErrAssemble, err)
	}
	if got := r.NumPage(); got != wantPages {
		return fmt.Errorf("%w: PDF has %d pages, want %d", ErrAssemble, got, wantPages)
	}
	return nil
}

// encodePNG encodes one page losslessly. Opaque pages are written as RGB.
func encodePNG(p PageImage) (*bytes.Buffer, error) {
	if p.Image == nil {
		return nil, fmt.Errorf("%w: page %d has no image", ErrAssemble, p.Number)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, fmt.Errorf("%w: encode page %d: %v", ErrAssemble, p.Number, err)
	}
	return &buf, nil
}
