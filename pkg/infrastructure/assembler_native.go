package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// NativeAssembler builds the PDF in process with fpdf. Each page is one
// PNG drawn full bleed on an A4 page, so the page content is kept lossless.
type NativeAssembler struct {
	Producer string
}

func NewNativeAssembler() *NativeAssembler {
	return &NativeAssembler{Producer: "resume-builder"}
}

func (a *NativeAssembler) Assemble(ctx context.Context, pages []PageImage, meta Metadata) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrAssemble)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: A4WidthPt, Ht: A4HeightPt},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(true)
	doc.SetProducer(a.Producer, true)
	doc.SetCreationDate(meta.CreatedAt)
	doc.SetModificationDate(meta.CreatedAt)
	if meta.Title != "" {
		doc.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		doc.SetAuthor(meta.Author, true)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err := encodePNG(p)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("page-%d", i+1)
		doc.AddPage()
		doc.RegisterImageOptionsReader(name, opts, buf)
		doc.ImageOptions(name, 0, 0, A4WidthPt, A4HeightPt, false, opts, 0, "")
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrAssemble, p.Number, err)
		}
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: write document: %v", ErrAssemble, err)
	}
	return out.Bytes(), nil
}
