// Package raster draws page descriptors into images. Every page is drawn on
// its own canvas so pages can be rendered in parallel.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"

	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/style"
	"resume-builder/pkg/infrastructure"

	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"
)

var ErrRasterize = errors.New("rasterize page")

const DefaultScale = 3

type Rasterizer struct {
	reg   *fonts.Registry
	scale float64
}

// New returns a rasterizer drawing at scale times the CSS pixel size.
func New(reg *fonts.Registry, scale float64) *Rasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Rasterizer{reg: reg, scale: scale}
}

func (r *Rasterizer) Scale() float64 { return r.scale }

// Rasterize draws all pages concurrently. The first failure cancels the
// remaining pages and no images are returned.
func (r *Rasterizer) Rasterize(ctx context.Context, pages []layout.PageDescriptor) ([]infrastructure.PageImage, error) {
	out := make([]infrastructure.PageImage, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pd := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := r.Page(pd)
			if err != nil {
				return err
			}
			out[i] = infrastructure.PageImage{Number: pd.Number, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Page draws a single page descriptor.
func (r *Rasterizer) Page(pd layout.PageDescriptor) (image.Image, error) {
	s := r.scale
	w := int(pd.Page.WidthPx*s + 0.5)
	h := int(pd.Page.HeightPx*s + 0.5)
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	faces := r.reg.NewFaces(s)
	defer faces.Close()
	sheet := pd.Styles.Sheet

	for _, it := range pd.Items {
		u := it.Unit
		if it.Clipped {
			dc.DrawRectangle(0, pd.Page.MarginTop*s, float64(w), pd.Page.ContentHeight()*s)
			dc.Clip()
		}
		for _, line := range u.Lines {
			for _, span := range line.Spans {
				st := sheet.Get(span.Class)
				face, err := faces.Face(st.FontFamily, st.FontWeight, st.FontSizePx)
				if err != nil {
					return nil, fmt.Errorf("%w %d: %v", ErrRasterize, pd.Number, err)
				}
				dc.SetFontFace(face)
				dc.SetColor(st.TextColor())
				dc.DrawString(span.Text, (it.X+span.X)*s, (it.Y+line.Baseline)*s)
			}
		}
		if u.Marker != nil {
			dc.SetColor(sheet.Get(u.Marker.Class).TextColor())
			dc.DrawCircle((it.X+u.Marker.X)*s, (it.Y+u.Marker.Y)*s, u.Marker.Radius*s)
			dc.Fill()
		}
		if u.Rule != nil {
			ruleColor, err := style.ParseColor(u.Rule.Color)
			if err != nil {
				ruleColor = color.RGBA{A: 0xff}
			}
			dc.SetColor(ruleColor)
			dc.DrawRectangle(it.X*s, (it.Y+u.Rule.Y)*s, pd.Page.ContentWidth()*s, u.Rule.Thickness*s)
			dc.Fill()
		}
		if it.Clipped {
			dc.ResetClip()
		}
	}
	return dc.Image(), nil
}
