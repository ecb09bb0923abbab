package layout

import (
	"errors"

	"resume-builder/internal/model"
	"resume-builder/internal/style"
)

// ErrMissingRenderTarget means there was nothing to lay out.
var ErrMissingRenderTarget = errors.New("missing render target: document block is empty")

// Page geometry in CSS pixels (96 per inch).
type Page struct {
	WidthPx      float64 `json:"width"`
	HeightPx     float64 `json:"height"`
	MarginTop    float64 `json:"marginTop"`
	MarginRight  float64 `json:"marginRight"`
	MarginBottom float64 `json:"marginBottom"`
	MarginLeft   float64 `json:"marginLeft"`
}

// A4 is 210 x 297 mm at 96 px per inch with 40 px margins.
func A4() Page {
	return Page{WidthPx: 794, HeightPx: 1123, MarginTop: 40, MarginRight: 40, MarginBottom: 40, MarginLeft: 40}
}

func (p Page) ContentWidth() float64  { return p.WidthPx - p.MarginLeft - p.MarginRight }
func (p Page) ContentHeight() float64 { return p.HeightPx - p.MarginTop - p.MarginBottom }

// Span is a run of text in one class. X is relative to the content box.
type Span struct {
	Text  string  `json:"text"`
	Class string  `json:"class"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Line positions are relative to the top of the owning unit.
type Line struct {
	Spans    []Span  `json:"spans"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Baseline float64 `json:"baseline"`
}

type Rule struct {
	Y         float64 `json:"y"`
	Thickness float64 `json:"thickness"`
	Color     string  `json:"color"`
}

// Marker is a list bullet dot.
type Marker struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Class  string  `json:"class"`
}

const (
	KindName       = "name"
	KindTitle      = "title"
	KindContact    = "contact"
	KindLinks      = "links"
	KindHeading    = "heading"
	KindParagraph  = "paragraph-line"
	KindEntry      = "entry-header"
	KindDetail     = "entry-detail"
	KindBullet     = "bullet"
	KindSkillGroup = "skill-group"
)

// Unit is an atomic piece of content. It is never split across pages.
type Unit struct {
	Kind         string        `json:"kind"`
	Section      model.Section `json:"section,omitempty"`
	Lines        []Line        `json:"lines"`
	Rule         *Rule         `json:"rule,omitempty"`
	Marker       *Marker       `json:"marker,omitempty"`
	Height       float64       `json:"height"`
	MarginTop    float64       `json:"marginTop"`
	MarginBottom float64       `json:"marginBottom"`
	KeepWithNext bool          `json:"keepWithNext,omitempty"`
}

// Block is the document laid out once at content width.
type Block struct {
	Width  float64        `json:"width"`
	Units  []Unit         `json:"units"`
	Styles style.Captured `json:"styles"`
}

// Placed is a unit positioned on a page. Y is the absolute top in page pixels.
type Placed struct {
	Unit    Unit    `json:"unit"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Clipped bool    `json:"clipped,omitempty"`
}

// PageDescriptor is everything needed to draw one page, including the
// captured styles, so no other context is required.
type PageDescriptor struct {
	Number int            `json:"number"`
	Page   Page           `json:"page"`
	Items  []Placed       `json:"items"`
	Styles style.Captured `json:"styles"`
}
