// Package style holds the one style sheet shared by the live preview and the
// export pipeline. The preview receives it as CSS; the export captures a
// resolved copy that travels with every page.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	ClassBody           = "body"
	ClassName           = "name"
	ClassTitle          = "title"
	ClassContact        = "contact"
	ClassLinks          = "links"
	ClassSectionHeading = "section-heading"
	ClassParagraph      = "paragraph"
	ClassEntryTitle     = "entry-title"
	ClassEntrySubtitle  = "entry-subtitle"
	ClassEntryMeta      = "entry-meta"
	ClassEntryLink      = "entry-link"
	ClassEntryDetail    = "entry-detail"
	ClassBullet         = "bullet"
	ClassSkillCategory  = "skill-category"
	ClassSkillLine      = "skill-line"
)

// Classes lists every class the layout engine asks for.
var Classes = []string{
	ClassBody,
	ClassName,
	ClassTitle,
	ClassContact,
	ClassLinks,
	ClassSectionHeading,
	ClassParagraph,
	ClassEntryTitle,
	ClassEntrySubtitle,
	ClassEntryMeta,
	ClassEntryLink,
	ClassEntryDetail,
	ClassBullet,
	ClassSkillCategory,
	ClassSkillLine,
}

const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Style is the computed style of one class. Lengths are CSS pixels.
type Style struct {
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontWeight    int     `json:"fontWeight,omitempty"`
	FontSizePx    float64 `json:"fontSize,omitempty"`
	LineHeightPx  float64 `json:"lineHeight,omitempty"`
	Color         string  `json:"color,omitempty"`
	MarginTop     float64 `json:"marginTop,omitempty"`
	MarginBottom  float64 `json:"marginBottom,omitempty"`
	PaddingBottom float64 `json:"paddingBottom,omitempty"`
	BorderBottom  float64 `json:"borderBottom,omitempty"`
	BorderColor   string  `json:"borderColor,omitempty"`
	Indent        float64 `json:"indent,omitempty"`
	Align         string  `json:"align,omitempty"`
}

// Sheet maps class names to styles.
type Sheet map[string]Style

// Get returns the style for class, falling back to the body style.
func (s Sheet) Get(class string) Style {
	if st, ok := s[class]; ok {
		return st
	}
	return s[ClassBody]
}

// TextColor parses the style color; black when unparsable.
func (st Style) TextColor() color.RGBA {
	c, err := ParseColor(st.Color)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}

// ParseColor accepts #rgb and #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
