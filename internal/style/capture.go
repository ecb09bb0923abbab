package style

import (
	"cmp"
	"fmt"
	"slices"
)

// FontResolver reports which family of a CSS font stack can actually be
// drawn, and which of its weights draws a requested weight.
type FontResolver interface {
	Resolve(stack string) (family string, ok bool)
	Weight(family string, weight int) int
}

// DefaultFamily is used when no family of a stack is available.
const DefaultFamily = "sans-serif"

// Warning records one style value that could not be honored.
type Warning struct {
	Class    string `json:"class"`
	Property string `json:"property"`
	Reason   string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s.%s: %s", w.Class, w.Property, w.Reason)
}

// Captured is a fully resolved sheet: every requested class is present, every
// font family is drawable and every color parses.
type Captured struct {
	Sheet    Sheet     `json:"sheet"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Capture resolves the requested classes against sheet. Values that cannot be
// used fall back to the body style or the canonical default and are reported
// as warnings; Capture itself never fails.
func Capture(sheet Sheet, classes []string, fonts FontResolver) Captured {
	c := &capturer{fonts: fonts, out: Sheet{}}
	canonicalBody := Canonical()[ClassBody]

	body, ok := sheet[ClassBody]
	if !ok {
		c.warn(ClassBody, "*", "class missing, using canonical body")
		body = canonicalBody
	}
	body = c.resolve(ClassBody, inherit(body, canonicalBody), canonicalBody)
	c.out[ClassBody] = body

	for _, class := range classes {
		if class == ClassBody {
			continue
		}
		st, ok := sheet[class]
		if !ok {
			c.warn(class, "*", "class missing, using body style")
			st = body
		}
		c.out[class] = c.resolve(class, inherit(st, body), body)
	}
	slices.SortFunc(c.warnings, func(a, b Warning) int {
		if n := cmp.Compare(a.Class, b.Class); n != 0 {
			return n
		}
		return cmp.Compare(a.Property, b.Property)
	})
	return Captured{Sheet: c.out, Warnings: c.warnings}
}

type capturer struct {
	fonts    FontResolver
	out      Sheet
	warnings []Warning
}

func (c *capturer) warn(class, prop, reason string) {
	c.warnings = append(c.warnings, Warning{Class: class, Property: prop, Reason: reason})
}

// inherit fills unset text properties from parent. Box properties are not inherited.
func inherit(st, parent Style) Style {
	if st.FontFamily == "" {
		st.FontFamily = parent.FontFamily
	}
	if st.FontWeight == 0 {
		st.FontWeight = parent.FontWeight
	}
	if st.FontSizePx == 0 {
		st.FontSizePx = parent.FontSizePx
	}
	if st.LineHeightPx == 0 {
		st.LineHeightPx = parent.LineHeightPx
	}
	if st.Color == "" {
		st.Color = parent.Color
	}
	if st.Align == "" {
		st.Align = AlignLeft
	}
	return st
}

func (c *capturer) resolve(class string, st, fallback Style) Style {
	if family, ok := c.fonts.Resolve(st.FontFamily); ok {
		st.FontFamily = family
	} else {
		c.warn(class, "fontFamily", fmt.Sprintf("no available font in %q", st.FontFamily))
		family, ok := c.fonts.Resolve(DefaultFamily)
		if !ok {
			family = DefaultFamily
		}
		st.FontFamily = family
	}
	if st.FontWeight < 100 || st.FontWeight > 900 {
		c.warn(class, "fontWeight", fmt.Sprintf("invalid weight %d", st.FontWeight))
		st.FontWeight = fallback.FontWeight
	}
	st.FontWeight = c.fonts.Weight(st.FontFamily, st.FontWeight)
	if st.FontSizePx <= 0 {
		c.warn(class, "fontSize", "must be positive")
		st.FontSizePx = fallback.FontSizePx
	}
	if st.LineHeightPx < st.FontSizePx {
		c.warn(class, "lineHeight", "smaller than font size")
		st.LineHeightPx = st.FontSizePx * 1.25
	}
	if _, err := ParseColor(st.Color); err != nil {
		c.warn(class, "color", err.Error())
		st.Color = fallback.Color
	}
	if st.BorderBottom > 0 {
		if _, err := ParseColor(st.BorderColor); err != nil {
			c.warn(class, "borderColor", err.Error())
			st.BorderBottom = 0
			st.BorderColor = ""
		}
	}
	switch st.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		c.warn(class, "align", fmt.Sprintf("unknown alignment %q", st.Align))
		st.Align = AlignLeft
	}
	for _, v := range []*float64{&st.MarginTop, &st.MarginBottom, &st.PaddingBottom, &st.Indent} {
		if *v < 0 {
			*v = 0
		}
	}
	return st
}
