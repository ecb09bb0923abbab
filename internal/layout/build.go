// Package layout renders a RenderTree into a fixed-width block of atomic
// units and splits that block into A4 pages without cutting any unit.
package layout

import (
	"fmt"
	"strings"

	"resume-builder/internal/fonts"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/style"
)

const (
	separator  = "|"
	headerGap  = 16.0
	markerSize = 1.5
)

type builder struct {
	m     *measurer
	width float64
	units []Unit
}

// Build lays the tree out once at the page's content width. The captured
// sheet must come from style.Capture so every class and family resolves.
func Build(tree normalize.RenderTree, captured style.Captured, reg *fonts.Registry, page Page) (*Block, error) {
	faces := reg.NewFaces(1)
	defer faces.Close()

	b := &builder{
		m:     &measurer{faces: faces, sheet: captured.Sheet},
		width: page.ContentWidth(),
	}
	if err := b.header(tree.Header); err != nil {
		return nil, err
	}
	for _, sec := range tree.Sections {
		if err := b.section(sec); err != nil {
			return nil, fmt.Errorf("layout %s: %w", sec.Kind, err)
		}
	}
	if len(b.units) == 0 {
		return nil, ErrMissingRenderTarget
	}
	return &Block{Width: b.width, Units: b.units, Styles: captured}, nil
}

// text adds a single-class unit. Empty text adds nothing.
func (b *builder) text(kind string, sec model.Section, class, text string) (*Unit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return b.rich(kind, sec, class, []run{{text: text, class: class}})
}

// rich adds a unit whose box style comes from class and whose text mixes runs.
func (b *builder) rich(kind string, sec model.Section, class string, runs []run) (*Unit, error) {
	st := b.m.sheet.Get(class)
	lines, err := b.m.flow(runs, b.width, st.Indent, st.Align)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	u := Unit{
		Kind:         kind,
		Section:      sec,
		Lines:        lines,
		MarginTop:    st.MarginTop,
		MarginBottom: st.MarginBottom,
	}
	u.Height = linesHeight(lines) + st.PaddingBottom
	if st.BorderBottom > 0 {
		u.Rule = &Rule{Y: u.Height, Thickness: st.BorderBottom, Color: st.BorderColor}
		u.Height += st.BorderBottom
	}
	b.units = append(b.units, u)
	return &b.units[len(b.units)-1], nil
}

func linesHeight(lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	last := lines[len(lines)-1]
	return last.Top + last.Height
}

func (b *builder) header(h normalize.Header) error {
	if _, err := b.text(KindName, model.SectionPersonalInfo, style.ClassName, h.Name); err != nil {
		return err
	}
	if _, err := b.text(KindTitle, model.SectionPersonalInfo, style.ClassTitle, h.Title); err != nil {
		return err
	}
	if len(h.Contact) > 0 {
		row := strings.Join(h.Contact, " "+separator+" ")
		if _, err := b.text(KindContact, model.SectionPersonalInfo, style.ClassContact, row); err != nil {
			return err
		}
	}
	if len(h.Links) > 0 {
		labels := make([]string, 0, len(h.Links))
		for _, l := range h.Links {
			labels = append(labels, l.Label)
		}
		row := strings.Join(labels, " "+separator+" ")
		if _, err := b.text(KindLinks, model.SectionPersonalInfo, style.ClassLinks, row); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) section(sec normalize.Section) error {
	heading, err := b.text(KindHeading, sec.Kind, style.ClassSectionHeading, sec.Heading)
	if err != nil {
		return err
	}
	if heading != nil {
		heading.KeepWithNext = true
	}
	switch {
	case sec.Paragraph != "":
		return b.paragraph(sec)
	case len(sec.Groups) > 0:
		for _, g := range sec.Groups {
			runs := []run{
				{text: g.Category + ":", class: style.ClassSkillCategory},
				{text: strings.Join(g.Skills, ", "), class: style.ClassSkillLine},
			}
			if _, err := b.rich(KindSkillGroup, sec.Kind, style.ClassSkillLine, runs); err != nil {
				return err
			}
		}
	default:
		for _, e := range sec.Entries {
			if err := b.entry(sec.Kind, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// paragraph emits one unit per wrapped line so long summaries can break
// between lines.
func (b *builder) paragraph(sec normalize.Section) error {
	st := b.m.sheet.Get(style.ClassParagraph)
	lines, err := b.m.flow([]run{{text: sec.Paragraph, class: style.ClassParagraph}}, b.width, st.Indent, st.Align)
	if err != nil {
		return err
	}
	for i, l := range lines {
		shift := l.Top
		l.Top -= shift
		l.Baseline -= shift
		u := Unit{Kind: KindParagraph, Section: sec.Kind, Lines: []Line{l}, Height: l.Height}
		if i == 0 {
			u.MarginTop = st.MarginTop
		}
		if i == len(lines)-1 {
			u.MarginBottom = st.MarginBottom
		}
		b.units = append(b.units, u)
	}
	return nil
}

// entry lays out the record header (title with links and dates, then the
// subtitle) as one unit, followed by one unit per detail line and bullet.
func (b *builder) entry(kind model.Section, e normalize.Entry) error {
	titleSt := b.m.sheet.Get(style.ClassEntryTitle)

	var datesW float64
	if e.Dates != "" {
		w, err := b.m.width(style.ClassEntryMeta, e.Dates)
		if err != nil {
			return err
		}
		datesW = w
	}
	titleWidth := b.width
	if datesW > 0 {
		titleWidth = b.width - datesW - headerGap
	}

	runs := []run{{text: e.Title, class: style.ClassEntryTitle}}
	for i, l := range e.Links {
		label := l.Label
		if i > 0 {
			label = separator + " " + label
		}
		runs = append(runs, run{text: label, class: style.ClassEntryLink})
	}
	lines, err := b.m.flow(runs, titleWidth, titleSt.Indent, style.AlignLeft)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		// Untitled entries still get a line so the dates have somewhere to go.
		lines = []Line{{Height: titleSt.LineHeightPx}}
		a, d, err := b.m.metrics(style.ClassEntryTitle)
		if err != nil {
			return err
		}
		lines[0].Baseline = (titleSt.LineHeightPx + a - d) / 2
	}
	if datesW > 0 {
		lines[0].Spans = append(lines[0].Spans, Span{
			Text:  e.Dates,
			Class: style.ClassEntryMeta,
			X:     b.width - datesW,
			Width: datesW,
		})
	}
	if e.Subtitle != "" {
		subSt := b.m.sheet.Get(style.ClassEntrySubtitle)
		// The subtitle shares the title's column, left of the dates.
		sub, err := b.m.flow([]run{{text: e.Subtitle, class: style.ClassEntrySubtitle}}, titleWidth, subSt.Indent, subSt.Align)
		if err != nil {
			return err
		}
		offset := linesHeight(lines)
		for _, l := range sub {
			l.Top += offset
			l.Baseline += offset
			lines = append(lines, l)
		}
	}
	b.units = append(b.units, Unit{
		Kind:         KindEntry,
		Section:      kind,
		Lines:        lines,
		Height:       linesHeight(lines),
		MarginTop:    titleSt.MarginTop,
		MarginBottom: titleSt.MarginBottom,
		KeepWithNext: len(e.Details) > 0 || len(e.Bullets) > 0,
	})

	for _, d := range e.Details {
		if _, err := b.text(KindDetail, kind, style.ClassEntryDetail, d); err != nil {
			return err
		}
	}
	for _, bullet := range e.Bullets {
		u, err := b.text(KindBullet, kind, style.ClassBullet, bullet)
		if err != nil {
			return err
		}
		if u == nil {
			continue
		}
		first := u.Lines[0]
		u.Marker = &Marker{
			X:      b.m.sheet.Get(style.ClassBullet).Indent / 2,
			Y:      first.Top + first.Height/2,
			Radius: markerSize,
			Class:  style.ClassBullet,
		}
	}
	return nil
}
