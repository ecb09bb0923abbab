package layout

import (
	"strings"
	"unicode/utf8"

	"resume-builder/internal/fonts"
	"resume-builder/internal/style"

	"golang.org/x/image/math/fixed"
)

// run is text in a single class, before wrapping.
type run struct {
	text  string
	class string
}

type token struct {
	text  string
	class string
	width float64
}

type measurer struct {
	faces *fonts.Faces
	sheet style.Sheet
}

func (m *measurer) width(class, s string) (float64, error) {
	st := m.sheet.Get(class)
	return m.faces.Measure(st.FontFamily, st.FontWeight, st.FontSizePx, s)
}

// metrics returns ascent and descent in pixels for a class.
func (m *measurer) metrics(class string) (float64, float64, error) {
	st := m.sheet.Get(class)
	face, err := m.faces.Face(st.FontFamily, st.FontWeight, st.FontSizePx)
	if err != nil {
		return 0, 0, err
	}
	met := face.Metrics()
	return toFloat(met.Ascent), toFloat(met.Descent), nil
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// flow wraps runs greedily into lines of at most avail pixels starting at
// indent, then aligns each line within width.
func (m *measurer) flow(runs []run, width, indent float64, align string) ([]Line, error) {
	avail := width - indent
	var tokens []token
	for _, r := range runs {
		for _, w := range strings.Fields(r.text) {
			tw, err := m.width(r.class, w)
			if err != nil {
				return nil, err
			}
			if tw <= avail {
				tokens = append(tokens, token{text: w, class: r.class, width: tw})
				continue
			}
			pieces, err := m.hardBreak(r.class, w, avail)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, pieces...)
		}
	}

	var (
		rows    [][]token
		current []token
		used    float64
	)
	for _, tok := range tokens {
		add := tok.width
		if len(current) > 0 {
			space, err := m.width(tok.class, " ")
			if err != nil {
				return nil, err
			}
			add += space
		}
		if len(current) > 0 && used+add > avail {
			rows = append(rows, current)
			current, used = nil, 0
			add = tok.width
		}
		current = append(current, tok)
		used += add
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	lines := make([]Line, 0, len(rows))
	top := 0.0
	for _, row := range rows {
		line, err := m.line(row, width, indent, align)
		if err != nil {
			return nil, err
		}
		line.Top = top
		line.Baseline += top
		top += line.Height
		lines = append(lines, line)
	}
	return lines, nil
}

// hardBreak splits a word wider than avail into pieces that fit.
func (m *measurer) hardBreak(class, word string, avail float64) ([]token, error) {
	var out []token
	for word != "" {
		cut := len(word)
		for cut > 0 {
			w, err := m.width(class, word[:cut])
			if err != nil {
				return nil, err
			}
			if w <= avail {
				out = append(out, token{text: word[:cut], class: class, width: w})
				break
			}
			_, size := utf8.DecodeLastRuneInString(word[:cut])
			cut -= size
		}
		if cut == 0 {
			// A single glyph wider than the line; place it anyway.
			_, size := utf8.DecodeRuneInString(word)
			w, err := m.width(class, word[:size])
			if err != nil {
				return nil, err
			}
			out = append(out, token{text: word[:size], class: class, width: w})
			cut = size
		}
		word = word[cut:]
	}
	return out, nil
}

// line merges adjacent same-class tokens into spans and positions them.
func (m *measurer) line(row []token, width, indent float64, align string) (Line, error) {
	var spans []Span
	for i, tok := range row {
		if len(spans) > 0 && spans[len(spans)-1].Class == tok.class {
			spans[len(spans)-1].Text += " " + tok.text
			continue
		}
		text := tok.text
		if i > 0 {
			// The gap before a class change belongs to the new span.
			text = " " + text
		}
		spans = append(spans, Span{Text: text, Class: tok.class})
	}

	var (
		x          float64
		lineHeight float64
		ascent     float64
		descent    float64
	)
	for i := range spans {
		w, err := m.width(spans[i].Class, spans[i].Text)
		if err != nil {
			return Line{}, err
		}
		spans[i].X = x
		spans[i].Width = w
		x += w

		st := m.sheet.Get(spans[i].Class)
		a, d, err := m.metrics(spans[i].Class)
		if err != nil {
			return Line{}, err
		}
		lineHeight = max(lineHeight, st.LineHeightPx)
		ascent = max(ascent, a)
		descent = max(descent, d)
	}

	var offset float64
	switch align {
	case style.AlignCenter:
		offset = (width - x) / 2
	case style.AlignRight:
		offset = width - x
	default:
		offset = indent
	}
	for i := range spans {
		spans[i].X += offset
	}
	return Line{
		Spans:    spans,
		Height:   lineHeight,
		Baseline: (lineHeight + ascent - descent) / 2,
	}, nil
}
