// Package preview renders the live HTML preview from the same RenderTree and
// captured style sheet the export pipeline uses. The font faces the
// rasterizer measures are embedded, so the browser wraps lines the same way.
package preview

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/normalize"
	"resume-builder/internal/style"
)

//go:embed templates/preview.html
var templatesFS embed.FS

var tpl = template.Must(template.New("preview.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templatesFS, "templates/preview.html"))

type Renderer struct {
	page     layout.Page
	css      template.CSS
	captured style.Captured
}

// NewRenderer captures sheet against reg once; every render reuses the result.
func NewRenderer(sheet style.Sheet, page layout.Page, reg *fonts.Registry) *Renderer {
	captured := style.Capture(sheet, style.Classes, reg)
	css := FontFaces(reg, captured.Sheet) + style.CSS(captured.Sheet)
	return &Renderer{page: page, css: template.CSS(css), captured: captured}
}

// Styles returns the captured sheet the preview is styled with.
func (r *Renderer) Styles() style.Captured { return r.captured }

func (r *Renderer) Render(w io.Writer, tree normalize.RenderTree) error {
	return tpl.Execute(w, struct {
		Tree normalize.RenderTree
		Page layout.Page
		CSS  template.CSS
	}{Tree: tree, Page: r.page, CSS: r.css})
}

// HTML renders the preview into a string.
func (r *Renderer) HTML(tree normalize.RenderTree) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, tree); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FontFaces emits an @font-face rule for every registered face of the
// families used by sheet, as data URLs.
func FontFaces(reg *fonts.Registry, sheet style.Sheet) string {
	var families []string
	for _, st := range sheet {
		if !slices.Contains(families, st.FontFamily) {
			families = append(families, st.FontFamily)
		}
	}
	slices.Sort(families)

	var b strings.Builder
	for _, family := range families {
		for _, f := range reg.Files(family) {
			fmt.Fprintf(&b, "@font-face {\n  font-family: %q;\n  font-style: normal;\n  font-weight: %d;\n  src: url(data:font/ttf;base64,%s) format(\"truetype\");\n}\n",
				f.Family, f.Weight, base64.StdEncoding.EncodeToString(f.TTF))
		}
	}
	return b.String()
}
