package style

import (
	"fmt"
	"slices"
	"strings"
)

// CSS renders the sheet as rules scoped under .resume.
func CSS(sheet Sheet) string {
	names := make([]string, 0, len(sheet))
	for name := range sheet {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		st := sheet[name]
		selector := ".resume ." + name
		if name == ClassBody {
			selector = ".resume"
		}
		fmt.Fprintf(&b, "%s {\n", selector)
		decl := func(prop, format string, args ...any) {
			fmt.Fprintf(&b, "  %s: %s;\n", prop, fmt.Sprintf(format, args...))
		}
		if st.FontFamily != "" {
			decl("font-family", "%s", cssFamily(st.FontFamily))
		}
		if st.FontWeight != 0 {
			decl("font-weight", "%d", st.FontWeight)
		}
		if st.FontSizePx != 0 {
			decl("font-size", "%gpx", st.FontSizePx)
		}
		if st.LineHeightPx != 0 {
			decl("line-height", "%gpx", st.LineHeightPx)
		}
		if st.Color != "" {
			decl("color", "%s", st.Color)
		}
		if st.MarginTop != 0 || st.MarginBottom != 0 {
			decl("margin", "%gpx 0 %gpx 0", st.MarginTop, st.MarginBottom)
		}
		if st.PaddingBottom != 0 {
			decl("padding-bottom", "%gpx", st.PaddingBottom)
		}
		if st.BorderBottom != 0 {
			decl("border-bottom", "%gpx solid %s", st.BorderBottom, st.BorderColor)
		}
		if st.Indent != 0 {
			decl("padding-left", "%gpx", st.Indent)
		}
		if st.Align != "" && st.Align != AlignLeft {
			decl("text-align", "%s", st.Align)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// cssFamily quotes a single resolved family name; stacks pass through.
func cssFamily(family string) string {
	if strings.Contains(family, ",") {
		return family
	}
	return fmt.Sprintf("%q", family)
}
