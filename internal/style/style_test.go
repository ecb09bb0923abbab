package style

import (
	"reflect"
	"strings"
	"testing"

	"resume-builder/internal/fonts"
)

func registry(t *testing.T) *fonts.Registry {
	t.Helper()
	reg, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	return reg
}

func TestCaptureCanonicalHasNoWarnings(t *testing.T) {
	got := Capture(Canonical(), Classes, registry(t))
	if len(got.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", got.Warnings)
	}
	for _, class := range Classes {
		st, ok := got.Sheet[class]
		if !ok {
			t.Fatalf("class %s missing from captured sheet", class)
		}
		if st.FontFamily != "go" {
			t.Fatalf("class %s resolved to family %q", class, st.FontFamily)
		}
	}
	if got.Sheet[ClassSectionHeading].BorderBottom != 1 {
		t.Fatalf("heading rule lost during capture")
	}
}

func TestCaptureDegradesGracefully(t *testing.T) {
	sheet := Canonical()
	delete(sheet, ClassBullet)
	sheet[ClassName] = Style{FontFamily: "Papyrus", FontSizePx: 24, LineHeightPx: 32, Color: "not-a-color", Align: "justify"}
	sheet[ClassSectionHeading] = Style{FontSizePx: 14, LineHeightPx: 20, BorderBottom: 1, BorderColor: "???"}

	got := Capture(sheet, Classes, registry(t))

	var props []string
	for _, w := range got.Warnings {
		props = append(props, w.String())
	}
	want := []string{
		"bullet.*: class missing, using body style",
		`name.align: unknown alignment "justify"`,
		`name.color: invalid color "not-a-color"`,
		`name.fontFamily: no available font in "Papyrus"`,
		`section-heading.borderColor: invalid color "???"`,
	}
	if !reflect.DeepEqual(props, want) {
		t.Fatalf("warnings\n got %v\nwant %v", props, want)
	}

	body := got.Sheet[ClassBody]
	name := got.Sheet[ClassName]
	if name.Color != body.Color || name.Align != AlignLeft || name.FontFamily != "go" {
		t.Fatalf("name did not fall back: %+v", name)
	}
	if name.FontWeight != body.FontWeight {
		t.Fatalf("name did not inherit from body: %+v", name)
	}
	if got.Sheet[ClassBullet].FontSizePx != body.FontSizePx {
		t.Fatalf("missing class should use body style")
	}
	if got.Sheet[ClassSectionHeading].BorderBottom != 0 {
		t.Fatalf("invalid border color should drop the border")
	}
}

func TestCaptureWithoutBody(t *testing.T) {
	got := Capture(Sheet{}, []string{ClassBullet}, registry(t))
	if got.Sheet[ClassBody].FontSizePx != Canonical()[ClassBody].FontSizePx {
		t.Fatalf("body should default to canonical")
	}
	if len(got.Warnings) != 2 {
		t.Fatalf("expected body and bullet warnings, got %v", got.Warnings)
	}
}

func TestCSSContainsEveryClass(t *testing.T) {
	css := CSS(Canonical())
	for _, class := range Classes {
		if class == ClassBody {
			continue
		}
		if !strings.Contains(css, ".resume ."+class+" {") {
			t.Fatalf("css missing class %s", class)
		}
	}
	if !strings.Contains(css, "border-bottom: 1px solid #d1d5db;") {
		t.Fatalf("css missing heading rule:\n%s", css)
	}
	if css != CSS(Canonical()) {
		t.Fatalf("css output is not deterministic")
	}
}

func TestCapturedCSSNamesDrawableFaces(t *testing.T) {
	got := Capture(Canonical(), Classes, registry(t))
	css := CSS(got.Sheet)
	if strings.Contains(css, "Arial") {
		t.Fatalf("captured css still asks for the unresolved stack:\n%s", css)
	}
	if !strings.Contains(css, `font-family: "go";`) {
		t.Fatalf("captured css does not name the resolved family:\n%s", css)
	}
	// Headings ask for 600; only 400, 500 and 700 exist.
	if w := got.Sheet[ClassSectionHeading].FontWeight; w != 500 {
		t.Fatalf("heading weight should snap to a registered face, got %d", w)
	}
	if !strings.Contains(css, "font-weight: 500;") || strings.Contains(css, "font-weight: 600;") {
		t.Fatalf("css weights do not match registered faces:\n%s", css)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#374151")
	if err != nil || c.R != 0x37 || c.G != 0x41 || c.B != 0x51 || c.A != 0xff {
		t.Fatalf("got %v %v", c, err)
	}
	if c, err := ParseColor("#fff"); err != nil || c.R != 0xff {
		t.Fatalf("short form: %v %v", c, err)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Fatalf("expected error for named color")
	}
}
