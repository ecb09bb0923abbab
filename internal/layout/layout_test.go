package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"resume-builder/internal/fonts"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/style"
)

func buildTree(t *testing.T, doc model.Document) *Block {
	t.Helper()
	reg, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	captured := style.Capture(style.Canonical(), style.Classes, reg)
	block, err := Build(normalize.Normalize(doc), captured, reg, A4())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return block
}

func longDocument(bullets int) model.Document {
	doc := model.NewDocument()
	doc.PersonalInfo = model.PersonalInfo{Name: "Jane Doe", Designation: "Engineer", Email: "jane@example.com", Github: "github.com/jane"}
	doc.ProfileSummary = strings.Repeat("Experienced engineer shipping reliable systems. ", 8)
	var desc []string
	for i := 0; i < bullets; i++ {
		desc = append(desc, fmt.Sprintf("Delivered improvement number %d across several teams and services", i))
	}
	for i := 0; i < 4; i++ {
		doc.Experience = append(doc.Experience, model.Experience{
			ID: fmt.Sprintf("e%d", i), Company: "Acme", Position: "Engineer",
			StartDate: model.NewPeriod(2020, 1), Description: strings.Join(desc, "\n"),
		})
	}
	doc.Skills = []model.Skill{{ID: "s1", Name: "Go", Category: "Languages"}, {ID: "s2", Name: "SQL", Category: "Databases"}}
	return doc
}

func TestNameOnlyDocumentIsOnePage(t *testing.T) {
	doc := model.NewDocument()
	doc.PersonalInfo.Name = "Jane Doe"
	block := buildTree(t, doc)
	if len(block.Units) != 1 || block.Units[0].Kind != KindName {
		t.Fatalf("expected only the name unit, got %+v", block.Units)
	}
	pages, err := Paginate(block, A4())
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Items) != 1 {
		t.Fatalf("expected one page with one item, got %d pages", len(pages))
	}
	if pages[0].Styles.Sheet[style.ClassName].FontSizePx != 24 {
		t.Fatalf("page should carry the captured styles")
	}
}

func TestEmptyDocumentIsMissingRenderTarget(t *testing.T) {
	reg, _ := fonts.Default()
	captured := style.Capture(style.Canonical(), style.Classes, reg)
	_, err := Build(normalize.Normalize(model.NewDocument()), captured, reg, A4())
	if !errors.Is(err, ErrMissingRenderTarget) {
		t.Fatalf("expected ErrMissingRenderTarget, got %v", err)
	}
	if _, err := Paginate(nil, A4()); !errors.Is(err, ErrMissingRenderTarget) {
		t.Fatalf("expected ErrMissingRenderTarget for nil block, got %v", err)
	}
	if _, err := Paginate(&Block{}, A4()); !errors.Is(err, ErrMissingRenderTarget) {
		t.Fatalf("expected ErrMissingRenderTarget for empty block, got %v", err)
	}
}

func TestPaginationNeverSplitsUnits(t *testing.T) {
	page := A4()
	block := buildTree(t, longDocument(30))
	pages, err := Paginate(block, page)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}

	placed := 0
	bottom := page.HeightPx - page.MarginBottom
	for _, pg := range pages {
		if len(pg.Items) == 0 {
			t.Fatalf("page %d is empty", pg.Number)
		}
		prevEnd := page.MarginTop
		for i, it := range pg.Items {
			if it.Clipped {
				t.Fatalf("no unit in this document should need clipping")
			}
			if it.Y < prevEnd-1e-9 {
				t.Fatalf("page %d item %d overlaps the previous one", pg.Number, i)
			}
			if it.Y+it.Unit.Height > bottom+1e-9 {
				t.Fatalf("page %d item %d crosses the bottom margin (%v > %v)", pg.Number, i, it.Y+it.Unit.Height, bottom)
			}
			prevEnd = it.Y + it.Unit.Height
			if it.Unit.Kind != block.Units[placed].Kind {
				t.Fatalf("units out of order at %d", placed)
			}
			placed++
		}
		last := pg.Items[len(pg.Items)-1].Unit
		if last.KeepWithNext && pg.Number != len(pages) {
			t.Fatalf("page %d ends with a %s that should stay with its follower", pg.Number, last.Kind)
		}
		if first := pg.Items[0]; first.Y != page.MarginTop {
			t.Fatalf("page %d should start at the top margin, got %v", pg.Number, first.Y)
		}
	}
	if placed != len(block.Units) {
		t.Fatalf("placed %d of %d units", placed, len(block.Units))
	}
}

func TestOversizeUnitIsPlacedAloneAndClipped(t *testing.T) {
	doc := model.NewDocument()
	doc.PersonalInfo.Name = "Jane Doe"
	doc.Projects = []model.Project{{ID: "p1", Name: "Huge", Description: strings.Repeat("word ", 4000)}}
	block := buildTree(t, doc)
	pages, err := Paginate(block, A4())
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	var clipped []Placed
	var clippedPage PageDescriptor
	for _, pg := range pages {
		for _, it := range pg.Items {
			if it.Clipped {
				clipped = append(clipped, it)
				clippedPage = pg
			}
		}
	}
	if len(clipped) != 1 || clipped[0].Unit.Kind != KindBullet {
		t.Fatalf("expected exactly one clipped bullet, got %d", len(clipped))
	}
	if len(clippedPage.Items) != 1 {
		t.Fatalf("oversize unit should be alone on its page, page has %d items", len(clippedPage.Items))
	}
}

func TestLinesStayWithinContentWidth(t *testing.T) {
	block := buildTree(t, longDocument(3))
	for _, u := range block.Units {
		for _, l := range u.Lines {
			for _, s := range l.Spans {
				if s.X < -0.5 || s.X+s.Width > block.Width+0.5 {
					t.Fatalf("%s span %q exceeds width: x=%v w=%v", u.Kind, s.Text, s.X, s.Width)
				}
			}
		}
	}
}

func TestEntryDatesAreRightAligned(t *testing.T) {
	block := buildTree(t, longDocument(1))
	for _, u := range block.Units {
		if u.Kind != KindEntry {
			continue
		}
		spans := u.Lines[0].Spans
		dates := spans[len(spans)-1]
		if dates.Text != "Jan 2020 - Present" || dates.Class != style.ClassEntryMeta {
			t.Fatalf("unexpected dates span %+v", dates)
		}
		if math.Abs(dates.X+dates.Width-block.Width) > 1e-6 {
			t.Fatalf("dates not flush right: %v + %v != %v", dates.X, dates.Width, block.Width)
		}
		if !u.KeepWithNext {
			t.Fatalf("entry header should stay with its first bullet")
		}
		return
	}
	t.Fatalf("no entry header found")
}

func TestHeadingCarriesRule(t *testing.T) {
	block := buildTree(t, longDocument(1))
	for _, u := range block.Units {
		if u.Kind == KindHeading {
			if u.Rule == nil || u.Rule.Color != "#d1d5db" || !u.KeepWithNext {
				t.Fatalf("heading unit missing rule or keep-with-next: %+v", u)
			}
			return
		}
	}
	t.Fatalf("no heading found")
}

func TestEntrySubtitleStaysLeftOfDates(t *testing.T) {
	doc := model.NewDocument()
	doc.PersonalInfo.Name = "Jane Doe"
	doc.Experience = []model.Experience{{
		ID: "e1", Position: "Engineer",
		Company:   strings.Repeat("Consolidated Widgets International ", 4),
		Location:  "Berlin, Germany",
		StartDate: model.NewPeriod(2020, 1),
	}}
	block := buildTree(t, doc)

	var entry *Unit
	for i := range block.Units {
		if block.Units[i].Kind == KindEntry {
			entry = &block.Units[i]
		}
	}
	if entry == nil {
		t.Fatalf("no entry unit in %+v", block.Units)
	}
	var datesW float64
	for _, sp := range entry.Lines[0].Spans {
		if sp.Class == style.ClassEntryMeta {
			datesW = sp.Width
		}
	}
	if datesW == 0 {
		t.Fatalf("entry should carry its dates")
	}

	limit := block.Width - datesW - headerGap
	subLines := 0
	for _, l := range entry.Lines {
		for _, sp := range l.Spans {
			if sp.Class != style.ClassEntrySubtitle {
				continue
			}
			subLines++
			if sp.X+sp.Width > limit+1e-6 {
				t.Fatalf("subtitle span %q ends at %v, past the title column %v", sp.Text, sp.X+sp.Width, limit)
			}
		}
	}
	if subLines < 2 {
		t.Fatalf("long subtitle should wrap, got %d spans", subLines)
	}
}
