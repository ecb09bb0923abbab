// Package normalize turns a Document into a RenderTree. Display order is the
// stored order; nothing is sorted by date.
package normalize

import (
	"strings"

	"resume-builder/internal/format"
	"resume-builder/internal/model"
)

// Normalize is pure: equal documents produce equal trees.
func Normalize(doc model.Document) RenderTree {
	tree := RenderTree{Header: buildHeader(doc.PersonalInfo), Sections: []Section{}}
	for _, kind := range SectionOrder {
		if sec, ok := buildSection(doc, kind); ok {
			tree.Sections = append(tree.Sections, sec)
		}
	}
	return tree
}

func buildHeader(p model.PersonalInfo) Header {
	h := Header{
		Name:  strings.TrimSpace(p.Name),
		Title: strings.TrimSpace(p.Designation),
	}
	for _, c := range []string{p.Email, p.Phone, p.Location} {
		if c = strings.TrimSpace(c); c != "" {
			h.Contact = append(h.Contact, c)
		}
	}
	links := []Link{
		{Label: "GitHub", URL: p.Github},
		{Label: "LinkedIn", URL: p.Linkedin},
		{Label: "Portfolio", URL: p.Portfolio},
		{Label: "Twitter", URL: p.Twitter},
	}
	for _, l := range links {
		if l.URL = strings.TrimSpace(l.URL); l.URL != "" {
			h.Links = append(h.Links, l)
		}
	}
	return h
}

// buildSection reports false when the section has nothing to show.
func buildSection(doc model.Document, kind model.Section) (Section, bool) {
	sec := Section{Kind: kind, Heading: headings[kind]}
	switch kind {
	case model.SectionSummary:
		sec.Paragraph = strings.TrimSpace(doc.ProfileSummary)
		return sec, sec.Paragraph != ""
	case model.SectionExperience:
		sec.Entries = mapEntries(doc.Experience, experienceEntry)
	case model.SectionEducation:
		sec.Entries = mapEntries(doc.Education, educationEntry)
	case model.SectionProjects:
		sec.Entries = mapEntries(doc.Projects, projectEntry)
	case model.SectionCertifications:
		sec.Entries = mapEntries(doc.Certifications, certificationEntry)
	case model.SectionSkills:
		sec.Groups = GroupSkills(doc.Skills)
		return sec, len(sec.Groups) > 0
	default:
		return Section{}, false
	}
	return sec, len(sec.Entries) > 0
}

func mapEntries[T any](recs []T, fn func(T) Entry) []Entry {
	if len(recs) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, fn(r))
	}
	return out
}

// GroupSkills groups skills by category. Groups appear in first-seen order and
// skills keep insertion order within their group.
func GroupSkills(skills []model.Skill) []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, s := range skills {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s.Name)
	}
	return groups
}

func experienceEntry(e model.Experience) Entry {
	return Entry{
		ID:       e.ID,
		Title:    e.Position,
		Subtitle: joinNonEmpty(" - ", e.Company, e.Location),
		Dates:    format.FormatRange(e.StartDate, e.EndDate, true),
		Bullets:  format.SplitBullets(e.Description),
	}
}

func educationEntry(e model.Education) Entry {
	degree := e.Degree
	if e.Field != "" {
		degree = joinNonEmpty(" • ", e.Degree, e.Field)
	}
	if e.GPA != "" {
		degree = joinNonEmpty(" ", degree, "(GPA: "+e.GPA+")")
	}
	entry := Entry{
		ID:       e.ID,
		Title:    e.School,
		Subtitle: degree,
		Dates:    format.FormatRange(e.StartDate, e.EndDate, false),
	}
	if loc := strings.TrimSpace(e.Location); loc != "" {
		entry.Details = append(entry.Details, loc)
	}
	if cw := strings.TrimSpace(e.Coursework); cw != "" {
		entry.Details = append(entry.Details, "Relevant Coursework: "+cw)
	}
	return entry
}

func projectEntry(p model.Project) Entry {
	entry := Entry{
		ID:      p.ID,
		Title:   p.Name,
		Bullets: format.SplitBullets(p.Description),
	}
	if u := strings.TrimSpace(p.URL); u != "" {
		entry.Links = append(entry.Links, Link{Label: format.URLLabel(u), URL: u})
	}
	if u := strings.TrimSpace(p.SourceCode); u != "" {
		entry.Links = append(entry.Links, Link{Label: "Source", URL: u})
	}
	if tokens := p.TechTokens(); len(tokens) > 0 {
		entry.Details = append(entry.Details, strings.Join(tokens, ", "))
	}
	return entry
}

func certificationEntry(c model.Certification) Entry {
	entry := Entry{
		ID:       c.ID,
		Title:    c.Name,
		Subtitle: c.Issuer,
		Dates:    format.Period(c.Date),
	}
	if u := strings.TrimSpace(c.URL); u != "" {
		entry.Links = append(entry.Links, Link{Label: format.URLLabel(u), URL: u})
	}
	return entry
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
