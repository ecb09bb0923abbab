package normalize

import "resume-builder/internal/model"

// RenderTree is the display-ready form of a Document. It carries no styling
// and is shared read-only by the preview and the export pipeline.
type RenderTree struct {
	Header   Header    `json:"header"`
	Sections []Section `json:"sections"`
}

type Header struct {
	Name    string   `json:"name"`
	Title   string   `json:"title,omitempty"`
	Contact []string `json:"contact,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Section is one visible resume section. Exactly one of Paragraph, Entries
// or Groups is populated depending on Kind.
type Section struct {
	Kind      model.Section `json:"kind"`
	Heading   string        `json:"heading"`
	Paragraph string        `json:"paragraph,omitempty"`
	Entries   []Entry       `json:"entries,omitempty"`
	Groups    []SkillGroup  `json:"groups,omitempty"`
}

type Entry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Dates    string   `json:"dates,omitempty"`
	Details  []string `json:"details,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
	Links    []Link   `json:"links,omitempty"`
}

// SkillGroup lists skills of one category in insertion order.
type SkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

var headings = map[model.Section]string{
	model.SectionSummary:        "Profile Summary",
	model.SectionExperience:     "Experience",
	model.SectionEducation:      "Education",
	model.SectionProjects:       "Projects",
	model.SectionSkills:         "Skills",
	model.SectionCertifications: "Certifications",
}

// SectionOrder is the fixed display order of the body sections.
var SectionOrder = []model.Section{
	model.SectionSummary,
	model.SectionExperience,
	model.SectionEducation,
	model.SectionProjects,
	model.SectionSkills,
	model.SectionCertifications,
}

// Section returns the visible section of the given kind, if present.
func (t RenderTree) Section(kind model.Section) (Section, bool) {
	for _, s := range t.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
