package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Go models for the editable resume sections. JSON names match the payloads
// the editor has always stored, so older saved documents load unchanged.

const MaxSummaryLength = 500

// SuggestedSkillCategories is offered by the skill form; custom categories are allowed.
var SuggestedSkillCategories = []string{
	"Programming Languages",
	"Frontend Development",
	"Backend Development",
	"Databases",
	"Cloud Services",
	"DevOps Tools",
	"Version Control",
	"Testing",
	"UI/UX Design",
	"Mobile Development",
	"Languages",
	"Frameworks",
	"Tools & IDEs",
	"Other",
}

// Period is a year-month date. The zero value means "not set" and
// serializes as an empty string.
type Period struct {
	Year  int
	Month int
}

func NewPeriod(year, month int) Period { return Period{Year: year, Month: month} }

func (p Period) IsZero() bool { return p.Year == 0 && p.Month == 0 }

func (p Period) Valid() bool {
	return p.IsZero() || (p.Year > 0 && p.Year <= 9999 && p.Month >= 1 && p.Month <= 12)
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*p = Period{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("period must be a \"YYYY-MM\" string: %w", err)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePeriod parses "YYYY-MM"; an empty string yields the zero Period.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, nil
	}
	year, month, ok := strings.Cut(s, "-")
	if !ok || len(year) != 4 || len(month) != 2 {
		return Period{}, fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period year %q: %w", s, err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period month %q: %w", s, err)
	}
	p := Period{Year: y, Month: m}
	if p.IsZero() || !p.Valid() {
		return Period{}, fmt.Errorf("invalid period %q: month must be 01-12", s)
	}
	return p, nil
}

type PersonalInfo struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Portfolio   string `json:"portfolio"`
	Github      string `json:"github"`
	Twitter     string `json:"twitter"`
	Linkedin    string `json:"linkedin"`
}

type Education struct {
	ID         string `json:"id"`
	School     string `json:"school"`
	Degree     string `json:"degree"`
	Field      string `json:"field,omitempty"`
	Location   string `json:"location,omitempty"`
	StartDate  Period `json:"startDate"`
	EndDate    Period `json:"endDate"`
	GPA        string `json:"gpa,omitempty"`
	Coursework string `json:"coursework,omitempty"`
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	StartDate   Period `json:"startDate"`
	EndDate     Period `json:"endDate"`
	Description string `json:"description"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	SourceCode  string `json:"sourceCode,omitempty"`
	TechStack   string `json:"techStack,omitempty"`
}

// TechTokens splits TechStack on commas, trimming and dropping blanks.
func (p Project) TechTokens() []string {
	var out []string
	for _, tok := range strings.Split(p.TechStack, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   Period `json:"date"`
	URL    string `json:"url,omitempty"`
}

func (e Education) RecordID() string     { return e.ID }
func (e Experience) RecordID() string    { return e.ID }
func (p Project) RecordID() string       { return p.ID }
func (s Skill) RecordID() string         { return s.ID }
func (c Certification) RecordID() string { return c.ID }

// Record is implemented by every collection-valued section entry.
type Record interface {
	RecordID() string
}

func newID() string { return uuid.NewString() }

func NewEducation() Education         { return Education{ID: newID()} }
func NewExperience() Experience       { return Experience{ID: newID()} }
func NewProject() Project             { return Project{ID: newID()} }
func NewSkill() Skill                 { return Skill{ID: newID()} }
func NewCertification() Certification { return Certification{ID: newID()} }

type Document struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	ProfileSummary string          `json:"profileSummary"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() Document {
	return Document{
		Education:      []Education{},
		Experience:     []Experience{},
		Projects:       []Project{},
		Skills:         []Skill{},
		Certifications: []Certification{},
	}
}

// Clone returns a deep copy; records hold only value fields.
func (d Document) Clone() Document {
	out := d
	out.Education = append([]Education{}, d.Education...)
	out.Experience = append([]Experience{}, d.Experience...)
	out.Projects = append([]Project{}, d.Projects...)
	out.Skills = append([]Skill{}, d.Skills...)
	out.Certifications = append([]Certification{}, d.Certifications...)
	return out
}

// TruncateSummary cuts s to MaxSummaryLength characters.
func TruncateSummary(s string) string {
	if utf8.RuneCountInString(s) <= MaxSummaryLength {
		return s
	}
	return string([]rune(s)[:MaxSummaryLength])
}
