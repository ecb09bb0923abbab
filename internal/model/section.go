package model

import (
	"encoding/json"
	"fmt"
)

// Section names one top-level category of resume data. The string value is
// also the JSON field name and the storage key suffix.
type Section string

const (
	SectionPersonalInfo   Section = "personalInfo"
	SectionSummary        Section = "profileSummary"
	SectionEducation      Section = "education"
	SectionExperience     Section = "experience"
	SectionProjects       Section = "projects"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
)

var AllSections = []Section{
	SectionPersonalInfo,
	SectionSummary,
	SectionEducation,
	SectionExperience,
	SectionProjects,
	SectionSkills,
	SectionCertifications,
}

func ParseSection(s string) (Section, bool) {
	for _, sec := range AllSections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// IsCollection reports whether the section holds an ordered list of records.
func (s Section) IsCollection() bool {
	return s != SectionPersonalInfo && s != SectionSummary
}

// Get returns the section's current value: PersonalInfo, string, or a record slice.
func (d Document) Get(s Section) any {
	switch s {
	case SectionPersonalInfo:
		return d.PersonalInfo
	case SectionSummary:
		return d.ProfileSummary
	case SectionEducation:
		return d.Education
	case SectionExperience:
		return d.Experience
	case SectionProjects:
		return d.Projects
	case SectionSkills:
		return d.Skills
	case SectionCertifications:
		return d.Certifications
	}
	return nil
}

// Set replaces the section value. The value's type must match the section.
func (d *Document) Set(s Section, v any) error {
	ok := true
	switch s {
	case SectionPersonalInfo:
		var val PersonalInfo
		if val, ok = v.(PersonalInfo); ok {
			d.PersonalInfo = val
		}
	case SectionSummary:
		var val string
		if val, ok = v.(string); ok {
			d.ProfileSummary = val
		}
	case SectionEducation:
		var val []Education
		if val, ok = v.([]Education); ok {
			d.Education = nonNil(val)
		}
	case SectionExperience:
		var val []Experience
		if val, ok = v.([]Experience); ok {
			d.Experience = nonNil(val)
		}
	case SectionProjects:
		var val []Project
		if val, ok = v.([]Project); ok {
			d.Projects = nonNil(val)
		}
	case SectionSkills:
		var val []Skill
		if val, ok = v.([]Skill); ok {
			d.Skills = nonNil(val)
		}
	case SectionCertifications:
		var val []Certification
		if val, ok = v.([]Certification); ok {
			d.Certifications = nonNil(val)
		}
	default:
		return fmt.Errorf("unknown section %q", s)
	}
	if !ok {
		return fmt.Errorf("section %s: unexpected value type %T", s, v)
	}
	return nil
}

// DecodeSection parses a JSON replacement value for the section into its Go type.
func DecodeSection(s Section, raw []byte) (any, error) {
	var (
		v   any
		err error
	)
	switch s {
	case SectionPersonalInfo:
		var val PersonalInfo
		err = json.Unmarshal(raw, &val)
		v = val
	case SectionSummary:
		var val string
		err = json.Unmarshal(raw, &val)
		v = val
	case SectionEducation:
		var val []Education
		err = json.Unmarshal(raw, &val)
		v = nonNil(val)
	case SectionExperience:
		var val []Experience
		err = json.Unmarshal(raw, &val)
		v = nonNil(val)
	case SectionProjects:
		var val []Project
		err = json.Unmarshal(raw, &val)
		v = nonNil(val)
	case SectionSkills:
		var val []Skill
		err = json.Unmarshal(raw, &val)
		v = nonNil(val)
	case SectionCertifications:
		var val []Certification
		err = json.Unmarshal(raw, &val)
		v = nonNil(val)
	default:
		return nil, fmt.Errorf("unknown section %q", s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s, err)
	}
	return v, nil
}

// DecodeRecord parses a single record of a collection section.
func DecodeRecord(s Section, raw []byte) (Record, error) {
	var (
		r   Record
		err error
	)
	switch s {
	case SectionEducation:
		var val Education
		err = json.Unmarshal(raw, &val)
		r = val
	case SectionExperience:
		var val Experience
		err = json.Unmarshal(raw, &val)
		r = val
	case SectionProjects:
		var val Project
		err = json.Unmarshal(raw, &val)
		r = val
	case SectionSkills:
		var val Skill
		err = json.Unmarshal(raw, &val)
		r = val
	case SectionCertifications:
		var val Certification
		err = json.Unmarshal(raw, &val)
		r = val
	default:
		return nil, fmt.Errorf("section %q has no records", s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s record: %w", s, err)
	}
	return r, nil
}

// NewRecord returns a default record with a fresh id for a collection section.
func NewRecord(s Section) (Record, error) {
	switch s {
	case SectionEducation:
		return NewEducation(), nil
	case SectionExperience:
		return NewExperience(), nil
	case SectionProjects:
		return NewProject(), nil
	case SectionSkills:
		return NewSkill(), nil
	case SectionCertifications:
		return NewCertification(), nil
	}
	return nil, fmt.Errorf("section %q has no records", s)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
