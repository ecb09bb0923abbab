package model

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	schemaMu    sync.Mutex
	schemaCache = map[Section]*gojsonschema.Schema{}
)

func sectionSchema(s Section) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if sch, ok := schemaCache[s]; ok {
		return sch, nil
	}
	b, err := schemaFS.ReadFile("schema/" + string(s) + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("no schema for section %s: %w", s, err)
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return nil, fmt.Errorf("compile schema for section %s: %w", s, err)
	}
	schemaCache[s] = sch
	return sch, nil
}

// ValidateSectionJSON validates a serialized section value against its schema.
func ValidateSectionJSON(s Section, raw []byte) error {
	sch, err := sectionSchema(s)
	if err != nil {
		return err
	}
	res, err := sch.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed for %s: %s", s, strings.Join(msgs, "; "))
}

// ValidateSection checks the invariants of a decoded section value.
func ValidateSection(s Section, v any) error {
	switch val := v.(type) {
	case PersonalInfo:
		return nil
	case string:
		if utf8.RuneCountInString(val) > MaxSummaryLength {
			return fmt.Errorf("profileSummary exceeds %d characters", MaxSummaryLength)
		}
		return nil
	case []Education:
		return validateRecords(s, val, func(i int, e Education) error {
			return validateRange(fmt.Sprintf("education[%d]", i), e.StartDate, e.EndDate)
		})
	case []Experience:
		return validateRecords(s, val, func(i int, e Experience) error {
			return validateRange(fmt.Sprintf("experience[%d]", i), e.StartDate, e.EndDate)
		})
	case []Project:
		return validateRecords(s, val, nil)
	case []Skill:
		return validateRecords(s, val, nil)
	case []Certification:
		return validateRecords(s, val, func(i int, c Certification) error {
			if !c.Date.Valid() {
				return fmt.Errorf("certifications[%d].date is not a valid period", i)
			}
			return nil
		})
	}
	return fmt.Errorf("section %s: unexpected value type %T", s, v)
}

// Validate checks every section of the document.
func (d Document) Validate() error {
	var errs []error
	for _, s := range AllSections {
		if err := ValidateSection(s, d.Get(s)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validateRecords[T Record](s Section, recs []T, check func(int, T) error) error {
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		id := r.RecordID()
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s[%d].id is required", s, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%s[%d].id %q is not unique", s, i, id)
		}
		seen[id] = struct{}{}
		if check != nil {
			if err := check(i, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRange(field string, start, end Period) error {
	if !start.Valid() {
		return fmt.Errorf("%s.startDate is not a valid period", field)
	}
	if !end.Valid() {
		return fmt.Errorf("%s.endDate is not a valid period", field)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%s.startDate %s is after endDate %s", field, start, end)
	}
	return nil
}
