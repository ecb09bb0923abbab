package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/model"
	"resume-builder/pkg/apperror"
	"resume-builder/pkg/logger"
)

func openStore(t *testing.T, kv repository.KVStore) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, "", logger.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestOpenEmptyBackendDefaults(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())
	if !reflect.DeepEqual(s.Document(), model.NewDocument()) {
		t.Fatalf("expected default document, got %+v", s.Document())
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := openStore(t, kv)

	if err := s.Replace(model.SectionPersonalInfo, model.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"}); err != nil {
		t.Fatalf("replace personal info: %v", err)
	}
	if err := s.Replace(model.SectionSummary, "Builds things."); err != nil {
		t.Fatalf("replace summary: %v", err)
	}
	rec, err := s.Add(model.SectionExperience)
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	exp := rec.(model.Experience)
	exp.Company = "Acme"
	exp.StartDate = model.NewPeriod(2021, 3)
	exp.Description = "Built X\n\nShipped Y"
	if err := s.Update(model.SectionExperience, exp); err != nil {
		t.Fatalf("update experience: %v", err)
	}
	want := s.Document()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openStore(t, kv)
	defer reopened.Close(ctx)
	if got := reopened.Document(); !reflect.DeepEqual(got, want) {
		t.Fatalf("reopened document differs\n got %+v\nwant %+v", got, want)
	}
	raw, ok, _ := kv.Get(ctx, "resume:experience")
	if !ok || !strings.Contains(string(raw), `"startDate":"2021-03"`) {
		t.Fatalf("experience not stored under its own key: %s", raw)
	}
}

func TestMalformedStoredSectionsFallBackToDefault(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	_ = kv.Put(ctx, "resume:skills", []byte(`{not json`))
	_ = kv.Put(ctx, "resume:education", []byte(`[{"id":"a","startDate":"2020-13"}]`))
	_ = kv.Put(ctx, "resume:experience", []byte(`[{"id":"e","startDate":"2022-01","endDate":"2021-01"}]`))
	_ = kv.Put(ctx, "resume:personalInfo", []byte(`{"name":"Jane"}`))

	s := openStore(t, kv)
	defer s.Close(ctx)
	doc := s.Document()
	if len(doc.Skills) != 0 || len(doc.Education) != 0 || len(doc.Experience) != 0 {
		t.Fatalf("malformed sections should be defaulted, got %+v", doc)
	}
	if doc.PersonalInfo.Name != "Jane" {
		t.Fatalf("valid section should still load, got %+v", doc.PersonalInfo)
	}
}

type failingKV struct{ repository.KVStore }

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestOpenReportsUnavailableBackend(t *testing.T) {
	_, err := Open(context.Background(), failingKV{repository.NewMemoryKV()}, "", logger.NewNop())
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestLegacyImport(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	legacy := map[string]any{
		"personalInfo":   map[string]string{"name": "Jane Doe"},
		"profileSummary": "Legacy summary",
		"skills":         []map[string]string{{"id": "1", "name": "Go", "category": "Languages"}},
		"education":      "garbage",
	}
	b, _ := json.Marshal(legacy)
	_ = kv.Put(ctx, LegacyKey, b)

	s := openStore(t, kv)
	doc := s.Document()
	if doc.PersonalInfo.Name != "Jane Doe" || doc.ProfileSummary != "Legacy summary" || len(doc.Skills) != 1 {
		t.Fatalf("legacy sections not imported: %+v", doc)
	}
	if len(doc.Education) != 0 {
		t.Fatalf("malformed legacy section should default")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "resume:skills"); !ok {
		t.Fatalf("imported sections should be re-persisted per key")
	}
}

func TestLegacyImportTruncatesLongSummary(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	long := strings.Repeat("a", 600)
	b, _ := json.Marshal(map[string]any{
		"personalInfo":   map[string]string{"name": "Jane Doe"},
		"profileSummary": long,
	})
	_ = kv.Put(ctx, LegacyKey, b)

	s := openStore(t, kv)
	if got := s.Document().ProfileSummary; got != long[:model.MaxSummaryLength] {
		t.Fatalf("expected summary cut to %d chars, got %d", model.MaxSummaryLength, len(got))
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, ok, _ := kv.Get(ctx, "resume:profileSummary")
	var stored string
	if !ok || json.Unmarshal(raw, &stored) != nil || len(stored) != model.MaxSummaryLength {
		t.Fatalf("truncated summary should be re-persisted, got %q", raw)
	}
}

func TestRecordIntentsPreserveOrder(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := s.Add(model.SectionSkills)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, rec.RecordID())
	}
	if err := s.Update(model.SectionSkills, model.Skill{ID: ids[1], Name: "Go", Category: "Languages"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Remove(model.SectionSkills, ids[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got := s.Document().Skills
	if len(got) != 2 || got[0].ID != ids[1] || got[0].Name != "Go" || got[1].ID != ids[2] {
		t.Fatalf("unexpected skills %+v", got)
	}

	if err := s.Remove(model.SectionSkills, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Add(model.SectionSummary); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("summary has no records, got %v", err)
	}
}

func TestRejectedWriteLeavesStateUntouched(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())

	before := s.Versions()
	bad := []model.Education{{ID: "x", StartDate: model.NewPeriod(2020, 5), EndDate: model.NewPeriod(2019, 1)}}
	if err := s.Replace(model.SectionEducation, bad); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := s.Replace(model.SectionEducation, []model.Skill{}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected type mismatch to be rejected, got %v", err)
	}
	if !reflect.DeepEqual(before, s.Versions()) || len(s.Document().Education) != 0 {
		t.Fatalf("rejected writes must not change the store")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())
	_ = s.Replace(model.SectionSkills, []model.Skill{{ID: "1", Name: "Go", Category: "Languages"}})

	doc := s.Document()
	doc.Skills[0].Name = "mutated"
	if s.Document().Skills[0].Name != "Go" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestSummaryIsTruncated(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())
	raw, _ := json.Marshal(strings.Repeat("x", 600))
	if err := s.ReplaceJSON(model.SectionSummary, raw); err != nil {
		t.Fatalf("replace summary: %v", err)
	}
	if n := len(s.Document().ProfileSummary); n != model.MaxSummaryLength {
		t.Fatalf("summary length %d", n)
	}
}

func TestVersionsCountWrites(t *testing.T) {
	s := openStore(t, repository.NewMemoryKV())
	defer s.Close(context.Background())
	_ = s.Replace(model.SectionSummary, "a")
	_ = s.Replace(model.SectionSummary, "b")
	v := s.Versions()
	if v[model.SectionSummary] != 2 || v[model.SectionSkills] != 0 {
		t.Fatalf("unexpected versions %v", v)
	}
}

func TestConcurrentWritesPersistLatest(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	s := openStore(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := s.Add(model.SectionProjects); err != nil {
					t.Errorf("add: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	raw, _, _ := kv.Get(ctx, "resume:projects")
	var stored []model.Project
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode stored projects: %v", err)
	}
	if len(stored) != 160 || len(s.Document().Projects) != 160 {
		t.Fatalf("expected 160 projects stored, got %d", len(stored))
	}
	_ = s.Close(ctx)
}
