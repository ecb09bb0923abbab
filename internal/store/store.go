// Package store owns the authoritative Document. Callers get deep-copied
// snapshots and submit whole-section replacements; every accepted write is
// handed to the Persister.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/model"
	"resume-builder/pkg/apperror"
	"resume-builder/pkg/logger"

	"go.uber.org/zap"
)

// LegacyKey held the whole document as one JSON blob before sections were
// stored separately.
const LegacyKey = "resumeData"

const DefaultPrefix = "resume"

type Store struct {
	mu       sync.RWMutex
	doc      model.Document
	versions map[model.Section]uint64

	prefix  string
	kv      repository.KVStore
	persist *Persister
	log     logger.Logger
}

// Open hydrates a Store from kv. Missing or malformed sections fall back to
// their defaults; only a failing backend is reported as an error.
func Open(ctx context.Context, kv repository.KVStore, prefix string, log logger.Logger) (*Store, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{
		doc:      model.NewDocument(),
		versions: map[model.Section]uint64{},
		prefix:   prefix,
		kv:       kv,
		log:      log.With(zap.String("component", "store")),
	}
	s.persist = NewPersister(kv, s.log)

	if err := s.hydrate(ctx); err != nil {
		_ = s.persist.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Key returns the storage key of a section.
func (s *Store) Key(sec model.Section) string {
	return s.prefix + ":" + string(sec)
}

func (s *Store) hydrate(ctx context.Context) error {
	found := false
	for _, sec := range model.AllSections {
		raw, ok, err := s.kv.Get(ctx, s.Key(sec))
		if err != nil {
			return apperror.NewUnavailable("read section "+string(sec), err)
		}
		if !ok {
			continue
		}
		found = true
		s.load(sec, raw)
	}
	if found {
		return nil
	}
	return s.importLegacy(ctx)
}

func (s *Store) load(sec model.Section, raw []byte) bool {
	v, err := decodeStored(sec, raw)
	if err != nil {
		s.log.Warn("Discarding malformed stored section", zap.String("section", string(sec)), zap.Error(err))
		return false
	}
	if err := s.doc.Set(sec, v); err != nil {
		s.log.Warn("Discarding stored section", zap.String("section", string(sec)), zap.Error(err))
		return false
	}
	return true
}

func decodeStored(sec model.Section, raw []byte) (any, error) {
	if sec == model.SectionSummary {
		// Summaries saved before the length limit are cut, not dropped.
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("summary must be a string: %w", err)
		}
		return model.TruncateSummary(text), nil
	}
	if err := model.ValidateSectionJSON(sec, raw); err != nil {
		return nil, err
	}
	v, err := model.DecodeSection(sec, raw)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateSection(sec, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) importLegacy(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, LegacyKey)
	if err != nil {
		return apperror.NewUnavailable("read legacy document", err)
	}
	if !ok {
		return nil
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		s.log.Warn("Discarding malformed legacy document", zap.Error(err))
		return nil
	}
	imported := 0
	for _, sec := range model.AllSections {
		part, ok := blob[string(sec)]
		if !ok || !s.load(sec, part) {
			continue
		}
		imported++
		if err := s.enqueue(sec); err != nil {
			return err
		}
	}
	s.log.Info("Imported legacy document", zap.Int("sections", imported))
	return nil
}

// Document returns a deep copy of the current document.
func (s *Store) Document() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Versions returns the revision of every section. A revision grows by one on
// each accepted write to that section.
func (s *Store) Versions() map[model.Section]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyVersions()
}

// Snapshot returns a document copy together with the versions it reflects.
func (s *Store) Snapshot() (model.Document, map[model.Section]uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), s.copyVersions()
}

func (s *Store) copyVersions() map[model.Section]uint64 {
	out := make(map[model.Section]uint64, len(model.AllSections))
	for _, sec := range model.AllSections {
		out[sec] = s.versions[sec]
	}
	return out
}

// Section returns a copy of one section's value.
func (s *Store) Section(sec model.Section) any {
	return s.Document().Get(sec)
}

// Replace swaps a whole section. The value must have the section's Go type
// and pass validation; otherwise nothing changes.
func (s *Store) Replace(sec model.Section, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(sec, value)
}

// ReplaceJSON decodes a full replacement value and applies it with Replace.
func (s *Store) ReplaceJSON(sec model.Section, raw []byte) error {
	if _, ok := model.ParseSection(string(sec)); !ok {
		return apperror.NewInvalidInput(fmt.Sprintf("unknown section %q", sec), nil)
	}
	if sec == model.SectionSummary {
		// Over-long summaries are cut rather than rejected.
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return apperror.NewInvalidInput("summary must be a string", err)
		}
		return s.Replace(sec, text)
	}
	if err := model.ValidateSectionJSON(sec, raw); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	v, err := model.DecodeSection(sec, raw)
	if err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return s.Replace(sec, v)
}

// commit requires s.mu held for writing.
func (s *Store) commit(sec model.Section, value any) error {
	if sec == model.SectionSummary {
		if text, ok := value.(string); ok {
			value = model.TruncateSummary(text)
		}
	}
	if err := model.ValidateSection(sec, value); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	next := s.doc.Clone()
	if err := next.Set(sec, value); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	payload, err := json.Marshal(next.Get(sec))
	if err != nil {
		return apperror.NewInternal("serialize section", err)
	}
	if err := s.persist.Enqueue(s.Key(sec), payload); err != nil {
		return apperror.NewUnavailable("persist section", err)
	}
	s.doc = next
	s.versions[sec]++
	return nil
}

func (s *Store) enqueue(sec model.Section) error {
	payload, err := json.Marshal(s.doc.Get(sec))
	if err != nil {
		return apperror.NewInternal("serialize section", err)
	}
	return s.persist.Enqueue(s.Key(sec), payload)
}

// Flush waits for queued writes to reach durable storage.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.Flush(ctx)
}

// Close flushes pending writes and releases the backend.
func (s *Store) Close(ctx context.Context) error {
	return s.persist.Close(ctx)
}
