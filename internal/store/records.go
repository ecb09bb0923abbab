package store

import (
	"fmt"

	"resume-builder/internal/model"
	"resume-builder/pkg/apperror"
)

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opUpdate
)

type recordOp struct {
	kind   opKind
	id     string
	record model.Record
}

// Add appends a default record with a fresh id and returns it.
func (s *Store) Add(sec model.Section) (model.Record, error) {
	rec, err := model.NewRecord(sec)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	if err := s.apply(sec, recordOp{kind: opAdd, record: rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Remove drops the record with the given id, keeping the others in order.
func (s *Store) Remove(sec model.Section, id string) error {
	return s.apply(sec, recordOp{kind: opRemove, id: id})
}

// Update replaces the record carrying rec's id in place.
func (s *Store) Update(sec model.Section, rec model.Record) error {
	return s.apply(sec, recordOp{kind: opUpdate, id: rec.RecordID(), record: rec})
}

// UpdateJSON decodes one record and applies Update. The id in the path wins
// over any id in the body.
func (s *Store) UpdateJSON(sec model.Section, id string, raw []byte) (model.Record, error) {
	rec, err := model.DecodeRecord(sec, raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	rec = withID(rec, id)
	if err := s.Update(sec, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) apply(sec model.Section, op recordOp) error {
	if !sec.IsCollection() {
		return apperror.NewInvalidInput(fmt.Sprintf("section %q has no records", sec), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		next any
		err  error
	)
	switch cur := s.doc.Get(sec).(type) {
	case []model.Education:
		next, err = applyOp(sec, cur, op)
	case []model.Experience:
		next, err = applyOp(sec, cur, op)
	case []model.Project:
		next, err = applyOp(sec, cur, op)
	case []model.Skill:
		next, err = applyOp(sec, cur, op)
	case []model.Certification:
		next, err = applyOp(sec, cur, op)
	default:
		return apperror.NewInvalidInput(fmt.Sprintf("unknown section %q", sec), nil)
	}
	if err != nil {
		return err
	}
	return s.commit(sec, next)
}

// applyOp builds a new slice; cur is never modified.
func applyOp[T model.Record](sec model.Section, cur []T, op recordOp) ([]T, error) {
	switch op.kind {
	case opAdd:
		rec, ok := op.record.(T)
		if !ok {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("record type %T does not belong to %s", op.record, sec), nil)
		}
		out := make([]T, 0, len(cur)+1)
		return append(append(out, cur...), rec), nil
	case opRemove:
		out := make([]T, 0, len(cur))
		for _, r := range cur {
			if r.RecordID() != op.id {
				out = append(out, r)
			}
		}
		if len(out) == len(cur) {
			return nil, apperror.NewNotFound(string(sec), op.id)
		}
		return out, nil
	case opUpdate:
		rec, ok := op.record.(T)
		if !ok {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("record type %T does not belong to %s", op.record, sec), nil)
		}
		out := make([]T, len(cur))
		found := false
		for i, r := range cur {
			if r.RecordID() == op.id {
				out[i] = rec
				found = true
				continue
			}
			out[i] = r
		}
		if !found {
			return nil, apperror.NewNotFound(string(sec), op.id)
		}
		return out, nil
	}
	return nil, apperror.NewInternal(fmt.Sprintf("unknown record operation %d", op.kind), nil)
}

func withID(rec model.Record, id string) model.Record {
	switch r := rec.(type) {
	case model.Education:
		r.ID = id
		return r
	case model.Experience:
		r.ID = id
		return r
	case model.Project:
		r.ID = id
		return r
	case model.Skill:
		r.ID = id
		return r
	case model.Certification:
		r.ID = id
		return r
	}
	return rec
}
