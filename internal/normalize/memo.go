package normalize

import (
	"sync"

	"resume-builder/internal/model"
)

// Versions maps each section to its store revision.
type Versions map[model.Section]uint64

// Memo caches normalized sections and rebuilds only those whose revision
// moved since the previous call. Safe for concurrent use.
type Memo struct {
	mu       sync.Mutex
	seen     Versions
	header   Header
	sections map[model.Section]cachedSection

	buildHeader  func(model.PersonalInfo) Header
	buildSection func(model.Document, model.Section) (Section, bool)
}

type cachedSection struct {
	sec     Section
	visible bool
}

func NewMemo() *Memo {
	return &Memo{
		seen:     Versions{},
		sections: map[model.Section]cachedSection{},

		buildHeader:  buildHeader,
		buildSection: buildSection,
	}
}

// Tree returns Normalize(doc), reusing cached sections whose version in v is
// unchanged. The caller must pass the versions that belong to doc.
func (m *Memo) Tree(doc model.Document, v Versions) RenderTree {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stale(model.SectionPersonalInfo, v) {
		m.header = m.buildHeader(doc.PersonalInfo)
		m.mark(model.SectionPersonalInfo, v)
	}
	tree := RenderTree{Header: m.header, Sections: []Section{}}
	for _, kind := range SectionOrder {
		if m.stale(kind, v) {
			sec, ok := m.buildSection(doc, kind)
			m.sections[kind] = cachedSection{sec: sec, visible: ok}
			m.mark(kind, v)
		}
		if c := m.sections[kind]; c.visible {
			tree.Sections = append(tree.Sections, c.sec)
		}
	}
	return tree
}

func (m *Memo) stale(s model.Section, v Versions) bool {
	seen, ok := m.seen[s]
	return !ok || seen != v[s]
}

func (m *Memo) mark(s model.Section, v Versions) {
	m.seen[s] = v[s]
}
