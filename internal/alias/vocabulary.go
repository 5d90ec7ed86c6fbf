package alias

import (
	"sync"

	"datajobs/internal/normalize"

	"github.com/google/uuid"
)

// Kind names one of the three controlled vocabularies the resolver serves.
type Kind string

const (
	KindSkill    Kind = "skill"
	KindRole     Kind = "role"
	KindLocation Kind = "location"
)

// Entry is one canonical dimension row as the resolver sees it.
type Entry struct {
	ID        uuid.UUID
	Canonical string
	// PostingCount backs the stability tie-break: the candidate most often
	// confirmed by existing facts wins.
	PostingCount int64
}

// Vocabulary is the shared alias cache for one kind. Append-only during
// ingestion: new aliases arrive, nothing is renamed or removed, so readers
// only contend on the short map insert.
type Vocabulary struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
	byAlias map[string]uuid.UUID
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		entries: make(map[uuid.UUID]Entry),
		byAlias: make(map[string]uuid.UUID),
	}
}

// AddEntry registers a canonical row; its own name doubles as an alias.
func (v *Vocabulary) AddEntry(e Entry) {
	key := normalize.Fold(e.Canonical)
	if key == "" || e.ID == uuid.Nil {
		return
	}
	v.mu.Lock()
	v.entries[e.ID] = e
	if _, taken := v.byAlias[key]; !taken {
		v.byAlias[key] = e.ID
	}
	v.mu.Unlock()
}

// AddAlias appends a learned surface form. An alias maps to exactly one
// entry; a second writer with the same form is a no-op, not an overwrite.
func (v *Vocabulary) AddAlias(surface string, id uuid.UUID) bool {
	key := normalize.Fold(surface)
	if key == "" || id == uuid.Nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[id]; !ok {
		return false
	}
	if _, taken := v.byAlias[key]; taken {
		return false
	}
	v.byAlias[key] = id
	return true
}

// LookupExact resolves an already-folded surface form.
func (v *Vocabulary) LookupExact(folded string) (uuid.UUID, bool) {
	v.mu.RLock()
	id, ok := v.byAlias[folded]
	v.mu.RUnlock()
	return id, ok
}

func (v *Vocabulary) Entry(id uuid.UUID) (Entry, bool) {
	v.mu.RLock()
	e, ok := v.entries[id]
	v.mu.RUnlock()
	return e, ok
}

// aliasPair is an (alias form, entry id) snapshot row for fuzzy scans.
type aliasPair struct {
	form string
	id   uuid.UUID
}

func (v *Vocabulary) snapshotAliases() []aliasPair {
	v.mu.RLock()
	out := make([]aliasPair, 0, len(v.byAlias))
	for form, id := range v.byAlias {
		out = append(out, aliasPair{form: form, id: id})
	}
	v.mu.RUnlock()
	return out
}

func (v *Vocabulary) snapshotEntries() []Entry {
	v.mu.RLock()
	out := make([]Entry, 0, len(v.entries))
	for _, e := range v.entries {
		out = append(out, e)
	}
	v.mu.RUnlock()
	return out
}

// Len reports the number of known alias forms.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.byAlias)
}
