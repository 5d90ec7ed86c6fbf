package alias

import (
	"context"
	"fmt"
	"log"

	"datajobs/internal/normalize"

	"github.com/google/uuid"
)

// UnresolvedError reports a surface form no candidate matched above the
// accept threshold. Routed to quarantine, never silently dropped.
type UnresolvedError struct {
	Kind    Kind
	Surface string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Surface)
}

// Writer persists learned aliases so a fuzzy hit only ever happens once
// per surface form.
type Writer interface {
	InsertAlias(ctx context.Context, kind Kind, surface string, id uuid.UUID) error
}

// DefaultAcceptThreshold is the documented default for fuzzy acceptance.
// Curation teams tune it per deployment through config.
const DefaultAcceptThreshold = 0.82

// Resolver maps raw surface forms of one vocabulary to canonical ids:
// exact normalized lookup first, fuzzy fallback second, quarantine last.
type Resolver struct {
	kind      Kind
	vocab     *Vocabulary
	writer    Writer
	threshold float64
	logger    *log.Logger
}

func NewResolver(kind Kind, vocab *Vocabulary, writer Writer, threshold float64, logger *log.Logger) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultAcceptThreshold
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{kind: kind, vocab: vocab, writer: writer, threshold: threshold, logger: logger}
}

func (r *Resolver) Kind() Kind { return r.kind }

// Resolve returns the canonical id for a raw mention. An accepted fuzzy
// match records the raw form as a new alias, so the next occurrence is an
// exact hit (self-reinforcing).
func (r *Resolver) Resolve(ctx context.Context, raw string) (uuid.UUID, error) {
	folded := normalize.Fold(raw)
	if folded == "" {
		return uuid.Nil, &UnresolvedError{Kind: r.kind, Surface: raw}
	}

	if id, ok := r.vocab.LookupExact(folded); ok {
		return id, nil
	}

	id, ok := r.bestFuzzy(folded)
	if !ok {
		return uuid.Nil, &UnresolvedError{Kind: r.kind, Surface: raw}
	}

	r.learn(ctx, raw, id)
	return id, nil
}

// RegisterEntry adds a freshly created dimension row to the vocabulary
// and records the raw mention that produced it as its first alias, so the
// next occurrence resolves exactly.
func (r *Resolver) RegisterEntry(ctx context.Context, canonical string, id uuid.UUID, surface string) {
	r.vocab.AddEntry(Entry{ID: id, Canonical: canonical})
	if normalize.Fold(surface) != normalize.Fold(canonical) {
		r.learn(ctx, surface, id)
	}
}

type candidate struct {
	id        uuid.UUID
	score     float64
	fromAlias bool
	count     int64
}

// bestFuzzy scans aliases and canonical names for the strongest match at
// or above the threshold. Tie order: higher score, alias hit over
// canonical-name hit, then the entry with more attached postings.
func (r *Resolver) bestFuzzy(folded string) (uuid.UUID, bool) {
	var best candidate
	found := false

	consider := func(c candidate) {
		if c.score < r.threshold {
			return
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}

	for _, p := range r.vocab.snapshotAliases() {
		c := candidate{id: p.id, score: normalize.Similarity(folded, p.form), fromAlias: true}
		if e, ok := r.vocab.Entry(p.id); ok {
			c.count = e.PostingCount
		}
		consider(c)
	}
	for _, e := range r.vocab.snapshotEntries() {
		consider(candidate{
			id:    e.ID,
			score: normalize.Similarity(folded, normalize.Fold(e.Canonical)),
			count: e.PostingCount,
		})
	}

	if !found {
		return uuid.Nil, false
	}
	return best.id, true
}

func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.fromAlias != b.fromAlias {
		return a.fromAlias
	}
	return a.count > b.count
}

func (r *Resolver) learn(ctx context.Context, surface string, id uuid.UUID) {
	if !r.vocab.AddAlias(surface, id) {
		return
	}
	if r.writer == nil {
		return
	}
	if err := r.writer.InsertAlias(ctx, r.kind, surface, id); err != nil {
		// the cache already has the alias, so resolution stays stable for
		// this process; the next restart re-learns it
		r.logger.Printf("alias persist failed | kind=%s surface=%q err=%v", r.kind, surface, err)
	}
}
