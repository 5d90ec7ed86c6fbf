package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"datajobs/internal/domain/posting"
	"datajobs/internal/normalize"
)

// Default similarity thresholds. Two thresholds exist because postings are
// both re-crawled over time (status changes on the same ad) and
// re-published verbatim across sites (true duplicates); one cutoff cannot
// separate those from distinct openings at the same company.
const (
	DefaultDuplicateThreshold = 0.90
	DefaultUpdateThreshold    = 0.60
)

type Kind int

const (
	New Kind = iota
	UpdateOf
	Duplicate
)

func (k Kind) String() string {
	switch k {
	case UpdateOf:
		return "update_of"
	case Duplicate:
		return "duplicate"
	default:
		return "new"
	}
}

// Result pairs the classification with the matched existing fact, when
// there is one.
type Result struct {
	Kind     Kind
	Existing posting.Posting
}

// Lookup is the slice of the posting store the classifier needs.
type Lookup interface {
	FindByFingerprint(ctx context.Context, fingerprint string) ([]posting.Posting, error)
}

type Classifier struct {
	store        Lookup
	dupThreshold float64
	updThreshold float64
}

func NewClassifier(store Lookup, dupThreshold, updThreshold float64) *Classifier {
	if dupThreshold <= 0 || dupThreshold > 1 {
		dupThreshold = DefaultDuplicateThreshold
	}
	if updThreshold <= 0 || updThreshold >= dupThreshold {
		updThreshold = DefaultUpdateThreshold
	}
	return &Classifier{store: store, dupThreshold: dupThreshold, updThreshold: updThreshold}
}

// Classify decides whether candidate is a brand-new fact, an update to an
// existing one, or a true duplicate. Among several fingerprint siblings
// the most similar description wins.
func (c *Classifier) Classify(ctx context.Context, candidate posting.Posting) (Result, error) {
	siblings, err := c.store.FindByFingerprint(ctx, candidate.Fingerprint)
	if err != nil {
		return Result{}, err
	}
	if len(siblings) == 0 {
		return Result{Kind: New}, nil
	}

	var best posting.Posting
	bestScore := -1.0
	for _, s := range siblings {
		score := normalize.Similarity(candidate.Description, s.Description)
		if score > bestScore {
			bestScore = score
			best = s
		}
	}

	switch {
	case bestScore >= c.dupThreshold:
		return Result{Kind: Duplicate, Existing: best}, nil
	case bestScore >= c.updThreshold:
		return Result{Kind: UpdateOf, Existing: best}, nil
	default:
		return Result{Kind: New}, nil
	}
}

// ContentHash digests the folded description. Together with the
// fingerprint it forms the conditional-insert key for new facts, so two
// workers racing on a verbatim re-publication hit a uniqueness conflict
// instead of writing twice.
func ContentHash(description string) string {
	h := sha256.Sum256([]byte(normalize.Fold(description)))
	return hex.EncodeToString(h[:])
}
