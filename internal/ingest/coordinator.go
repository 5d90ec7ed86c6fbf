package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"datajobs/internal/alias"
	"datajobs/internal/database"
	"datajobs/internal/database/postgres"
	"datajobs/internal/dedup"
	"datajobs/internal/dimension"
	"datajobs/internal/domain/posting"
	"datajobs/internal/normalize"
	"datajobs/internal/repository"
	"datajobs/internal/validate"

	"github.com/google/uuid"
)

// Coordinator runs one raw record through the whole pipeline: normalize,
// validate, resolve vocabularies, upsert dimensions, classify against
// existing facts, then commit the fact and its bridges in one transaction.
// Re-submitting the same record is a no-op beyond a duplicate outcome.
type Coordinator struct {
	skills     *alias.Resolver
	roles      *alias.Resolver
	locations  *alias.Resolver
	dims       *dimension.Upserter
	classifier *dedup.Classifier
	postings   repository.PostingRepository
	quarantine repository.QuarantineRepository
	sources    repository.SourceRepository
	db         database.DB
	logger     *log.Logger

	authMu   sync.RWMutex
	authFlag map[string]bool
}

func NewCoordinator(
	skills, roles, locations *alias.Resolver,
	dims *dimension.Upserter,
	classifier *dedup.Classifier,
	postings repository.PostingRepository,
	quarantine repository.QuarantineRepository,
	sources repository.SourceRepository,
	db database.DB,
	logger *log.Logger,
) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		skills:     skills,
		roles:      roles,
		locations:  locations,
		dims:       dims,
		classifier: classifier,
		postings:   postings,
		quarantine: quarantine,
		sources:    sources,
		db:         db,
		logger:     logger,
		authFlag:   make(map[string]bool),
	}
}

// Ingest processes one raw record. A rejected record is not an error:
// the outcome carries the reasons and the record lands in quarantine.
// A returned error means the store failed and nothing was decided.
func (c *Coordinator) Ingest(ctx context.Context, raw posting.RawRecord) (posting.Outcome, error) {
	n := normalize.Record(raw)
	// authoritativeness belongs to the registered source, so a crawler
	// cannot claim it through the record payload
	n.Authoritative = c.sourceAuthoritative(ctx, n.Source)

	if err := validate.Validate(n); err != nil {
		var verr *validate.ValidationError
		if !errors.As(err, &verr) {
			return posting.Outcome{}, err
		}
		if qerr := c.quarantine.Insert(ctx, n.Source, repository.QuarantineValidation, verr.Reasons, raw); qerr != nil {
			return posting.Outcome{}, classifyStoreErr("quarantine write", qerr)
		}
		c.logger.Printf("record rejected | source=%s company=%q reasons=%d", n.Source, n.Company, len(verr.Reasons))
		return posting.Outcome{Kind: posting.OutcomeRejected, Reasons: verr.Reasons}, nil
	}

	resolved, unresolvedReasons, err := c.resolve(ctx, n)
	if err != nil {
		return posting.Outcome{}, err
	}
	if len(unresolvedReasons) > 0 {
		if qerr := c.quarantine.Insert(ctx, n.Source, repository.QuarantineUnresolved, unresolvedReasons, raw); qerr != nil {
			return posting.Outcome{}, classifyStoreErr("quarantine write", qerr)
		}
		c.logger.Printf("record unresolved | source=%s company=%q reasons=%v", n.Source, n.Company, unresolvedReasons)
		return posting.Outcome{Kind: posting.OutcomeRejected, Reasons: unresolvedReasons}, nil
	}

	companyID, err := c.dims.ResolveOrCreateCompany(ctx, n.Company, n.CompanySize, n.Industry)
	if err != nil {
		return posting.Outcome{}, classifyStoreErr("company upsert", err)
	}
	resolved.CompanyID = companyID

	candidate := buildPosting(n, resolved)
	reqs := skillRequirements(resolved.SkillIDs)

	// a concurrent writer can land a sibling between classify and commit;
	// the uniqueness conflict sends us back around exactly once
	for attempt := 0; ; attempt++ {
		result, err := c.classifier.Classify(ctx, candidate)
		if err != nil {
			return posting.Outcome{}, classifyStoreErr("classify", err)
		}

		out, err := c.commit(ctx, n, resolved, candidate, reqs, result)
		if err == nil {
			return out, nil
		}
		if attempt == 0 && postgres.IsUniqueViolation(err) {
			continue
		}
		return posting.Outcome{}, classifyStoreErr("commit", err)
	}
}

// sourceAuthoritative reads the source's registration flag, cached per
// name since a batch repeats the same source thousands of times. An
// unregistered source is never authoritative; a failed lookup degrades
// to non-authoritative rather than failing the record.
func (c *Coordinator) sourceAuthoritative(ctx context.Context, name string) bool {
	if c.sources == nil || name == "" {
		return false
	}

	c.authMu.RLock()
	flag, ok := c.authFlag[name]
	c.authMu.RUnlock()
	if ok {
		return flag
	}

	src, err := c.sources.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repository.ErrSourceNotFound) {
			c.logger.Printf("source lookup failed | source=%s err=%v", name, err)
			return false
		}
		// definitive: not registered, cache the answer
	}

	c.authMu.Lock()
	c.authFlag[name] = src.Authoritative
	c.authMu.Unlock()
	return src.Authoritative
}

// resolve maps the record's surface forms onto vocabulary ids. Unresolved
// location or role mentions reject the whole record; an unresolved skill
// mention is quarantined on its own while the record proceeds with the
// skills that did resolve.
func (c *Coordinator) resolve(ctx context.Context, n posting.Normalized) (posting.Resolved, []string, error) {
	var r posting.Resolved
	var reasons []string

	for _, surface := range normalize.RoleSurfaces(n.Title) {
		id, err := c.roles.Resolve(ctx, surface)
		if err != nil {
			var uerr *alias.UnresolvedError
			if errors.As(err, &uerr) {
				reasons = append(reasons, uerr.Error())
				continue
			}
			return posting.Resolved{}, nil, err
		}
		r.RoleIDs = appendUnique(r.RoleIDs, id)
	}

	if n.Location != "" {
		id, err := c.resolveLocation(ctx, n.Location)
		if err != nil {
			var uerr *alias.UnresolvedError
			if errors.As(err, &uerr) {
				reasons = append(reasons, uerr.Error())
			} else {
				return posting.Resolved{}, nil, err
			}
		} else {
			r.LocationID = id
		}
	}

	for _, surface := range n.Skills {
		id, err := c.skills.Resolve(ctx, surface)
		if err != nil {
			var uerr *alias.UnresolvedError
			if !errors.As(err, &uerr) {
				return posting.Resolved{}, nil, err
			}
			if qerr := c.quarantine.Insert(ctx, n.Source, repository.QuarantineUnresolved,
				[]string{uerr.Error()},
				map[string]string{"skill": surface, "title": n.Title, "company": n.Company},
			); qerr != nil {
				return posting.Resolved{}, nil, classifyStoreErr("quarantine write", qerr)
			}
			c.logger.Printf("skill mention unresolved | source=%s skill=%q", n.Source, surface)
			continue
		}
		r.SkillIDs = appendUnique(r.SkillIDs, id)
	}

	return r, reasons, nil
}

// resolveLocation tries the vocabulary first. A miss that still parses
// structurally as "City, Country" creates the location row the same way
// companies are created and registers the raw form as its alias; a miss
// that does not parse stays an UnresolvedError.
func (c *Coordinator) resolveLocation(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := c.locations.Resolve(ctx, raw)
	if err == nil {
		return id, nil
	}
	var uerr *alias.UnresolvedError
	if !errors.As(err, &uerr) {
		return uuid.Nil, err
	}

	city, country, iso, ok := normalize.ParseLocation(raw)
	if !ok {
		return uuid.Nil, err
	}

	loc := repository.Location{City: city, Country: country, CountryISO: iso}
	id, cerr := c.dims.FindOrCreateLocation(ctx, loc)
	if cerr != nil {
		return uuid.Nil, classifyStoreErr("location upsert", cerr)
	}
	c.locations.RegisterEntry(ctx, loc.DisplayName(), id, raw)
	c.logger.Printf("location created | city=%q country=%q id=%s", city, country, id)
	return id, nil
}

func (c *Coordinator) commit(
	ctx context.Context,
	n posting.Normalized,
	resolved posting.Resolved,
	candidate posting.Posting,
	reqs []posting.SkillRequirement,
	result dedup.Result,
) (posting.Outcome, error) {
	switch result.Kind {
	case dedup.New:
		if err := c.inTx(ctx, func(tx database.Tx) error {
			if err := c.postings.InsertPosting(ctx, tx, candidate, dedup.ContentHash(candidate.Description)); err != nil {
				return err
			}
			return c.writeBridges(ctx, tx, candidate.ID, resolved, reqs, n.Levels)
		}); err != nil {
			return posting.Outcome{}, err
		}
		return posting.Outcome{Kind: posting.OutcomeInserted, JobID: candidate.ID}, nil

	case dedup.UpdateOf:
		merged, changed := dedup.Reconcile(result.Existing, candidate, n.Authoritative)
		if err := c.inTx(ctx, func(tx database.Tx) error {
			if changed {
				if err := c.postings.UpdatePosting(ctx, tx, merged); err != nil {
					return err
				}
			}
			return c.writeBridges(ctx, tx, merged.ID, resolved, reqs, n.Levels)
		}); err != nil {
			return posting.Outcome{}, err
		}
		if changed {
			return posting.Outcome{Kind: posting.OutcomeUpdated, JobID: merged.ID}, nil
		}
		return posting.Outcome{Kind: posting.OutcomeDuplicate, JobID: merged.ID}, nil

	case dedup.Duplicate:
		// duplicates still contribute: a skill one source mentions and
		// another omits joins the existing fact's bridges
		if err := c.inTx(ctx, func(tx database.Tx) error {
			return c.writeBridges(ctx, tx, result.Existing.ID, resolved, reqs, n.Levels)
		}); err != nil {
			return posting.Outcome{}, err
		}
		return posting.Outcome{Kind: posting.OutcomeDuplicate, JobID: result.Existing.ID}, nil

	default:
		return posting.Outcome{}, fmt.Errorf("unknown classification %v", result.Kind)
	}
}

func (c *Coordinator) writeBridges(ctx context.Context, tx database.Tx, jobID uuid.UUID, resolved posting.Resolved, reqs []posting.SkillRequirement, levels []string) error {
	if err := c.postings.UpsertSkills(ctx, tx, jobID, reqs); err != nil {
		return err
	}
	if err := c.postings.UpsertRoles(ctx, tx, jobID, resolved.RoleIDs); err != nil {
		return err
	}
	return c.postings.UpsertLevels(ctx, tx, jobID, levels)
}

func (c *Coordinator) inTx(ctx context.Context, fn func(tx database.Tx) error) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func buildPosting(n posting.Normalized, r posting.Resolved) posting.Posting {
	return posting.Posting{
		ID:          uuid.New(),
		CompanyID:   r.CompanyID,
		LocationID:  r.LocationID,
		Fingerprint: dedup.Fingerprint(r.CompanyID, r.PrimaryRoleID(), r.LocationID, n.PostedDate),
		PostedDate:  n.PostedDate,
		ExpiredDate: n.ExpiredDate,
		MinSalary:   n.MinSalary,
		MaxSalary:   n.MaxSalary,
		Currency:    n.Currency,
		ExpYears:    n.ExpYears,
		Education:   n.Education,
		Employment:  n.Employment,
		Remote:      n.Remote,
		Description: n.Description,
		Source:      n.Source,
	}
}

func skillRequirements(ids []uuid.UUID) []posting.SkillRequirement {
	reqs := make([]posting.SkillRequirement, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, posting.SkillRequirement{SkillID: id, Importance: "Required"})
	}
	return reqs
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
