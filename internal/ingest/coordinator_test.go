package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"sync"
	"testing"

	"datajobs/internal/alias"
	"datajobs/internal/database"
	"datajobs/internal/dedup"
	"datajobs/internal/dimension"
	"datajobs/internal/domain/posting"
	"datajobs/internal/repository"

	"github.com/google/uuid"
)

type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error) { return 0, nil }
func (fakeTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, nil
}
func (fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (fakeTx) Commit(ctx context.Context) error                                     { return nil }
func (fakeTx) Rollback(ctx context.Context) error                                   { return nil }

type fakeDB struct{}

func (fakeDB) Ping(ctx context.Context) error { return nil }
func (fakeDB) Close() error                   { return nil }
func (fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, nil
}
func (fakeDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, nil
}
func (fakeDB) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (fakeDB) Begin(ctx context.Context) (database.Tx, error)                       { return fakeTx{}, nil }
func (fakeDB) SQLDB() *sql.DB                                                       { return nil }

type fakePostingRepo struct {
	mu       sync.Mutex
	byFP     map[string][]posting.Posting
	inserted int
	updated  int
	skills   map[uuid.UUID]map[uuid.UUID]posting.SkillRequirement
	roles    map[uuid.UUID]map[uuid.UUID]struct{}
	levels   map[uuid.UUID]map[string]struct{}
}

func newFakePostingRepo() *fakePostingRepo {
	return &fakePostingRepo{
		byFP:   make(map[string][]posting.Posting),
		skills: make(map[uuid.UUID]map[uuid.UUID]posting.SkillRequirement),
		roles:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		levels: make(map[uuid.UUID]map[string]struct{}),
	}
}

func (f *fakePostingRepo) FindByFingerprint(ctx context.Context, fp string) ([]posting.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]posting.Posting(nil), f.byFP[fp]...), nil
}

func (f *fakePostingRepo) InsertPosting(ctx context.Context, tx database.Tx, p posting.Posting, contentHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byFP[p.Fingerprint] = append(f.byFP[p.Fingerprint], p)
	f.inserted++
	return nil
}

func (f *fakePostingRepo) UpdatePosting(ctx context.Context, tx database.Tx, p posting.Posting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.byFP[p.Fingerprint]
	for i := range rows {
		if rows[i].ID == p.ID {
			rows[i] = p
		}
	}
	f.updated++
	return nil
}

func (f *fakePostingRepo) UpsertSkills(ctx context.Context, tx database.Tx, jobID uuid.UUID, reqs []posting.SkillRequirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.skills[jobID]
	if m == nil {
		m = make(map[uuid.UUID]posting.SkillRequirement)
		f.skills[jobID] = m
	}
	for _, r := range reqs {
		if _, ok := m[r.SkillID]; !ok {
			m[r.SkillID] = r
		}
	}
	return nil
}

func (f *fakePostingRepo) UpsertRoles(ctx context.Context, tx database.Tx, jobID uuid.UUID, roleIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.roles[jobID]
	if m == nil {
		m = make(map[uuid.UUID]struct{})
		f.roles[jobID] = m
	}
	for _, id := range roleIDs {
		m[id] = struct{}{}
	}
	return nil
}

func (f *fakePostingRepo) UpsertLevels(ctx context.Context, tx database.Tx, jobID uuid.UUID, levels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.levels[jobID]
	if m == nil {
		m = make(map[string]struct{})
		f.levels[jobID] = m
	}
	for _, l := range levels {
		m[l] = struct{}{}
	}
	return nil
}

func (f *fakePostingRepo) CountPostings(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, rows := range f.byFP {
		n += int64(len(rows))
	}
	return n, nil
}

func (f *fakePostingRepo) CountPostingsToday(ctx context.Context) (int64, error) {
	return f.CountPostings(ctx)
}

type quarantined struct {
	Source  string
	Kind    string
	Reasons []string
}

type fakeQuarantineRepo struct {
	mu      sync.Mutex
	records []quarantined
}

func (f *fakeQuarantineRepo) Insert(ctx context.Context, source, kind string, reasons []string, payload any) error {
	if _, err := json.Marshal(payload); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, quarantined{Source: source, Kind: kind, Reasons: reasons})
	return nil
}

func (f *fakeQuarantineRepo) List(ctx context.Context, limit, offset int) ([]repository.QuarantineRecord, error) {
	return nil, nil
}

func (f *fakeQuarantineRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

type fakeCompanyRepo struct {
	mu    sync.Mutex
	byKey map[string]repository.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{byKey: make(map[string]repository.Company)}
}

func (f *fakeCompanyRepo) FindByNormalizedName(ctx context.Context, key string) (repository.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byKey[key]; ok {
		return c, nil
	}
	return repository.Company{}, repository.ErrCompanyNotFound
}

func (f *fakeCompanyRepo) InsertIfAbsent(ctx context.Context, c repository.Company) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[c.NormalizedName]; ok {
		return false, nil
	}
	f.byKey[c.NormalizedName] = c
	return true, nil
}

func (f *fakeCompanyRepo) MergeAttributes(ctx context.Context, id uuid.UUID, size, industry string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, c := range f.byKey {
		if c.ID != id {
			continue
		}
		if c.Size == "" {
			c.Size = size
		}
		if c.Industry == "" {
			c.Industry = industry
		}
		f.byKey[k] = c
	}
	return nil
}

type fakeLocationRepo struct {
	mu    sync.Mutex
	byKey map[string]repository.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{byKey: make(map[string]repository.Location)}
}

func locKey(city, country, iso string) string { return city + "|" + country + "|" + iso }

func (f *fakeLocationRepo) ListEntries(ctx context.Context) ([]alias.Entry, error) { return nil, nil }
func (f *fakeLocationRepo) ListAliases(ctx context.Context) (map[string]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeLocationRepo) FindByKey(ctx context.Context, city, country, iso string) (repository.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byKey[locKey(city, country, iso)]; ok {
		return l, nil
	}
	return repository.Location{}, repository.ErrLocationNotFound
}

func (f *fakeLocationRepo) InsertIfAbsent(ctx context.Context, loc repository.Location) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := locKey(loc.City, loc.Country, loc.CountryISO)
	if _, ok := f.byKey[key]; ok {
		return false, nil
	}
	f.byKey[key] = loc
	return true, nil
}

type fakeSourceRepo struct {
	mu     sync.Mutex
	byName map[string]repository.Source
}

func newFakeSourceRepo(sources ...repository.Source) *fakeSourceRepo {
	f := &fakeSourceRepo{byName: make(map[string]repository.Source)}
	for _, s := range sources {
		f.byName[s.Name] = s
	}
	return f
}

func (f *fakeSourceRepo) GetByName(ctx context.Context, name string) (repository.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byName[name]; ok {
		return s, nil
	}
	return repository.Source{}, repository.ErrSourceNotFound
}

func (f *fakeSourceRepo) Ensure(ctx context.Context, name, baseURL string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byName[name]; ok {
		return s.ID, nil
	}
	s := repository.Source{ID: uuid.New(), Name: name, BaseURL: baseURL}
	f.byName[name] = s
	return s.ID, nil
}

type fixture struct {
	coord      *Coordinator
	postings   *fakePostingRepo
	quarantine *fakeQuarantineRepo
	companies  *fakeCompanyRepo
	locRows    *fakeLocationRepo

	skillML     uuid.UUID
	skillPython uuid.UUID
	roleDE      uuid.UUID
	locNY       uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	skills := alias.NewVocabulary()
	ml, py := uuid.New(), uuid.New()
	skills.AddEntry(alias.Entry{ID: ml, Canonical: "Machine Learning"})
	skills.AddEntry(alias.Entry{ID: py, Canonical: "Python"})

	roles := alias.NewVocabulary()
	de := uuid.New()
	roles.AddEntry(alias.Entry{ID: de, Canonical: "Data Engineer"})
	roles.AddEntry(alias.Entry{ID: uuid.New(), Canonical: "Data Scientist"})

	locations := alias.NewVocabulary()
	ny := uuid.New()
	locations.AddEntry(alias.Entry{ID: ny, Canonical: "New York"})
	locations.AddAlias("nyc", ny)

	postings := newFakePostingRepo()
	quarantine := &fakeQuarantineRepo{}
	companies := newFakeCompanyRepo()
	locRows := newFakeLocationRepo()
	sources := newFakeSourceRepo(
		repository.Source{ID: uuid.New(), Name: "linkedin"},
		repository.Source{ID: uuid.New(), Name: "company-careers", Authoritative: true},
	)

	coord := NewCoordinator(
		alias.NewResolver(alias.KindSkill, skills, nil, 0, logger),
		alias.NewResolver(alias.KindRole, roles, nil, 0, logger),
		alias.NewResolver(alias.KindLocation, locations, nil, 0, logger),
		dimension.NewUpserter(companies, locRows, logger),
		dedup.NewClassifier(postings, 0, 0),
		postings,
		quarantine,
		sources,
		fakeDB{},
		logger,
	)

	return &fixture{
		coord: coord, postings: postings, quarantine: quarantine, companies: companies,
		locRows: locRows,
		skillML: ml, skillPython: py, roleDE: de, locNY: ny,
	}
}

const jobDescription = "We are hiring a data engineer to build batch and " +
	"streaming pipelines, own our warehouse models and keep data quality " +
	"honest across every ingestion source."

func baseRecord() posting.RawRecord {
	return posting.RawRecord{
		Source:      "linkedin",
		Title:       "Senior Data Engineer",
		Company:     "Acme Inc.",
		Location:    "New York",
		Skills:      []string{"Python", "Machine Learning"},
		SalaryText:  "$90,000 - $120,000",
		PostedText:  "2024-03-11",
		Employment:  "Full-time",
		Remote:      "Hybrid",
		Description: jobDescription,
	}
}

func TestIngestInsertsNewPosting(t *testing.T) {
	f := newFixture(t)

	out, err := f.coord.Ingest(context.Background(), baseRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeInserted {
		t.Fatalf("outcome = %s, want inserted", out.Kind)
	}

	n, _ := f.postings.CountPostings(context.Background())
	if n != 1 {
		t.Fatalf("postings = %d, want 1", n)
	}
	if len(f.postings.skills[out.JobID]) != 2 {
		t.Fatalf("skill bridges = %d, want 2", len(f.postings.skills[out.JobID]))
	}
	if _, ok := f.postings.roles[out.JobID][f.roleDE]; !ok {
		t.Fatal("role bridge missing")
	}
	if _, ok := f.postings.levels[out.JobID]["Senior"]; !ok {
		t.Fatal("level bridge missing")
	}
}

func TestIngestResubmissionIsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.coord.Ingest(ctx, baseRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.coord.Ingest(ctx, baseRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Kind != posting.OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", second.Kind)
	}
	if second.JobID != first.JobID {
		t.Fatal("duplicate did not point at the committed fact")
	}
	if n, _ := f.postings.CountPostings(ctx); n != 1 {
		t.Fatalf("postings = %d, want 1", n)
	}
}

func TestIngestNearDuplicateAcrossSources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.coord.Ingest(ctx, baseRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// same opening scraped elsewhere: abbreviated title, alias forms,
	// same ISO week, one extra skill mention
	other := baseRecord()
	other.Source = "indeed"
	other.Title = "Sr Data Eng"
	other.Company = "ACME"
	other.Location = "NYC"
	other.Skills = []string{"python", "ML"}
	other.PostedText = "2024-03-15"

	second, err := f.coord.Ingest(ctx, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Kind != posting.OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", second.Kind)
	}
	if second.JobID != first.JobID {
		t.Fatal("near-duplicate did not converge on one fact")
	}
	if n, _ := f.postings.CountPostings(ctx); n != 1 {
		t.Fatalf("postings = %d, want 1", n)
	}
	if len(f.companies.byKey) != 1 {
		t.Fatalf("companies = %d, want 1", len(f.companies.byKey))
	}
	if len(f.postings.skills[first.JobID]) != 2 {
		t.Fatalf("skill bridges = %d, want union of 2", len(f.postings.skills[first.JobID]))
	}
}

func TestIngestRevisedPostingIsUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.coord.Ingest(ctx, baseRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	revised := baseRecord()
	revised.ExpiredText = "2024-04-30"
	revised.Description = jobDescription + " This role now also covers our " +
		"realtime feature store and on-call rotation for pipeline incidents."

	second, err := f.coord.Ingest(ctx, revised)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Kind != posting.OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", second.Kind)
	}
	if second.JobID != first.JobID {
		t.Fatal("update created a second fact")
	}
	if f.postings.updated != 1 {
		t.Fatalf("updates = %d, want 1", f.postings.updated)
	}

	rows, _ := f.postings.FindByFingerprint(ctx, f.postings.anyFingerprint())
	if len(rows) != 1 || rows[0].ExpiredDate == nil {
		t.Fatal("expired_date not merged onto the fact")
	}
}

func TestIngestInvalidRecordQuarantined(t *testing.T) {
	f := newFixture(t)

	bad := baseRecord()
	bad.Company = ""
	bad.Education = "Associate"

	out, err := f.coord.Ingest(context.Background(), bad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeRejected {
		t.Fatalf("outcome = %s, want rejected", out.Kind)
	}
	if len(out.Reasons) != 2 {
		t.Fatalf("reasons = %v, want 2", out.Reasons)
	}
	if len(f.quarantine.records) != 1 || f.quarantine.records[0].Kind != repository.QuarantineValidation {
		t.Fatalf("quarantine = %+v", f.quarantine.records)
	}
	if n, _ := f.postings.CountPostings(context.Background()); n != 0 {
		t.Fatal("rejected record reached the store")
	}
}

func TestIngestUnresolvedLocationQuarantined(t *testing.T) {
	f := newFixture(t)

	r := baseRecord()
	r.Location = "???"

	out, err := f.coord.Ingest(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeRejected {
		t.Fatalf("outcome = %s, want rejected", out.Kind)
	}
	if len(f.quarantine.records) != 1 || f.quarantine.records[0].Kind != repository.QuarantineUnresolved {
		t.Fatalf("quarantine = %+v", f.quarantine.records)
	}
	if n, _ := f.postings.CountPostings(context.Background()); n != 0 {
		t.Fatal("unresolved record reached the store")
	}
}

func TestIngestUnresolvedSkillDoesNotBlockRecord(t *testing.T) {
	f := newFixture(t)

	r := baseRecord()
	r.Skills = []string{"Python", "Underwater Basket Weaving"}

	out, err := f.coord.Ingest(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeInserted {
		t.Fatalf("outcome = %s, want inserted", out.Kind)
	}
	if len(f.postings.skills[out.JobID]) != 1 {
		t.Fatalf("skill bridges = %d, want resolved subset of 1", len(f.postings.skills[out.JobID]))
	}
	if len(f.quarantine.records) != 1 || f.quarantine.records[0].Kind != repository.QuarantineUnresolved {
		t.Fatalf("quarantine = %+v", f.quarantine.records)
	}
}

func TestIngestCreatesLocationFromStructuredString(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := baseRecord()
	r.Location = "Austin, USA"

	out, err := f.coord.Ingest(ctx, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeInserted {
		t.Fatalf("outcome = %s, want inserted", out.Kind)
	}
	if len(f.locRows.byKey) != 1 {
		t.Fatalf("locations = %d, want 1", len(f.locRows.byKey))
	}
	created, ok := f.locRows.byKey[locKey("Austin", "USA", "")]
	if !ok {
		t.Fatalf("location rows = %+v", f.locRows.byKey)
	}

	rows, _ := f.postings.FindByFingerprint(ctx, f.postings.anyFingerprint())
	if len(rows) != 1 || rows[0].LocationID != created.ID {
		t.Fatal("posting not attached to the created location")
	}

	// the raw form is now vocabulary; a re-sighting makes no second row
	if _, err := f.coord.Ingest(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.locRows.byKey) != 1 {
		t.Fatalf("locations = %d after re-sighting, want 1", len(f.locRows.byKey))
	}
	if len(f.quarantine.records) != 0 {
		t.Fatalf("quarantine = %+v", f.quarantine.records)
	}
}

func TestIngestAuthoritativeFlagComesFromRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.coord.Ingest(ctx, baseRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a non-authoritative source observing a lower band must not regress
	// the committed salary, whatever its payload claims
	lower := baseRecord()
	lower.SalaryText = "$70,000 - $100,000"
	lower.Description = jobDescription + " This role now also covers our " +
		"realtime feature store and on-call rotation for pipeline incidents."
	if _, err := f.coord.Ingest(ctx, lower); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, _ := f.postings.FindByFingerprint(ctx, f.postings.anyFingerprint())
	if *rows[0].MinSalary != 90000 || *rows[0].MaxSalary != 120000 {
		t.Fatalf("salary regressed for a non-authoritative source: min=%d max=%d",
			*rows[0].MinSalary, *rows[0].MaxSalary)
	}

	// the same observation from a source registered authoritative applies
	corrected := lower
	corrected.Source = "company-careers"
	corrected.Description = jobDescription + " The listing now also covers " +
		"our lakehouse migration and weekend incident cover for ingestion jobs."
	out, err := f.coord.Ingest(ctx, corrected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != posting.OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", out.Kind)
	}
	rows, _ = f.postings.FindByFingerprint(ctx, f.postings.anyFingerprint())
	if *rows[0].MinSalary != 70000 || *rows[0].MaxSalary != 100000 {
		t.Fatalf("authoritative correction not applied: min=%d max=%d",
			*rows[0].MinSalary, *rows[0].MaxSalary)
	}
}

func (f *fakePostingRepo) anyFingerprint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for fp := range f.byFP {
		return fp
	}
	return ""
}
