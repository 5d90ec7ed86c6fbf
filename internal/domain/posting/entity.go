package posting

import (
	"time"

	"github.com/google/uuid"
)

// RawRecord is one loosely structured job posting as the crawlers hand it
// over. Every field is free text or absent; nothing here has been resolved
// against a vocabulary yet.
type RawRecord struct {
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	SalaryText  string   `json:"salary"`
	PostedText  string   `json:"posted"`
	ExpiredText string   `json:"expired"`
	Employment  string   `json:"employment_type"`
	Remote      string   `json:"remote_option"`
	Education   string   `json:"education_level"`
	Experience  string   `json:"experience"`
	Description string   `json:"description"`
	CompanySize string   `json:"company_size"`
	Industry    string   `json:"industry"`
}

// Normalized is a RawRecord after text normalization and field parsing,
// before any vocabulary or dimension resolution.
type Normalized struct {
	Source      string
	Title       string
	Company     string
	Location    string
	Skills      []string
	PostedDate  *time.Time
	ExpiredDate *time.Time
	MinSalary   *int64
	MaxSalary   *int64
	Currency    string
	ExpYears    *int
	Education   string
	Employment  string
	Remote      string
	CompanySize string
	Industry    string
	Levels      []string
	Description string
	// Authoritative comes from the job_sources registration of the
	// record's source, never from the record itself.
	Authoritative bool
}

// Resolved carries the dimension ids a Normalized record mapped onto.
type Resolved struct {
	CompanyID  uuid.UUID
	LocationID uuid.UUID
	RoleIDs    []uuid.UUID
	SkillIDs   []uuid.UUID
}

// PrimaryRoleID is the role used for fingerprinting. Additional roles go to
// the job_roles bridge without splitting facts.
func (r Resolved) PrimaryRoleID() uuid.UUID {
	if len(r.RoleIDs) == 0 {
		return uuid.Nil
	}
	return r.RoleIDs[0]
}

// Posting is the committed fact row.
type Posting struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	LocationID  uuid.UUID
	Fingerprint string
	PostedDate  *time.Time
	ExpiredDate *time.Time
	MinSalary   *int64
	MaxSalary   *int64
	Currency    string
	ExpYears    *int
	Education   string
	Employment  string
	Remote      string
	Description string
	Source      string
}

// SkillRequirement is one job_skills bridge row.
type SkillRequirement struct {
	SkillID    uuid.UUID
	Importance string
	Level      string
}

type OutcomeKind string

const (
	OutcomeInserted  OutcomeKind = "inserted"
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeRejected  OutcomeKind = "rejected"
)

// Outcome reports what the coordinator did with one raw record.
type Outcome struct {
	Kind    OutcomeKind
	JobID   uuid.UUID
	Reasons []string
}
