package validate

import (
	"fmt"
	"strings"

	"datajobs/internal/domain/posting"
	"datajobs/internal/domain/vocab"
)

// ValidationError carries every reason a record failed, so quarantine gets
// the full picture in one pass instead of one reason per re-submission.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Reasons) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// Validate applies the schema's domain constraints to a normalized record
// before anything is written. A nil return means every closed vocabulary,
// ordering rule and bound holds.
func Validate(n posting.Normalized) error {
	var reasons []string

	if n.Company == "" {
		reasons = append(reasons, "company name missing")
	}
	if n.Source == "" {
		reasons = append(reasons, "source missing")
	}

	reasons = appendEnumReason(reasons, "education_level", n.Education, vocab.EducationLevels)
	reasons = appendEnumReason(reasons, "employment_type", n.Employment, vocab.EmploymentTypes)
	reasons = appendEnumReason(reasons, "remote_option", n.Remote, vocab.RemoteOptions)
	reasons = appendEnumReason(reasons, "company_size", n.CompanySize, vocab.CompanySizes)
	reasons = appendEnumReason(reasons, "industry", n.Industry, vocab.Industries)
	for _, lvl := range n.Levels {
		reasons = appendEnumReason(reasons, "level", lvl, vocab.JobLevels)
	}

	if n.Currency != "" && !vocab.Currencies.Contains(strings.ToUpper(n.Currency)) {
		reasons = append(reasons, fmt.Sprintf("currency %q is not a recognized code", n.Currency))
	}

	if n.MinSalary != nil && n.MaxSalary != nil && *n.MinSalary > *n.MaxSalary {
		reasons = append(reasons, fmt.Sprintf("min_salary %d exceeds max_salary %d", *n.MinSalary, *n.MaxSalary))
	}
	if n.MinSalary != nil && *n.MinSalary < 0 {
		reasons = append(reasons, "min_salary is negative")
	}
	if n.MaxSalary != nil && *n.MaxSalary < 0 {
		reasons = append(reasons, "max_salary is negative")
	}

	if n.PostedDate != nil && n.ExpiredDate != nil && n.ExpiredDate.Before(*n.PostedDate) {
		reasons = append(reasons, fmt.Sprintf(
			"expired_date %s precedes posted_date %s",
			n.ExpiredDate.Format("2006-01-02"), n.PostedDate.Format("2006-01-02"),
		))
	}

	if n.ExpYears != nil && *n.ExpYears < 0 {
		reasons = append(reasons, "required_exp_years is negative")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// appendEnumReason checks membership for an optional enum field: empty is
// fine, anything else must be in the closed set.
func appendEnumReason(reasons []string, field, value string, set vocab.Set) []string {
	if value == "" {
		return reasons
	}
	if set.Contains(value) {
		return reasons
	}
	return append(reasons, fmt.Sprintf("%s %q is not in the allowed set", field, value))
}

// ValidateBridge checks the enums on a job_skills bridge row.
func ValidateBridge(importance, level string) error {
	var reasons []string
	reasons = appendEnumReason(reasons, "importance_level", importance, vocab.ImportanceLevels)
	reasons = appendEnumReason(reasons, "skill_level_required", level, vocab.SkillLevels)
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
