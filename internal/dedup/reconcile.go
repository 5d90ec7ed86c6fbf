package dedup

import (
	"time"

	"datajobs/internal/domain/posting"
)

// Reconcile merges a later observation of the same posting into the
// committed fact. Non-null beats null, a later expired_date wins, and
// salaries never regress once observed unless the incoming source is
// marked authoritative. Salary bounds and the posted/expired dates are
// merged as pairs: a fill that would leave min > max or expired before
// posted is discarded and the pair falls back to whichever single
// observation is consistent. Returns the merged fact and whether
// anything changed.
func Reconcile(existing, incoming posting.Posting, authoritative bool) (posting.Posting, bool) {
	merged := existing

	if merged.PostedDate == nil {
		merged.PostedDate = incoming.PostedDate
	}
	if incoming.ExpiredDate != nil {
		if merged.ExpiredDate == nil || incoming.ExpiredDate.After(*merged.ExpiredDate) {
			merged.ExpiredDate = incoming.ExpiredDate
		}
	}
	if merged.PostedDate != nil && merged.ExpiredDate != nil && merged.ExpiredDate.Before(*merged.PostedDate) {
		// only reachable when existing had a nil in the pair; the
		// committed pair itself always satisfies expired >= posted
		merged.PostedDate, merged.ExpiredDate = existing.PostedDate, existing.ExpiredDate
	}

	if authoritative {
		if incoming.MinSalary != nil {
			merged.MinSalary = incoming.MinSalary
		}
		if incoming.MaxSalary != nil {
			merged.MaxSalary = incoming.MaxSalary
		}
	} else {
		if merged.MinSalary == nil {
			merged.MinSalary = incoming.MinSalary
		}
		if merged.MaxSalary == nil {
			merged.MaxSalary = incoming.MaxSalary
		}
	}
	if merged.MinSalary != nil && merged.MaxSalary != nil && *merged.MinSalary > *merged.MaxSalary {
		if authoritative {
			merged.MinSalary, merged.MaxSalary = incoming.MinSalary, incoming.MaxSalary
		} else {
			merged.MinSalary, merged.MaxSalary = existing.MinSalary, existing.MaxSalary
		}
	}

	if merged.Currency == "" {
		merged.Currency = incoming.Currency
	}
	if merged.ExpYears == nil {
		merged.ExpYears = incoming.ExpYears
	}
	if merged.Education == "" {
		merged.Education = incoming.Education
	}
	if merged.Employment == "" {
		merged.Employment = incoming.Employment
	}
	if merged.Remote == "" {
		merged.Remote = incoming.Remote
	}
	if merged.Description == "" {
		merged.Description = incoming.Description
	}

	return merged, !reconciledEqual(merged, existing)
}

func reconciledEqual(a, b posting.Posting) bool {
	return sameTime(a.PostedDate, b.PostedDate) &&
		sameTime(a.ExpiredDate, b.ExpiredDate) &&
		sameInt64(a.MinSalary, b.MinSalary) &&
		sameInt64(a.MaxSalary, b.MaxSalary) &&
		sameInt(a.ExpYears, b.ExpYears) &&
		a.Currency == b.Currency &&
		a.Education == b.Education &&
		a.Employment == b.Employment &&
		a.Remote == b.Remote &&
		a.Description == b.Description
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
