package dedup

import (
	"testing"
	"time"

	"datajobs/internal/domain/posting"
)

func i64(v int64) *int64 { return &v }

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestReconcileFillsNullsOnly(t *testing.T) {
	existing := posting.Posting{MinSalary: i64(90000), Currency: "USD"}
	incoming := posting.Posting{MinSalary: i64(80000), MaxSalary: i64(120000), Education: "Master"}

	merged, changed := Reconcile(existing, incoming, false)
	if !changed {
		t.Fatal("expected a change")
	}
	if *merged.MinSalary != 90000 {
		t.Fatal("observed salary regressed without authority")
	}
	if merged.MaxSalary == nil || *merged.MaxSalary != 120000 {
		t.Fatal("null max_salary not filled")
	}
	if merged.Education != "Master" {
		t.Fatal("null education not filled")
	}
	if merged.Currency != "USD" {
		t.Fatal("currency overwritten")
	}
}

func TestReconcileAuthoritativeOverridesSalary(t *testing.T) {
	existing := posting.Posting{MinSalary: i64(90000)}
	incoming := posting.Posting{MinSalary: i64(95000)}

	merged, changed := Reconcile(existing, incoming, true)
	if !changed || *merged.MinSalary != 95000 {
		t.Fatalf("authoritative salary not applied: %v", *merged.MinSalary)
	}
}

func TestReconcileLaterExpiryWins(t *testing.T) {
	existing := posting.Posting{ExpiredDate: day(10)}
	incoming := posting.Posting{ExpiredDate: day(20)}

	merged, changed := Reconcile(existing, incoming, false)
	if !changed || !merged.ExpiredDate.Equal(*day(20)) {
		t.Fatal("later expiry not applied")
	}

	// an earlier sighting never rolls the fact back
	merged, changed = Reconcile(merged, posting.Posting{ExpiredDate: day(5)}, false)
	if changed || !merged.ExpiredDate.Equal(*day(20)) {
		t.Fatal("expiry regressed")
	}
}

func TestReconcileKeepsSalaryPairOrdered(t *testing.T) {
	// filling max from a cheaper observation must not leave min > max
	existing := posting.Posting{MinSalary: i64(100000)}
	incoming := posting.Posting{MinSalary: i64(50000), MaxSalary: i64(80000)}

	merged, changed := Reconcile(existing, incoming, false)
	if changed {
		t.Fatal("inconsistent fill reported as a change")
	}
	if *merged.MinSalary != 100000 || merged.MaxSalary != nil {
		t.Fatalf("salary pair mixed across observations: min=%v max=%v", merged.MinSalary, merged.MaxSalary)
	}
}

func TestReconcileAuthoritativeTakesWholeSalaryPair(t *testing.T) {
	existing := posting.Posting{MinSalary: i64(10000), MaxSalary: i64(20000)}
	incoming := posting.Posting{MinSalary: i64(30000)}

	merged, changed := Reconcile(existing, incoming, true)
	if !changed {
		t.Fatal("expected a change")
	}
	if *merged.MinSalary != 30000 || merged.MaxSalary != nil {
		t.Fatalf("stale max kept under a higher authoritative min: min=%v max=%v", merged.MinSalary, merged.MaxSalary)
	}
}

func TestReconcileKeepsDatePairOrdered(t *testing.T) {
	existing := posting.Posting{ExpiredDate: day(10)}
	incoming := posting.Posting{PostedDate: day(20)}

	merged, changed := Reconcile(existing, incoming, false)
	if changed {
		t.Fatal("inconsistent fill reported as a change")
	}
	if merged.PostedDate != nil || !merged.ExpiredDate.Equal(*day(10)) {
		t.Fatalf("posted filled past the expiry: posted=%v expired=%v", merged.PostedDate, merged.ExpiredDate)
	}

	// a consistent pair from the incoming observation still fills both
	merged, changed = Reconcile(existing, posting.Posting{PostedDate: day(2), ExpiredDate: day(12)}, false)
	if !changed || !merged.PostedDate.Equal(*day(2)) || !merged.ExpiredDate.Equal(*day(12)) {
		t.Fatalf("consistent date pair not applied: posted=%v expired=%v", merged.PostedDate, merged.ExpiredDate)
	}
}

func TestReconcileIdenticalIsNoop(t *testing.T) {
	p := posting.Posting{
		MinSalary: i64(90000), MaxSalary: i64(120000),
		Currency: "USD", Education: "Bachelor", Description: "desc",
		PostedDate: day(1), ExpiredDate: day(30),
	}
	if _, changed := Reconcile(p, p, false); changed {
		t.Fatal("re-submission must be a no-op")
	}
	if _, changed := Reconcile(p, p, true); changed {
		t.Fatal("authoritative re-submission must also be a no-op")
	}
}
