package validate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"datajobs/internal/domain/posting"
)

func validRecord() posting.Normalized {
	return posting.Normalized{
		Source:     "linkedin",
		Title:      "Data Engineer",
		Company:    "Acme",
		Employment: "Full-time",
		Remote:     "Hybrid",
		Education:  "Bachelor",
	}
}

func reasonsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Reasons
}

func TestValidateAcceptsCleanRecord(t *testing.T) {
	if err := Validate(validRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsOutOfVocabularyEnum(t *testing.T) {
	n := validRecord()
	n.Education = "Associate"

	err := Validate(n)
	if err == nil {
		t.Fatal("expected rejection")
	}
	reasons := reasonsOf(t, err)
	if len(reasons) != 1 || !strings.Contains(reasons[0], "Associate") {
		t.Fatalf("reasons = %v", reasons)
	}
}

func TestValidateCollectsAllReasons(t *testing.T) {
	lo, hi := int64(120000), int64(90000)
	n := validRecord()
	n.Company = ""
	n.Currency = "XBT"
	n.MinSalary = &lo
	n.MaxSalary = &hi

	err := Validate(n)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if got := len(reasonsOf(t, err)); got != 3 {
		t.Fatalf("reasons = %v, want 3", reasonsOf(t, err))
	}
}

func TestValidateRejectsExpiryBeforePosting(t *testing.T) {
	posted := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	expired := posted.AddDate(0, 0, -1)

	n := validRecord()
	n.PostedDate = &posted
	n.ExpiredDate = &expired

	if err := Validate(n); err == nil {
		t.Fatal("expected rejection")
	}
}

func TestValidateAcceptsMissingOptionalFields(t *testing.T) {
	n := posting.Normalized{Source: "indeed", Company: "Acme"}
	if err := Validate(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCurrencyCaseInsensitive(t *testing.T) {
	n := validRecord()
	n.Currency = "usd"
	if err := Validate(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
