package normalize

import (
	"testing"
	"time"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Data   Engineer ", "data engineer"},
		{"Zürich", "zurich"},
		{"C++ / C#", "c++ c#"},
		{"Sr. Data-Eng", "sr data eng"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Fold(c.in); got != c.want {
			t.Errorf("Fold(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompanyKeyStripsLegalSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Inc.", "acme"},
		{"Acme, Inc", "acme"},
		{"ACME", "acme"},
		{"Acme GmbH", "acme"},
		{"Inc", "inc"},
	}
	for _, c := range cases {
		if got := CompanyKey(c.in); got != c.want {
			t.Errorf("CompanyKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSimilarityAbbreviations(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
	}{
		{"ml", "Machine Learning", 1},
		{"data eng", "Data Engineer", 0.9},
		{"Data Engineer", "Engineer, Data", 0.9},
		{"kubernetes", "kubernetes", 1},
	}
	for _, c := range cases {
		if got := Similarity(c.a, c.b); got < c.min {
			t.Errorf("Similarity(%q, %q) = %v, want >= %v", c.a, c.b, got, c.min)
		}
	}

	if got := Similarity("???", "Data Engineer"); got > 0.3 {
		t.Errorf("Similarity junk = %v, want low", got)
	}
}

func TestLevenshtein(t *testing.T) {
	if d := Levenshtein("kitten", "sitting"); d != 3 {
		t.Fatalf("Levenshtein = %d, want 3", d)
	}
	if d := Levenshtein("", "abc"); d != 3 {
		t.Fatalf("Levenshtein empty = %d, want 3", d)
	}
}

func TestParseSalary(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	cases := []struct {
		in       string
		min, max *int64
		currency string
	}{
		{"$90,000 - $120,000", i64(90000), i64(120000), "USD"},
		{"90k-120k USD", i64(90000), i64(120000), "USD"},
		{"up to €80,000", nil, i64(80000), "EUR"},
		{"from 50000 eur", i64(50000), nil, "EUR"},
		{"100000", i64(100000), i64(100000), ""},
		{"competitive", nil, nil, ""},
		{"", nil, nil, ""},
	}
	for _, c := range cases {
		min, max, cur := ParseSalary(c.in)
		if !eqInt64(min, c.min) || !eqInt64(max, c.max) || cur != c.currency {
			t.Errorf("ParseSalary(%q) = (%v, %v, %q), want (%v, %v, %q)",
				c.in, deref(min), deref(max), cur, deref(c.min), deref(c.max), c.currency)
		}
	}
}

func TestParseSalarySwapsReversedBounds(t *testing.T) {
	min, max, _ := ParseSalary("120000 - 90000")
	if min == nil || max == nil || *min != 90000 || *max != 120000 {
		t.Fatalf("got (%v, %v), want sorted bounds", deref(min), deref(max))
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"2024-03-15T10:30:00Z", "2024-03-15", true},
		{"15-03-2024", "2024-03-15", true},
		{"Mar 15, 2024", "2024-03-15", true},
		{"45366", "2024-03-15", true},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.in)
		if ok != c.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("ParseDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
		if ok && got.Location() != time.UTC {
			t.Errorf("ParseDate(%q) not UTC", c.in)
		}
	}
}

func TestMapExperience(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"EN", 0, true},
		{"senior", 5, true},
		{"3+ years", 3, true},
		{"5", 5, true},
		{"", 0, false},
		{"unknown", 0, false},
	}
	for _, c := range cases {
		got, ok := MapExperience(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("MapExperience(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestRoleSurfaces(t *testing.T) {
	got := RoleSurfaces("Sr Data Eng / ML Engineer")
	want := []string{"data eng", "ml engineer"}
	if len(got) != len(want) {
		t.Fatalf("RoleSurfaces = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RoleSurfaces = %v, want %v", got, want)
		}
	}

	if got := RoleSurfaces("Senior"); len(got) != 0 {
		t.Fatalf("level-only title produced surfaces: %v", got)
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in                 string
		city, country, iso string
		ok                 bool
	}{
		{"Austin, USA", "Austin", "USA", "", true},
		{"Berlin, Germany, de", "Berlin", "Germany", "DE", true},
		{"New York", "", "", "", false},
		{"???", "", "", "", false},
		{", USA", "", "", "", false},
		{"Paris, France, Europe", "", "", "", false},
	}
	for _, c := range cases {
		city, country, iso, ok := ParseLocation(c.in)
		if ok != c.ok || city != c.city || country != c.country || iso != c.iso {
			t.Fatalf("ParseLocation(%q) = %q %q %q %v, want %q %q %q %v",
				c.in, city, country, iso, ok, c.city, c.country, c.iso, c.ok)
		}
	}
}

func TestLevelsFromTitle(t *testing.T) {
	got := LevelsFromTitle("Sr Data Eng")
	if len(got) != 1 || got[0] != "Senior" {
		t.Fatalf("LevelsFromTitle = %v, want [Senior]", got)
	}
	if got := LevelsFromTitle("Data Analyst"); len(got) != 0 {
		t.Fatalf("LevelsFromTitle = %v, want none", got)
	}
}

func eqInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
