package normalize

import (
	"strings"
	"unicode"

	"datajobs/internal/domain/posting"
)

var titleLevelSurface = map[string]string{
	"intern": "Intern", "internship": "Intern",
	"jr": "Junior", "junior": "Junior",
	"mid": "Mid", "middle": "Mid",
	"sr": "Senior", "senior": "Senior",
	"lead": "Lead", "principal": "Lead", "head": "Lead", "staff": "Lead",
}

// LevelsFromTitle pulls seniority markers out of a raw title ("Sr Data
// Eng" carries Senior). A title may carry several.
func LevelsFromTitle(title string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range Tokens(title) {
		lvl, ok := titleLevelSurface[tok]
		if !ok {
			continue
		}
		if _, dup := seen[lvl]; dup {
			continue
		}
		seen[lvl] = struct{}{}
		out = append(out, lvl)
	}
	return out
}

// RoleSurfaces splits a title into role mentions and drops the seniority
// markers, so "Sr Data Eng / ML Engineer" yields "data eng" and
// "ml engineer" for resolution.
func RoleSurfaces(title string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(title, func(r rune) bool {
		return r == '/' || r == '&' || r == ','
	}) {
		var kept []string
		for _, tok := range Tokens(part) {
			if _, isLevel := titleLevelSurface[tok]; isLevel {
				continue
			}
			kept = append(kept, tok)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return out
}

// ParseLocation takes a raw location string apart structurally:
// "City, Country" or "City, Country, ISO". Anything without a
// comma-separated country does not parse; those surface forms stay with
// the resolver and its quarantine path.
func ParseLocation(s string) (city, country, iso string, ok bool) {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 2:
		city, country = parts[0], parts[1]
	case 3:
		city, country, iso = parts[0], parts[1], strings.ToUpper(parts[2])
		if len(iso) < 2 || len(iso) > 3 || !lettersOnly(iso) {
			return "", "", "", false
		}
	default:
		return "", "", "", false
	}
	if city == "" || country == "" {
		return "", "", "", false
	}
	return city, country, iso, true
}

func lettersOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Record maps a RawRecord onto a Normalized one: parsed dates and salary,
// enum surface forms mapped where known. Unmappable non-empty enum text
// passes through verbatim so validation rejects it with a reason instead
// of it silently disappearing here. Normalize, don't infer.
func Record(raw posting.RawRecord) posting.Normalized {
	n := posting.Normalized{
		Source:      strings.TrimSpace(raw.Source),
		Title:       strings.TrimSpace(raw.Title),
		Company:     strings.TrimSpace(raw.Company),
		Location:    strings.TrimSpace(raw.Location),
		Description: strings.TrimSpace(raw.Description),
	}

	for _, s := range raw.Skills {
		s = strings.TrimSpace(s)
		if s != "" {
			n.Skills = append(n.Skills, s)
		}
	}

	if t, ok := ParseDate(raw.PostedText); ok {
		n.PostedDate = &t
	}
	if t, ok := ParseDate(raw.ExpiredText); ok {
		n.ExpiredDate = &t
	}

	n.MinSalary, n.MaxSalary, n.Currency = ParseSalary(raw.SalaryText)

	if y, ok := MapExperience(raw.Experience); ok {
		n.ExpYears = &y
	}

	n.Education = mapOrPass(raw.Education, MapEducation)
	n.Employment = mapOrPass(raw.Employment, MapEmployment)
	n.Remote = mapOrPass(raw.Remote, MapRemote)
	n.CompanySize = strings.TrimSpace(raw.CompanySize)
	n.Industry = strings.TrimSpace(raw.Industry)
	n.Levels = LevelsFromTitle(raw.Title)

	return n
}

func mapOrPass(raw string, mapper func(string) (string, bool)) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if v, ok := mapper(raw); ok {
		return v
	}
	return raw
}
