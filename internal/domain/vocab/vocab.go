package vocab

import "strings"

// Set is a closed vocabulary. Membership is exact; Canonical also accepts
// case-insensitive forms and returns the canonical spelling.
type Set struct {
	ordered []string
	byFold  map[string]string
}

func NewSet(values ...string) Set {
	s := Set{
		ordered: make([]string, 0, len(values)),
		byFold:  make(map[string]string, len(values)),
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s.ordered = append(s.ordered, v)
		s.byFold[strings.ToLower(v)] = v
	}
	return s
}

func (s Set) Contains(v string) bool {
	c, ok := s.byFold[strings.ToLower(strings.TrimSpace(v))]
	return ok && c == strings.TrimSpace(v)
}

func (s Set) Canonical(v string) (string, bool) {
	c, ok := s.byFold[strings.ToLower(strings.TrimSpace(v))]
	return c, ok
}

func (s Set) Values() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

var CompanySizes = NewSet("Startup", "Small", "Medium", "Large", "Enterprise")

var Industries = NewSet(
	"Technology", "Finance", "Banking", "Insurance", "Healthcare", "Education",
	"E-commerce", "Manufacturing", "Consulting", "Government",
	"Telecommunications", "Energy", "Retail", "Logistics", "Real Estate",
)

var RoleNames = NewSet(
	"Data Analyst", "Business Intelligence Analyst", "BI Developer",
	"Analytics Engineer", "Data Engineer", "Data Scientist",
	"Machine Learning Engineer", "AI Engineer", "AI Researcher",
	"Applied Scientist", "Research Engineer", "Data Architect",
	"Data Manager", "Data Lead",
)

var EducationLevels = NewSet("High School", "Bachelor", "Master", "PhD")

var EmploymentTypes = NewSet("Full-time", "Part-time", "Internship", "Temporary")

var JobLevels = NewSet("Intern", "Junior", "Mid", "Senior", "Lead")

var RemoteOptions = NewSet("Onsite", "Hybrid", "Remote")

var SkillCategories = NewSet(
	"Programming", "Database", "Data Engineering", "Visualization",
	"Cloud", "Machine Learning", "Statistics", "DevOps",
)

var SkillLevels = NewSet("Basic", "Intermediate", "Advanced", "Expert")

var ImportanceLevels = NewSet("Required", "Preferred", "Optional")

// Currencies covers the codes the crawlers actually emit. ISO 4217 is much
// larger; anything outside this list fails validation rather than silently
// passing through to analytics.
var Currencies = NewSet(
	"USD", "EUR", "GBP", "VND", "SGD", "AUD", "CAD", "JPY", "INR", "CHF",
	"SEK", "NOK", "DKK", "PLN", "BRL", "MXN", "CNY", "HKD", "KRW", "THB",
	"MYR", "IDR", "PHP", "NZD", "ZAR", "AED",
)
