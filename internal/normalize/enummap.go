package normalize

import (
	"regexp"
	"strconv"
)

var employmentSurface = map[string]string{
	"full time": "Full-time", "fulltime": "Full-time",
	"ft": "Full-time", "permanent": "Full-time",
	"part time": "Part-time", "parttime": "Part-time",
	"pt":         "Part-time",
	"intern":     "Internship", "internship": "Internship", "trainee": "Internship",
	"temp": "Temporary", "temporary": "Temporary", "contract": "Temporary",
	"contractor": "Temporary", "freelance": "Temporary",
}

var remoteSurface = map[string]string{
	"remote": "Remote", "fully remote": "Remote", "wfh": "Remote",
	"work from home": "Remote", "anywhere": "Remote",
	"hybrid": "Hybrid", "partially remote": "Hybrid", "flexible": "Hybrid",
	"onsite": "Onsite", "on site": "Onsite",
	"office": "Onsite", "in office": "Onsite", "in person": "Onsite",
}

var educationSurface = map[string]string{
	"high school": "High School", "highschool": "High School",
	"hs diploma": "High School", "secondary": "High School",
	"bachelor": "Bachelor", "bachelors": "Bachelor", "bachelor s": "Bachelor",
	"bs": "Bachelor", "ba": "Bachelor", "bsc": "Bachelor",
	"undergraduate": "Bachelor",
	"master":        "Master", "masters": "Master", "master s": "Master",
	"ms": "Master", "msc": "Master", "mba": "Master", "graduate": "Master",
	"phd": "PhD", "ph d": "PhD", "doctorate": "PhD", "doctoral": "PhD",
}

// MapEmployment resolves raw employment-type text to the closed enum.
func MapEmployment(s string) (string, bool) {
	v, ok := employmentSurface[Fold(s)]
	return v, ok
}

// MapRemote resolves raw remote/onsite text to the closed enum.
func MapRemote(s string) (string, bool) {
	v, ok := remoteSurface[Fold(s)]
	return v, ok
}

// MapEducation resolves raw education text to the closed enum.
func MapEducation(s string) (string, bool) {
	v, ok := educationSurface[Fold(s)]
	return v, ok
}

// expLevelYears mirrors the EN/MI/SE/EX shorthand some API sources use.
var expLevelYears = map[string]int{
	"en": 0, "entry": 0, "entry level": 0,
	"mi": 2, "mid": 2, "mid level": 2,
	"se": 5, "senior": 5,
	"ex": 8, "executive": 8, "expert": 8,
}

var expYearsRe = regexp.MustCompile(`(\d{1,2})\s*(?:\+|\s\d{1,2})?\s*(?:years?|yrs?)?`)

// MapExperience turns experience text ("3+ years", "3-5 yrs", "SE") into a
// minimum-years figure.
func MapExperience(s string) (int, bool) {
	folded := Fold(s)
	if folded == "" {
		return 0, false
	}
	if y, ok := expLevelYears[folded]; ok {
		return y, true
	}
	m := expYearsRe.FindStringSubmatch(folded)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}
