package normalize

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// excel serial dates count days from 1899-12-30; some sources export
// spreadsheets as-is
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate turns the date strings the crawlers emit into a UTC date.
// Handles RFC3339, common day formats, a bare year, and excel serials.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), true
		}
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case n >= 1900 && n <= 2100:
			return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC), true
		case n > 20000 && n < 80000:
			return excelEpoch.AddDate(0, 0, int(n)), true
		}
	}

	return time.Time{}, false
}
