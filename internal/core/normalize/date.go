package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const canonicalDate = "2006-01-02"

// minYear bounds plausible dates of birth; anything earlier is treated as OCR
// noise rather than a real date.
const minYear = 1900

// Numeric fallbacks, tried in order when the lenient parse fails. Ambiguous
// day/month order is always read month-first (US convention).
var numericDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
	regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),
	regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`),
}

// Date converts a free-form date-like string to canonical YYYY-MM-DD form.
// It returns false when the input cannot be parsed into a real calendar date
// with a year in [1900, current year].
func Date(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		if yearInRange(t.Year()) {
			return t.Format(canonicalDate), true
		}
	}

	for _, re := range numericDatePatterns {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		var year, month, day int
		if len(m[1]) == 4 {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}
		if !yearInRange(year) {
			continue
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (Feb 30 -> Mar 2); a real calendar
		// date must round-trip its components.
		if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
			continue
		}
		return t.Format(canonicalDate), true
	}

	return "", false
}

func yearInRange(year int) bool {
	return year >= minYear && year <= time.Now().Year()
}
