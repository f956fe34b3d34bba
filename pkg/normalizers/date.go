package normalizers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date patterns are tried in order and anchor at the start of the value, so
// trailing text is tolerated but qualifier prefixes like "ABT 1900" are not.
var (
	dayMonthYearPattern = regexp.MustCompile(`^(\d{1,2})\s+(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\s+(\d{4})`)
	yearOnlyPattern     = regexp.MustCompile(`^(\d{4})`)
	slashDatePattern    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
)

var monthsByAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseDate parses a GEDCOM date value into a UTC midnight date. Supported
// forms, tried in order: "15 MAR 1980", a bare "1980" (taken as January 1,
// an explicit approximation), and "03/15/1980". Anything else, including
// qualifier-prefixed dates, returns nil.
func ParseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	upper := strings.ToUpper(raw)

	if m := dayMonthYearPattern.FindStringSubmatch(upper); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, monthsByAbbrev[m[2]], day)
	}

	if m := yearOnlyPattern.FindStringSubmatch(upper); m != nil {
		year, _ := strconv.Atoi(m[1])
		return validDate(year, time.January, 1)
	}

	if m := slashDatePattern.FindStringSubmatch(upper); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, time.Month(month), day)
	}

	return nil
}

// validDate builds the date and rejects values that time.Date would silently
// normalize, such as month 13 or day 32.
func validDate(year int, month time.Month, day int) *time.Time {
	if year < 1 {
		return nil
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return nil
	}
	return &d
}
