package normalizers

import "strings"

// ParseName splits a GEDCOM name into first, middle and last parts.
//
// Names in the "Given /Surname/" convention are split on the slashes: the
// first non-empty segment is the given-name portion (first token = first
// name, remaining tokens = middle name) and the second non-empty segment is
// the surname, kept verbatim. Without slashes the name splits on
// whitespace: one token is a bare first name, two tokens are first + last,
// and longer names keep the first and last tokens with everything between
// joined as the middle name.
func ParseName(raw string) (first, middle, last string) {
	if raw == "" {
		return "", "", ""
	}

	if strings.Contains(raw, "/") {
		var segments []string
		for _, part := range strings.Split(raw, "/") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				segments = append(segments, trimmed)
			}
		}
		if len(segments) == 0 {
			return "", "", ""
		}

		if len(segments) >= 2 {
			last = segments[1]
		}
		given := strings.Fields(segments[0])
		if len(given) == 1 {
			return given[0], "", last
		}
		return given[0], strings.Join(given[1:], " "), last
	}

	fields := strings.Fields(raw)
	switch len(fields) {
	case 0:
		return "", "", ""
	case 1:
		return fields[0], "", ""
	case 2:
		return fields[0], "", fields[1]
	default:
		return fields[0], strings.Join(fields[1:len(fields)-1], " "), fields[len(fields)-1]
	}
}
