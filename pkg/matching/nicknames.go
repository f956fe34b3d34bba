package matching

// commonNicknames maps full given names to widely recognized short forms.
// The table is deliberately small and curated, not inferred; lookups are
// checked in both directions.
var commonNicknames = map[string][]string{
	"william":     {"bill", "billy"},
	"robert":      {"bob", "bobby"},
	"richard":     {"dick", "rick"},
	"james":       {"jim", "jimmy"},
	"joseph":      {"joe", "joey"},
	"michael":     {"mike", "mikey"},
	"christopher": {"chris"},
	"daniel":      {"dan", "danny"},
	"matthew":     {"matt"},
	"andrew":      {"andy"},
	"jonathan":    {"jon"},
	"benjamin":    {"ben", "benny"},
	"nicholas":    {"nick"},
	"alexander":   {"alex"},
	"elizabeth":   {"liz", "beth"},
	"margaret":    {"maggie"},
	"patricia":    {"pat"},
	"jennifer":    {"jen"},
	"stephanie":   {"steph"},
	"catherine":   {"cathy"},
	"peter":       {"pete"},
	"christina":   {"tina"},
}

// isNickname reports whether one lowercased name is a recognized nickname
// of the other.
func isNickname(name1, name2 string) bool {
	for fullName, nicknames := range commonNicknames {
		if name1 == fullName && contains(nicknames, name2) {
			return true
		}
		if name2 == fullName && contains(nicknames, name1) {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
