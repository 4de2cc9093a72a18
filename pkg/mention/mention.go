package mention

import (
	"regexp"
	"strings"

	"github.com/cuemby/hoconnect/pkg/types"
)

// pattern matches "@" followed by ASCII word characters, Thai script and
// spaces. A span ends at another "@", punctuation or end of text.
var pattern = regexp.MustCompile(`@([\w\x{0E00}-\x{0E7F} ]+)`)

// Extract returns the trimmed candidate names in text, in order of
// appearance. Candidates are not checked against any directory.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name != "" {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// Lookup finds the employee a candidate refers to. A candidate may run on
// past the name ("Somchai please review"), so the longest whole-word prefix
// that equals a display name wins. Matching is exact and case-sensitive;
// among employees sharing a name the first in directory order wins.
func Lookup(candidate string, directory []types.Employee) (types.Employee, bool) {
	if emp, ok := byName(candidate, directory); ok {
		return emp, true
	}

	words := strings.Fields(candidate)
	for n := len(words) - 1; n > 0; n-- {
		if emp, ok := byName(strings.Join(words[:n], " "), directory); ok {
			return emp, true
		}
	}
	return types.Employee{}, false
}

func byName(name string, directory []types.Employee) (types.Employee, bool) {
	for _, emp := range directory {
		if emp.Name == name {
			return emp, true
		}
	}
	return types.Employee{}, false
}

// Resolve returns the employees mentioned in text, in order of first
// mention. Candidates that match nobody are dropped, and an employee
// mentioned twice is returned once.
func Resolve(text string, directory []types.Employee) []types.Employee {
	var resolved []types.Employee
	seen := make(map[string]bool)
	for _, candidate := range Extract(text) {
		emp, ok := Lookup(candidate, directory)
		if !ok || seen[emp.ID] {
			continue
		}
		seen[emp.ID] = true
		resolved = append(resolved, emp)
	}
	return resolved
}

// Recipients is Resolve without the acting user, who is never notified of
// their own mention
func Recipients(text string, directory []types.Employee, actorID string) []types.Employee {
	var out []types.Employee
	for _, emp := range Resolve(text, directory) {
		if emp.ID != actorID {
			out = append(out, emp)
		}
	}
	return out
}
