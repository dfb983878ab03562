package assist

import (
	"strings"

	"cvforge/internal/resume"
)

// DedupeSkills drops suggested skill names the document already has,
// comparing case-insensitively. Order of the remaining suggestions is
// preserved; duplicates within the suggestions themselves are also
// collapsed.
func DedupeSkills(existing []resume.Skill, suggested []string) []string {
	seen := make(map[string]bool, len(existing)+len(suggested))
	for _, s := range existing {
		seen[strings.ToLower(strings.TrimSpace(s.Name))] = true
	}

	out := make([]string, 0, len(suggested))
	for _, name := range suggested {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
