package resume

import "github.com/google/uuid"

// DefaultAccentColor is applied to new documents and healed into
// documents persisted without one.
const DefaultAccentColor = "#2563eb"

// NewDocument returns the default empty document. Construction never
// fails; completeness is advisory, not enforced.
func NewDocument() Document {
	return Document{
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []Skill{},
		Languages:  []Language{},
		Courses:    []Course{},
		Interests:  []Interest{},
		References: []Reference{},
		JobMatches: []JobOpportunity{},
		Meta: Meta{
			AccentColor: DefaultAccentColor,
			Template:    TemplateModern,
		},
	}
}

// NewItemID generates a fresh opaque item identifier. Ids are never
// reused and never derived from content.
func NewItemID() string {
	return uuid.NewString()
}

// Heal fills missing top-level keys of a loaded document with their
// defaults. Loading is shape repair, not schema validation: a partial
// or legacy payload is accepted and completed, never rejected.
func Heal(doc Document) Document {
	if doc.Experience == nil {
		doc.Experience = []Experience{}
	}
	if doc.Education == nil {
		doc.Education = []Education{}
	}
	if doc.Skills == nil {
		doc.Skills = []Skill{}
	}
	if doc.Languages == nil {
		doc.Languages = []Language{}
	}
	if doc.Courses == nil {
		doc.Courses = []Course{}
	}
	if doc.Interests == nil {
		doc.Interests = []Interest{}
	}
	if doc.References == nil {
		doc.References = []Reference{}
	}
	if doc.JobMatches == nil {
		doc.JobMatches = []JobOpportunity{}
	}
	if doc.Meta.AccentColor == "" {
		doc.Meta.AccentColor = DefaultAccentColor
	}
	if doc.Meta.Template == "" {
		doc.Meta.Template = TemplateModern
	}
	return doc
}

// Clone deep-copies a document so callers can hand out snapshots
// without aliasing the section slices.
func Clone(doc Document) Document {
	out := doc
	out.Experience = append([]Experience{}, doc.Experience...)
	out.Education = append([]Education{}, doc.Education...)
	out.Skills = append([]Skill{}, doc.Skills...)
	out.Languages = append([]Language{}, doc.Languages...)
	out.Courses = append([]Course{}, doc.Courses...)
	out.Interests = append([]Interest{}, doc.Interests...)
	out.References = append([]Reference{}, doc.References...)
	out.JobMatches = append([]JobOpportunity{}, doc.JobMatches...)
	return out
}

// HasPriorWork reports whether the personal info block differs from
// the default by value. Used to word the call to action after load.
func HasPriorWork(doc Document) bool {
	return doc.PersonalInfo != PersonalInfo{}
}
