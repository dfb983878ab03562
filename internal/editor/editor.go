// Package editor implements the incremental edit operations over a
// resume document. Every operation returns a new document; the input
// is never mutated, so callers can keep snapshots for auto-save and
// diffing.
package editor

import (
	"fmt"
	"strconv"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
)

// Section binds a repeatable collection of the document to typed
// accessors so that generic operations stay checked against the fixed
// set of section shapes instead of going through untyped maps.
type Section[T any] struct {
	name     string
	items    func(*resume.Document) *[]T
	id       func(*T) *string
	setField func(*T, string, string) bool
}

// Name returns the wire name of the section.
func (s Section[T]) Name() string { return s.name }

var Experiences = Section[resume.Experience]{
	name:  "experience",
	items: func(d *resume.Document) *[]resume.Experience { return &d.Experience },
	id:    func(e *resume.Experience) *string { return &e.ID },
	setField: func(e *resume.Experience, field, value string) bool {
		switch field {
		case "title":
			e.Title = value
		case "company":
			e.Company = value
		case "startDate":
			e.StartDate = value
		case "endDate":
			e.EndDate = value
		case "current":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return false
			}
			e.Current = b
		case "description":
			e.Description = value
		default:
			return false
		}
		return true
	},
}

var Educations = Section[resume.Education]{
	name:  "education",
	items: func(d *resume.Document) *[]resume.Education { return &d.Education },
	id:    func(e *resume.Education) *string { return &e.ID },
	setField: func(e *resume.Education, field, value string) bool {
		switch field {
		case "school":
			e.School = value
		case "degree":
			e.Degree = value
		case "year":
			e.Year = value
		default:
			return false
		}
		return true
	},
}

var Skills = Section[resume.Skill]{
	name:  "skills",
	items: func(d *resume.Document) *[]resume.Skill { return &d.Skills },
	id:    func(s *resume.Skill) *string { return &s.ID },
	setField: func(s *resume.Skill, field, value string) bool {
		switch field {
		case "name":
			s.Name = value
		case "level":
			s.Level = resume.SkillLevel(value)
		default:
			return false
		}
		return true
	},
}

var Languages = Section[resume.Language]{
	name:  "languages",
	items: func(d *resume.Document) *[]resume.Language { return &d.Languages },
	id:    func(l *resume.Language) *string { return &l.ID },
	setField: func(l *resume.Language, field, value string) bool {
		switch field {
		case "language":
			l.Language = value
		case "proficiency":
			l.Proficiency = resume.Proficiency(value)
		default:
			return false
		}
		return true
	},
}

var Courses = Section[resume.Course]{
	name:  "courses",
	items: func(d *resume.Document) *[]resume.Course { return &d.Courses },
	id:    func(c *resume.Course) *string { return &c.ID },
	setField: func(c *resume.Course, field, value string) bool {
		switch field {
		case "name":
			c.Name = value
		case "institution":
			c.Institution = value
		case "year":
			c.Year = value
		default:
			return false
		}
		return true
	},
}

var Interests = Section[resume.Interest]{
	name:  "interests",
	items: func(d *resume.Document) *[]resume.Interest { return &d.Interests },
	id:    func(i *resume.Interest) *string { return &i.ID },
	setField: func(i *resume.Interest, field, value string) bool {
		if field != "name" {
			return false
		}
		i.Name = value
		return true
	},
}

var References = Section[resume.Reference]{
	name:  "references",
	items: func(d *resume.Document) *[]resume.Reference { return &d.References },
	id:    func(r *resume.Reference) *string { return &r.ID },
	setField: func(r *resume.Reference, field, value string) bool {
		switch field {
		case "name":
			r.Name = value
		case "company":
			r.Company = value
		case "phone":
			r.Phone = value
		case "email":
			r.Email = value
		default:
			return false
		}
		return true
	},
}

// AddItem prepends a new item to the named section, so the newest
// entry is always first in iteration order. The caller supplies the
// id; it must be non-empty and unique within the section.
func AddItem[T any](doc resume.Document, sec Section[T], item T) (resume.Document, error) {
	newID := *sec.id(&item)
	if newID == "" {
		return doc, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("new %s item is missing an id", sec.name), nil)
	}

	out := resume.Clone(doc)
	items := sec.items(&out)
	for i := range *items {
		if *sec.id(&(*items)[i]) == newID {
			return doc, errors.NewValidationError(errors.ErrCodeDuplicateItemID,
				fmt.Sprintf("%s item id %q already exists", sec.name, newID), nil)
		}
	}

	*items = append([]T{item}, *items...)
	return out, nil
}

// UpdateItemField replaces exactly one field on the item matching id.
// An unknown id is a no-op and returns the document unchanged; an
// unknown field name is a validation error.
func UpdateItemField[T any](doc resume.Document, sec Section[T], id, field, value string) (resume.Document, error) {
	out := resume.Clone(doc)
	items := sec.items(&out)
	for i := range *items {
		if *sec.id(&(*items)[i]) != id {
			continue
		}
		if !sec.setField(&(*items)[i], field, value) {
			return doc, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown field %q for %s item", field, sec.name), nil)
		}
		return out, nil
	}
	return doc, nil
}

// RemoveItem drops the item matching id. Removing an id that does not
// exist is not an error.
func RemoveItem[T any](doc resume.Document, sec Section[T], id string) resume.Document {
	out := resume.Clone(doc)
	items := sec.items(&out)
	for i := range *items {
		if *sec.id(&(*items)[i]) == id {
			*items = append((*items)[:i:i], (*items)[i+1:]...)
			return out
		}
	}
	return out
}

// SetPersonalField replaces one field of the personal info block.
func SetPersonalField(doc resume.Document, field, value string) (resume.Document, error) {
	out := resume.Clone(doc)
	p := &out.PersonalInfo
	switch field {
	case "fullName":
		p.FullName = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "location":
		p.Location = value
	case "linkedin":
		p.LinkedIn = value
	case "website":
		p.Website = value
	case "summary":
		p.Summary = value
	case "jobTitle":
		p.JobTitle = value
	case "dateOfBirth":
		p.DateOfBirth = value
	case "nationality":
		p.Nationality = value
	case "drivingLicense":
		p.DrivingLicense = value
	case "photoUrl":
		p.PhotoURL = value
	default:
		return doc, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown personal info field %q", field), nil)
	}
	return out, nil
}

// SetCoverLetterField replaces one field of the cover letter block.
func SetCoverLetterField(doc resume.Document, field, value string) (resume.Document, error) {
	out := resume.Clone(doc)
	c := &out.CoverLetter
	switch field {
	case "recipientName":
		c.RecipientName = value
	case "recipientTitle":
		c.RecipientTitle = value
	case "companyName":
		c.CompanyName = value
	case "companyAddress":
		c.CompanyAddress = value
	case "body":
		c.Body = value
	default:
		return doc, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown cover letter field %q", field), nil)
	}
	return out, nil
}

// SetAccentColor replaces the shared accent color.
func SetAccentColor(doc resume.Document, color string) resume.Document {
	out := resume.Clone(doc)
	if color == "" {
		color = resume.DefaultAccentColor
	}
	out.Meta.AccentColor = color
	return out
}

// SetTemplate replaces the active template, normalizing unknown ids.
func SetTemplate(doc resume.Document, t resume.Template) resume.Document {
	out := resume.Clone(doc)
	out.Meta.Template = resume.NormalizeTemplate(t)
	return out
}

// ReplaceJobMatches swaps the transient job match cache wholesale.
// Matches never merge; the latest result set wins.
func ReplaceJobMatches(doc resume.Document, matches []resume.JobOpportunity) resume.Document {
	out := resume.Clone(doc)
	if matches == nil {
		matches = []resume.JobOpportunity{}
	}
	out.JobMatches = matches
	return out
}
