package render

import (
	"strings"
	"time"

	"cvforge/internal/resume"
)

// CoverLetterPlaceholder is shown when the cover letter body is empty.
// This is the one view that renders placeholder text instead of being
// omitted.
const CoverLetterPlaceholder = "Your cover letter will appear here. Use the editor to draft one."

// Project maps a document to the layout selected by its presentation
// metadata. Unknown template ids render as modern; projection never
// fails.
func Project(doc resume.Document, lang string) Tree {
	template := resume.NormalizeTemplate(doc.Meta.Template)

	tree := Tree{
		Template:    template,
		AccentColor: doc.Meta.AccentColor,
		Name:        doc.PersonalInfo.FullName,
		JobTitle:    doc.PersonalInfo.JobTitle,
	}

	switch template {
	case resume.TemplateProfessional:
		tree.Regions = professionalRegions(doc, lang)
	case resume.TemplateElegant:
		tree.Regions = elegantRegions(doc, lang)
	case resume.TemplateCreative:
		tree.Regions = creativeRegions(doc, lang)
	case resume.TemplateMinimal:
		tree.Regions = minimalRegions(doc, lang)
	default:
		tree.Regions = modernRegions(doc, lang)
	}
	return tree
}

// modern: fixed-width dark left sidebar with contact, personal data,
// skills and languages; main column with summary, experience and
// education. The sidebar fill is a fixed dark color; the accent color
// only decorates markers and the job title.
func modernRegions(doc resume.Document, lang string) []Region {
	sidebar := Region{
		Name:       "sidebar",
		Width:      "fixed",
		Background: BackgroundDark,
		PhotoURL:   doc.PersonalInfo.PhotoURL,
		Sections: compactSections(
			contactSection(doc),
			personalSection(doc),
			skillsSection(doc),
			languagesSection(doc),
			interestsSection(doc),
		),
	}
	main := Region{
		Name:  "main",
		Width: "1fr",
		Sections: compactSections(
			summarySection(doc),
			experienceSection(doc, lang, "accent-border"),
			educationSection(doc),
			coursesSection(doc),
			referencesSection(doc),
		),
	}
	return []Region{sidebar, main}
}

// professional: full-width header with an accent top border, then a
// 65% main column and a 35% light-gray sidebar.
func professionalRegions(doc resume.Document, lang string) []Region {
	header := Region{
		Name:       "header",
		Width:      "100%",
		Background: BackgroundAccent, // rendered as a top border, not a fill
		PhotoURL:   doc.PersonalInfo.PhotoURL,
		Sections:   compactSections(contactSection(doc)),
	}
	main := Region{
		Name:  "main",
		Width: "65%",
		Sections: compactSections(
			summarySection(doc),
			experienceSection(doc, lang, ""),
			educationSection(doc),
		),
	}
	sidebar := Region{
		Name:       "sidebar",
		Width:      "35%",
		Background: BackgroundGray,
		Sections: compactSections(
			personalSection(doc),
			skillsSection(doc),
			languagesSection(doc),
			coursesSection(doc),
			interestsSection(doc),
			referencesSection(doc),
		),
	}
	return []Region{header, main, sidebar}
}

// elegant: single centered column, serif-oriented; experience entries
// carry a two-column date/content treatment and education plus skills
// land in a two-column footer grid.
func elegantRegions(doc resume.Document, lang string) []Region {
	header := Region{
		Name:     "header",
		Width:    "100%",
		Sections: compactSections(contactSection(doc)),
	}
	body := Region{
		Name:  "body",
		Width: "100%",
		Sections: compactSections(
			summarySection(doc),
			experienceSection(doc, lang, "date-grid"),
			languagesSection(doc),
			coursesSection(doc),
			interestsSection(doc),
			referencesSection(doc),
		),
	}
	footer := Region{
		Name:  "footer",
		Width: "2-col-grid",
		Sections: compactSections(
			educationSection(doc),
			skillsSection(doc),
		),
	}
	return []Region{header, body, footer}
}

// creative: accent full-bleed header, narrow left column with a
// square grayscale photo, wide right column with the experience
// timeline.
func creativeRegions(doc resume.Document, lang string) []Region {
	header := Region{
		Name:       "header",
		Width:      "100%",
		Background: BackgroundAccent,
		Sections:   compactSections(contactSection(doc)),
	}
	left := Region{
		Name:       "left",
		Width:      "1fr",
		PhotoURL:   doc.PersonalInfo.PhotoURL,
		PhotoStyle: "square-grayscale",
		Sections: compactSections(
			personalSection(doc),
			skillsSection(doc),
			languagesSection(doc),
			interestsSection(doc),
		),
	}
	right := Region{
		Name:  "right",
		Width: "2fr",
		Sections: compactSections(
			summarySection(doc),
			experienceSection(doc, lang, "timeline-node"),
			educationSection(doc),
			coursesSection(doc),
			referencesSection(doc),
		),
	}
	return []Region{header, left, right}
}

// minimal: single column, no fills, thin rule under the header;
// experience dates sit in a fixed-width left gutter and education
// plus skills share a two-column footer grid.
func minimalRegions(doc resume.Document, lang string) []Region {
	header := Region{
		Name:     "header",
		Width:    "100%",
		Sections: compactSections(contactSection(doc)),
	}
	body := Region{
		Name:  "body",
		Width: "100%",
		Sections: compactSections(
			summarySection(doc),
			experienceSection(doc, lang, "date-gutter"),
			languagesSection(doc),
			coursesSection(doc),
			interestsSection(doc),
			referencesSection(doc),
		),
	}
	footer := Region{
		Name:  "footer",
		Width: "2-col-grid",
		Sections: compactSections(
			educationSection(doc),
			skillsSection(doc),
		),
	}
	return []Region{header, body, footer}
}

// compactSections drops empty sections so no layout renders an empty
// header or placeholder text.
func compactSections(sections ...Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if len(s.Entries) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func contactSection(doc resume.Document) Section {
	p := doc.PersonalInfo
	var entries []Entry
	for _, v := range []struct{ label, value string }{
		{"email", p.Email},
		{"phone", p.Phone},
		{"location", p.Location},
		{"linkedin", p.LinkedIn},
		{"website", p.Website},
	} {
		if v.value != "" {
			entries = append(entries, Entry{Heading: v.label, Body: v.value})
		}
	}
	return Section{Kind: SectionContact, Entries: entries}
}

func personalSection(doc resume.Document) Section {
	p := doc.PersonalInfo
	var entries []Entry
	for _, v := range []struct{ label, value string }{
		{"dateOfBirth", p.DateOfBirth},
		{"nationality", p.Nationality},
		{"drivingLicense", p.DrivingLicense},
	} {
		if v.value != "" {
			entries = append(entries, Entry{Heading: v.label, Body: v.value})
		}
	}
	return Section{Kind: SectionPersonal, Entries: entries}
}

func summarySection(doc resume.Document) Section {
	s := Section{Kind: SectionSummary}
	if strings.TrimSpace(doc.PersonalInfo.Summary) != "" {
		s.Entries = []Entry{{Body: doc.PersonalInfo.Summary}}
	}
	return s
}

func experienceSection(doc resume.Document, lang, marker string) Section {
	s := Section{Kind: SectionExperience}
	for _, e := range doc.Experience {
		s.Entries = append(s.Entries, Entry{
			Heading:    e.Title,
			Subheading: e.Company,
			Dates:      FormatDateRange(e.StartDate, e.EndDate, e.Current, lang),
			Body:       e.Description,
			Marker:     marker,
		})
	}
	return s
}

func educationSection(doc resume.Document) Section {
	s := Section{Kind: SectionEducation}
	for _, e := range doc.Education {
		s.Entries = append(s.Entries, Entry{
			Heading:    e.Degree,
			Subheading: e.School,
			Dates:      e.Year,
		})
	}
	return s
}

func skillsSection(doc resume.Document) Section {
	s := Section{Kind: SectionSkills}
	for _, sk := range doc.Skills {
		s.Entries = append(s.Entries, Entry{
			Heading: sk.Name,
			Level:   string(sk.Level),
		})
	}
	return s
}

func languagesSection(doc resume.Document) Section {
	s := Section{Kind: SectionLanguages}
	for _, l := range doc.Languages {
		s.Entries = append(s.Entries, Entry{
			Heading: l.Language,
			Level:   string(l.Proficiency),
		})
	}
	return s
}

func coursesSection(doc resume.Document) Section {
	s := Section{Kind: SectionCourses}
	for _, c := range doc.Courses {
		s.Entries = append(s.Entries, Entry{
			Heading:    c.Name,
			Subheading: c.Institution,
			Dates:      c.Year,
		})
	}
	return s
}

func interestsSection(doc resume.Document) Section {
	s := Section{Kind: SectionInterests}
	for _, i := range doc.Interests {
		s.Entries = append(s.Entries, Entry{Heading: i.Name})
	}
	return s
}

func referencesSection(doc resume.Document) Section {
	s := Section{Kind: SectionReferences}
	for _, r := range doc.References {
		body := r.Phone
		if r.Email != "" {
			if body != "" {
				body += " · "
			}
			body += r.Email
		}
		s.Entries = append(s.Entries, Entry{
			Heading:    r.Name,
			Subheading: r.Company,
			Body:       body,
		})
	}
	return s
}

// ProjectCoverLetter renders the fixed cover letter layout. The body
// falls back to a placeholder when empty; the current date is taken
// from the caller so rendering stays reproducible.
func ProjectCoverLetter(doc resume.Document, lang string, now time.Time) CoverLetterView {
	body := doc.CoverLetter.Body
	if strings.TrimSpace(body) == "" {
		body = CoverLetterPlaceholder
	}

	contact := make([]string, 0, 3)
	for _, v := range []string{doc.PersonalInfo.Email, doc.PersonalInfo.Phone, doc.PersonalInfo.Location} {
		if v != "" {
			contact = append(contact, v)
		}
	}

	return CoverLetterView{
		AccentColor:    doc.Meta.AccentColor,
		SenderName:     doc.PersonalInfo.FullName,
		SenderTitle:    doc.PersonalInfo.JobTitle,
		ContactLine:    strings.Join(contact, " · "),
		RecipientName:  doc.CoverLetter.RecipientName,
		RecipientTitle: doc.CoverLetter.RecipientTitle,
		CompanyName:    doc.CoverLetter.CompanyName,
		CompanyAddress: doc.CoverLetter.CompanyAddress,
		Date:           FormatCurrentDate(now, lang),
		Body:           body,
		Signature:      doc.PersonalInfo.FullName,
		AccentFooter:   true,
	}
}
