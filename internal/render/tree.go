// Package render projects a resume document into one of the fixed
// visual layouts. Projection is pure: the same document, template and
// language always produce the same tree, and the document is never
// mutated.
package render

import "cvforge/internal/resume"

// SectionKind tags a rendered section with its semantic role.
type SectionKind string

const (
	SectionContact    SectionKind = "contact"
	SectionPersonal   SectionKind = "personal"
	SectionSummary    SectionKind = "summary"
	SectionExperience SectionKind = "experience"
	SectionEducation  SectionKind = "education"
	SectionSkills     SectionKind = "skills"
	SectionLanguages  SectionKind = "languages"
	SectionCourses    SectionKind = "courses"
	SectionInterests  SectionKind = "interests"
	SectionReferences SectionKind = "references"
)

// Background names the fill of a region. Only the modern sidebar uses
// a fixed dark fill; accent fills take the document accent color.
type Background string

const (
	BackgroundNone   Background = ""
	BackgroundDark   Background = "dark"
	BackgroundAccent Background = "accent"
	BackgroundGray   Background = "gray"
)

// Entry is one rendered line or block inside a section.
type Entry struct {
	Heading    string `json:"heading,omitempty"`
	Subheading string `json:"subheading,omitempty"`
	Dates      string `json:"dates,omitempty"`
	Body       string `json:"body,omitempty"`
	Level      string `json:"level,omitempty"`

	// Marker flags layout treatments such as the creative template's
	// accent-colored timeline nodes or minimal's fixed date gutter.
	Marker string `json:"marker,omitempty"`
}

// Section is a titled group of entries. Sections with no entries are
// never emitted; the projection omits them instead of rendering empty
// headers.
type Section struct {
	Kind    SectionKind `json:"kind"`
	Entries []Entry     `json:"entries"`
}

// Region is a column or band of the page.
type Region struct {
	Name       string     `json:"name"`
	Width      string     `json:"width,omitempty"` // e.g. "fixed", "65%", "1fr"
	Background Background `json:"background,omitempty"`
	PhotoURL   string     `json:"photoUrl,omitempty"`
	PhotoStyle string     `json:"photoStyle,omitempty"` // e.g. "square-grayscale"
	Sections   []Section  `json:"sections"`
}

// Tree is the projected document: the template that shaped it, the
// accent color shared by every view, and the ordered page regions.
type Tree struct {
	Template    resume.Template `json:"template"`
	AccentColor string          `json:"accentColor"`
	Name        string          `json:"name,omitempty"`
	JobTitle    string          `json:"jobTitle,omitempty"`
	Regions     []Region        `json:"regions"`
}

// CoverLetterView is the single fixed cover letter layout. It is not
// template-dependent; only the accent color carries over.
type CoverLetterView struct {
	AccentColor    string `json:"accentColor"`
	SenderName     string `json:"senderName,omitempty"`
	SenderTitle    string `json:"senderTitle,omitempty"`
	ContactLine    string `json:"contactLine,omitempty"`
	RecipientName  string `json:"recipientName,omitempty"`
	RecipientTitle string `json:"recipientTitle,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	CompanyAddress string `json:"companyAddress,omitempty"`
	Date           string `json:"date"`
	Body           string `json:"body"`
	Signature      string `json:"signature,omitempty"`
	AccentFooter   bool   `json:"accentFooter"`
}
