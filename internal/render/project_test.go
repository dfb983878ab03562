package render

import (
	"reflect"
	"testing"
	"time"

	"cvforge/internal/resume"
)

func sampleDocument() resume.Document {
	doc := resume.NewDocument()
	doc.PersonalInfo.FullName = "Maria Santos"
	doc.PersonalInfo.JobTitle = "Platform Engineer"
	doc.PersonalInfo.Email = "maria@example.com"
	doc.PersonalInfo.Summary = "Platform engineer with a decade of infrastructure work."
	doc.Experience = []resume.Experience{
		{ID: "e1", Title: "Platform Engineer", Company: "Acme", StartDate: "2021-03-01", Current: true},
		{ID: "e2", Title: "SRE", Company: "Initech", StartDate: "2018-06-01", EndDate: "2021-02-01"},
	}
	doc.Education = []resume.Education{{ID: "d1", Degree: "BSc CS", School: "TU Delft", Year: "2018"}}
	doc.Skills = []resume.Skill{{ID: "s1", Name: "Go", Level: resume.SkillExpert}}
	doc.Languages = []resume.Language{{ID: "l1", Language: "Dutch", Proficiency: resume.ProficiencyNative}}
	return doc
}

func findSection(t *testing.T, tree Tree, kind SectionKind) Section {
	t.Helper()
	for _, r := range tree.Regions {
		for _, s := range r.Sections {
			if s.Kind == kind {
				return s
			}
		}
	}
	t.Fatalf("Section %q not found in tree", kind)
	return Section{}
}

func TestProjectAllTemplates(t *testing.T) {
	doc := sampleDocument()

	for _, template := range resume.Templates {
		t.Run(string(template), func(t *testing.T) {
			d := doc
			d.Meta.Template = template
			tree := Project(d, "en")

			if tree.Template != template {
				t.Errorf("Tree template = %q, want %q", tree.Template, template)
			}
			if tree.AccentColor != resume.DefaultAccentColor {
				t.Errorf("Accent color = %q, want %q", tree.AccentColor, resume.DefaultAccentColor)
			}
			if len(tree.Regions) < 2 {
				t.Fatalf("Expected at least 2 regions, got %d", len(tree.Regions))
			}

			exp := findSection(t, tree, SectionExperience)
			if len(exp.Entries) != 2 {
				t.Fatalf("Expected 2 experience entries, got %d", len(exp.Entries))
			}
			if exp.Entries[0].Dates != "March 2021 - Present" {
				t.Errorf("Ongoing entry dates = %q", exp.Entries[0].Dates)
			}
		})
	}
}

func TestProjectUnknownTemplateEqualsModern(t *testing.T) {
	doc := sampleDocument()
	doc.Meta.Template = resume.Template("holographic")
	unknown := Project(doc, "en")

	doc.Meta.Template = resume.TemplateModern
	modern := Project(doc, "en")

	if !reflect.DeepEqual(unknown, modern) {
		t.Error("Unknown template should project identically to modern")
	}
}

func TestProjectOmitsEmptySections(t *testing.T) {
	doc := resume.NewDocument()
	doc.PersonalInfo.FullName = "Empty Resume"
	tree := Project(doc, "en")

	for _, r := range tree.Regions {
		for _, s := range r.Sections {
			if len(s.Entries) == 0 {
				t.Errorf("Region %q contains empty section %q", r.Name, s.Kind)
			}
		}
	}
}

func TestProjectLocalizedDates(t *testing.T) {
	doc := sampleDocument()
	tree := Project(doc, "nl")

	exp := findSection(t, tree, SectionExperience)
	if exp.Entries[0].Dates != "maart 2021 - Heden" {
		t.Errorf("Dutch ongoing entry = %q, want %q", exp.Entries[0].Dates, "maart 2021 - Heden")
	}
	if exp.Entries[1].Dates != "juni 2018 - februari 2021" {
		t.Errorf("Dutch closed entry = %q", exp.Entries[1].Dates)
	}
}

func TestProjectDoesNotMutateDocument(t *testing.T) {
	doc := sampleDocument()
	snapshot := resume.Clone(doc)

	Project(doc, "en")
	Project(doc, "nl")

	if !reflect.DeepEqual(doc, snapshot) {
		t.Error("Projection mutated the document")
	}
}

func TestModernLayout(t *testing.T) {
	doc := sampleDocument()
	doc.Meta.Template = resume.TemplateModern
	tree := Project(doc, "en")

	if len(tree.Regions) != 2 {
		t.Fatalf("Modern should have 2 regions, got %d", len(tree.Regions))
	}
	sidebar := tree.Regions[0]
	if sidebar.Background != BackgroundDark {
		t.Errorf("Modern sidebar background = %q, want dark", sidebar.Background)
	}
	if sidebar.Width != "fixed" {
		t.Errorf("Modern sidebar width = %q, want fixed", sidebar.Width)
	}
}

func TestProfessionalLayout(t *testing.T) {
	doc := sampleDocument()
	doc.Meta.Template = resume.TemplateProfessional
	tree := Project(doc, "en")

	if len(tree.Regions) != 3 {
		t.Fatalf("Professional should have 3 regions, got %d", len(tree.Regions))
	}
	if tree.Regions[1].Width != "65%" || tree.Regions[2].Width != "35%" {
		t.Errorf("Professional column widths = %q / %q, want 65%% / 35%%",
			tree.Regions[1].Width, tree.Regions[2].Width)
	}
	if tree.Regions[2].Background != BackgroundGray {
		t.Errorf("Professional sidebar background = %q, want gray", tree.Regions[2].Background)
	}
}

func TestCreativeLayout(t *testing.T) {
	doc := sampleDocument()
	doc.Meta.Template = resume.TemplateCreative
	doc.PersonalInfo.PhotoURL = "data:image/png;base64,AAAA"
	tree := Project(doc, "en")

	if tree.Regions[0].Background != BackgroundAccent {
		t.Errorf("Creative header background = %q, want accent", tree.Regions[0].Background)
	}
	if tree.Regions[1].PhotoStyle != "square-grayscale" {
		t.Errorf("Creative photo style = %q", tree.Regions[1].PhotoStyle)
	}
	exp := findSection(t, tree, SectionExperience)
	if exp.Entries[0].Marker != "timeline-node" {
		t.Errorf("Creative experience marker = %q", exp.Entries[0].Marker)
	}
}

func TestMinimalLayout(t *testing.T) {
	doc := sampleDocument()
	doc.Meta.Template = resume.TemplateMinimal
	tree := Project(doc, "en")

	for _, r := range tree.Regions {
		if r.Background != BackgroundNone {
			t.Errorf("Minimal region %q has background %q, want none", r.Name, r.Background)
		}
	}
	exp := findSection(t, tree, SectionExperience)
	if exp.Entries[0].Marker != "date-gutter" {
		t.Errorf("Minimal experience marker = %q", exp.Entries[0].Marker)
	}
}

func TestProjectCoverLetter(t *testing.T) {
	now := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

	doc := sampleDocument()
	doc.CoverLetter = resume.CoverLetter{
		RecipientName: "J. Smit",
		CompanyName:   "Acme",
		Body:          "Dear J. Smit,\n\nI am writing to apply.",
	}

	view := ProjectCoverLetter(doc, "en", now)
	if view.Body != doc.CoverLetter.Body {
		t.Errorf("Body = %q", view.Body)
	}
	if view.Date != "January 15, 2026" {
		t.Errorf("Date = %q", view.Date)
	}
	if view.SenderName != "Maria Santos" || view.Signature != "Maria Santos" {
		t.Errorf("Sender/signature = %q / %q", view.SenderName, view.Signature)
	}
	if !view.AccentFooter {
		t.Error("Cover letter should carry the accent footer")
	}
}

func TestProjectCoverLetterPlaceholder(t *testing.T) {
	doc := resume.NewDocument()
	view := ProjectCoverLetter(doc, "en", time.Now())
	if view.Body != CoverLetterPlaceholder {
		t.Errorf("Empty body should render the placeholder, got %q", view.Body)
	}
}

func BenchmarkProject(b *testing.B) {
	doc := sampleDocument()
	for b.Loop() {
		Project(doc, "en")
	}
}
