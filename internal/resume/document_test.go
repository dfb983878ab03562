package resume

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument()

	if doc.Meta.Template != TemplateModern {
		t.Errorf("Expected default template %q, got %q", TemplateModern, doc.Meta.Template)
	}
	if doc.Meta.AccentColor != DefaultAccentColor {
		t.Errorf("Expected default accent color %q, got %q", DefaultAccentColor, doc.Meta.AccentColor)
	}
	if doc.Experience == nil || len(doc.Experience) != 0 {
		t.Errorf("Expected empty experience slice, got %v", doc.Experience)
	}
	if HasPriorWork(doc) {
		t.Error("Default document should not report prior work")
	}
}

func TestHealFillsMissingKeys(t *testing.T) {
	// Simulate a legacy payload that predates several sections.
	var doc Document
	if err := json.Unmarshal([]byte(`{"personalInfo":{"fullName":"Ada"}}`), &doc); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}

	healed := Heal(doc)

	if healed.PersonalInfo.FullName != "Ada" {
		t.Errorf("Heal dropped a populated field: %q", healed.PersonalInfo.FullName)
	}
	if healed.Experience == nil {
		t.Error("Heal left experience nil")
	}
	if healed.Courses == nil {
		t.Error("Heal left courses nil")
	}
	if healed.JobMatches == nil {
		t.Error("Heal left jobMatches nil")
	}
	if healed.Meta.Template != TemplateModern {
		t.Errorf("Heal did not default template, got %q", healed.Meta.Template)
	}
	if healed.Meta.AccentColor != DefaultAccentColor {
		t.Errorf("Heal did not default accent color, got %q", healed.Meta.AccentColor)
	}
}

func TestHealPreservesPopulatedDocument(t *testing.T) {
	doc := NewDocument()
	doc.Skills = []Skill{{ID: "s1", Name: "Go", Level: SkillExpert}}
	doc.Meta.AccentColor = "#ff0000"

	healed := Heal(doc)

	if !reflect.DeepEqual(healed, doc) {
		t.Errorf("Heal changed an already complete document:\n got %+v\nwant %+v", healed, doc)
	}
}

func TestRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.PersonalInfo.FullName = "Ada Lovelace"
	doc.Experience = []Experience{{
		ID: "e1", Title: "Engineer", Company: "Acme",
		StartDate: "2020-01-01", Current: true,
	}}
	doc.Skills = []Skill{{ID: "s1", Name: "Go", Level: SkillMaster}}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Document
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(Heal(got), doc) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestNormalizeTemplate(t *testing.T) {
	tests := []struct {
		name     string
		in       Template
		expected Template
	}{
		{"known value passes through", TemplateCreative, TemplateCreative},
		{"minimal passes through", TemplateMinimal, TemplateMinimal},
		{"unknown falls back to modern", Template("neon"), TemplateModern},
		{"empty falls back to modern", Template(""), TemplateModern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTemplate(tt.in); got != tt.expected {
				t.Errorf("NormalizeTemplate(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestNewItemIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewItemID()
		if id == "" {
			t.Fatal("NewItemID returned empty id")
		}
		if seen[id] {
			t.Fatalf("NewItemID returned duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	doc := NewDocument()
	doc.Skills = []Skill{{ID: "s1", Name: "Go", Level: SkillExpert}}

	cp := Clone(doc)
	cp.Skills[0].Name = "Rust"

	if doc.Skills[0].Name != "Go" {
		t.Error("Clone aliased the skills slice")
	}
}
