package editor

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"cvforge/internal/resume"
)

func TestAddItemPrepends(t *testing.T) {
	doc := resume.NewDocument()

	doc, err := AddItem(doc, Experiences, resume.Experience{ID: "e1", Title: "First"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	doc, err = AddItem(doc, Experiences, resume.Experience{ID: "e2", Title: "Second"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(doc.Experience) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(doc.Experience))
	}
	if doc.Experience[0].ID != "e2" {
		t.Errorf("Newest item should be first, got %q", doc.Experience[0].ID)
	}
}

func TestAddItemRejectsBadIDs(t *testing.T) {
	doc := resume.NewDocument()
	doc, _ = AddItem(doc, Skills, resume.Skill{ID: "s1", Name: "Go"})

	if _, err := AddItem(doc, Skills, resume.Skill{ID: "", Name: "SQL"}); err == nil {
		t.Error("Expected error for empty id")
	}
	if _, err := AddItem(doc, Skills, resume.Skill{ID: "s1", Name: "SQL"}); err == nil {
		t.Error("Expected error for duplicate id")
	}
}

func TestAddItemDoesNotMutateInput(t *testing.T) {
	doc := resume.NewDocument()
	out, err := AddItem(doc, Educations, resume.Education{ID: "d1", School: "MIT"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if len(doc.Education) != 0 {
		t.Error("Input document was mutated")
	}
	if len(out.Education) != 1 {
		t.Error("Output document missing new item")
	}
}

func TestUpdateItemField(t *testing.T) {
	doc := resume.NewDocument()
	doc, _ = AddItem(doc, Experiences, resume.Experience{ID: "e1", Title: "Engineer"})

	tests := []struct {
		name      string
		id        string
		field     string
		value     string
		expectErr bool
		check     func(resume.Document) bool
	}{
		{
			name: "update title", id: "e1", field: "title", value: "Staff Engineer",
			check: func(d resume.Document) bool { return d.Experience[0].Title == "Staff Engineer" },
		},
		{
			name: "update current flag", id: "e1", field: "current", value: "true",
			check: func(d resume.Document) bool { return d.Experience[0].Current },
		},
		{
			name: "unknown id is a no-op", id: "missing", field: "title", value: "X",
			check: func(d resume.Document) bool { return d.Experience[0].Title == "Engineer" },
		},
		{
			name: "unknown field is an error", id: "e1", field: "salary", value: "1",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdateItemField(doc, Experiences, tt.id, tt.field, tt.value)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !tt.check(got) {
				t.Errorf("Unexpected document state: %+v", got.Experience)
			}
		})
	}
}

func TestUpdateItemFieldNoOpEqualsInput(t *testing.T) {
	doc := resume.NewDocument()
	doc, _ = AddItem(doc, Languages, resume.Language{ID: "l1", Language: "Dutch"})

	got, err := UpdateItemField(doc, Languages, "absent", "language", "Spanish")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("No-op update changed the document:\n got %+v\nwant %+v", got, doc)
	}
}

func TestAddRemoveInverse(t *testing.T) {
	doc := resume.NewDocument()
	doc, _ = AddItem(doc, Courses, resume.Course{ID: "c1", Name: "Algorithms"})

	withNew, err := AddItem(doc, Courses, resume.Course{ID: "c2", Name: "Databases"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	restored := RemoveItem(withNew, Courses, "c2")

	if !reflect.DeepEqual(restored, doc) {
		t.Errorf("add then remove did not restore the collection:\n got %+v\nwant %+v", restored.Courses, doc.Courses)
	}
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	doc := resume.NewDocument()
	doc, _ = AddItem(doc, Interests, resume.Interest{ID: "i1", Name: "Chess"})

	got := RemoveItem(doc, Interests, "nope")
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("Removing an absent id changed the document")
	}
}

func TestScalarFieldEditors(t *testing.T) {
	doc := resume.NewDocument()

	doc, err := SetPersonalField(doc, "fullName", "Ada Lovelace")
	if err != nil {
		t.Fatalf("SetPersonalField failed: %v", err)
	}
	if doc.PersonalInfo.FullName != "Ada Lovelace" {
		t.Errorf("fullName not set: %q", doc.PersonalInfo.FullName)
	}

	if _, err := SetPersonalField(doc, "shoeSize", "42"); err == nil {
		t.Error("Expected error for unknown personal field")
	}

	doc, err = SetCoverLetterField(doc, "body", "Dear hiring team")
	if err != nil {
		t.Fatalf("SetCoverLetterField failed: %v", err)
	}
	if doc.CoverLetter.Body != "Dear hiring team" {
		t.Errorf("body not set: %q", doc.CoverLetter.Body)
	}

	doc = SetTemplate(doc, resume.Template("bogus"))
	if doc.Meta.Template != resume.TemplateModern {
		t.Errorf("Unknown template should normalize to modern, got %q", doc.Meta.Template)
	}

	doc = SetAccentColor(doc, "#10b981")
	if doc.Meta.AccentColor != "#10b981" {
		t.Errorf("Accent color not set: %q", doc.Meta.AccentColor)
	}
}

func TestAttachPhoto(t *testing.T) {
	doc := resume.NewDocument()

	small := bytes.Repeat([]byte{0x89}, 128)
	got, err := AttachPhoto(doc, small, "image/png")
	if err != nil {
		t.Fatalf("AttachPhoto failed: %v", err)
	}
	if !strings.HasPrefix(got.PersonalInfo.PhotoURL, "data:image/png;base64,") {
		t.Errorf("Photo URL is not a data URI: %q", got.PersonalInfo.PhotoURL[:32])
	}

	huge := make([]byte, MaxPhotoBytes+1)
	unchanged, err := AttachPhoto(doc, huge, "image/jpeg")
	if err == nil {
		t.Fatal("Expected error for oversized photo")
	}
	if !reflect.DeepEqual(unchanged, doc) {
		t.Error("Oversized upload modified the document")
	}
}

func TestReplaceJobMatchesWholesale(t *testing.T) {
	doc := resume.NewDocument()
	doc = ReplaceJobMatches(doc, []resume.JobOpportunity{{ID: "j1", Title: "Backend Engineer"}})
	doc = ReplaceJobMatches(doc, []resume.JobOpportunity{{ID: "j2", Title: "SRE"}})

	if len(doc.JobMatches) != 1 || doc.JobMatches[0].ID != "j2" {
		t.Errorf("Job matches were merged instead of replaced: %+v", doc.JobMatches)
	}

	doc = ReplaceJobMatches(doc, nil)
	if doc.JobMatches == nil || len(doc.JobMatches) != 0 {
		t.Errorf("nil replacement should yield an empty cache, got %+v", doc.JobMatches)
	}
}
