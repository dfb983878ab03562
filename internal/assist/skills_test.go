package assist

import (
	"reflect"
	"testing"

	"cvforge/internal/resume"
)

func TestDedupeSkills(t *testing.T) {
	tests := []struct {
		name      string
		existing  []resume.Skill
		suggested []string
		want      []string
	}{
		{
			name:      "case-insensitive match drops duplicate",
			existing:  []resume.Skill{{ID: "s1", Name: "python"}},
			suggested: []string{"Python", "SQL"},
			want:      []string{"SQL"},
		},
		{
			name:      "no overlap keeps all",
			existing:  []resume.Skill{{ID: "s1", Name: "Go"}},
			suggested: []string{"Kubernetes", "Terraform"},
			want:      []string{"Kubernetes", "Terraform"},
		},
		{
			name:      "empty existing",
			suggested: []string{"Go"},
			want:      []string{"Go"},
		},
		{
			name:      "duplicates within suggestions collapse",
			suggested: []string{"Docker", "docker", "Docker "},
			want:      []string{"Docker"},
		},
		{
			name:      "whitespace-insensitive match",
			existing:  []resume.Skill{{ID: "s1", Name: " SQL "}},
			suggested: []string{"SQL", "NoSQL"},
			want:      []string{"NoSQL"},
		},
		{
			name:      "blank suggestions dropped",
			suggested: []string{"", "  ", "Rust"},
			want:      []string{"Rust"},
		},
		{
			name:      "empty suggestions",
			existing:  []resume.Skill{{ID: "s1", Name: "Go"}},
			suggested: nil,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeSkills(tt.existing, tt.suggested)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupeSkills() = %v, want %v", got, tt.want)
			}
		})
	}
}
