// Package score computes the advisory completeness score of a resume
// document. The score is a fixed additive point budget; it carries no
// state and is recomputed on every read.
package score

import "cvforge/internal/resume"

// Point budget. The bonuses plus the base sum to exactly 100.
const (
	basePoints        = 10
	photoPoints       = 10
	summaryPoints     = 15
	experiencePoints  = 20
	educationPoints   = 15
	skillsPoints      = 15
	languagesPoints   = 10
	coverLetterPoints = 5

	minSummaryLen     = 21 // summary counts above 20 characters
	minCoverLetterLen = 51 // cover letter body counts above 50 characters
	minSkillCount     = 3
)

// Report itemizes which bonuses a document earned. Every bonus is
// all-or-nothing; there is no partial credit.
type Report struct {
	Total          int  `json:"total"`
	HasPhoto       bool `json:"hasPhoto"`
	HasSummary     bool `json:"hasSummary"`
	HasExperience  bool `json:"hasExperience"`
	HasEducation   bool `json:"hasEducation"`
	HasSkills      bool `json:"hasSkills"`
	HasLanguages   bool `json:"hasLanguages"`
	HasCoverLetter bool `json:"hasCoverLetter"`
}

// Score returns the completeness score of a document in [0, 100].
// Pure: the document is read, never mutated, and equal documents
// always score equally.
func Score(doc resume.Document) int {
	return Breakdown(doc).Total
}

// Breakdown computes the full report for a document.
func Breakdown(doc resume.Document) Report {
	r := Report{
		HasPhoto:       doc.PersonalInfo.PhotoURL != "",
		HasSummary:     len(doc.PersonalInfo.Summary) >= minSummaryLen,
		HasExperience:  len(doc.Experience) > 0,
		HasEducation:   len(doc.Education) > 0,
		HasSkills:      len(doc.Skills) >= minSkillCount,
		HasLanguages:   len(doc.Languages) > 0,
		HasCoverLetter: len(doc.CoverLetter.Body) >= minCoverLetterLen,
	}

	total := basePoints
	if r.HasPhoto {
		total += photoPoints
	}
	if r.HasSummary {
		total += summaryPoints
	}
	if r.HasExperience {
		total += experiencePoints
	}
	if r.HasEducation {
		total += educationPoints
	}
	if r.HasSkills {
		total += skillsPoints
	}
	if r.HasLanguages {
		total += languagesPoints
	}
	if r.HasCoverLetter {
		total += coverLetterPoints
	}

	// The budget already tops out at 100; the clamp guards against
	// future budget edits overshooting.
	r.Total = min(total, 100)
	return r
}
