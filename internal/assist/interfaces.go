// Package assist is the content assist gateway: generative drafting,
// job matching, the resume audit and import parsing. Every call is
// one-shot request/response; failures surface as AppErrors so callers
// can degrade to neutral values instead of blocking the editor.
package assist

import (
	"context"

	"cvforge/internal/resume"
)

// SummaryInput asks for a professional summary draft.
type SummaryInput struct {
	JobTitle          string `json:"jobTitle"`
	ExperienceSummary string `json:"experienceSummary"`
	Language          string `json:"language"`
}

// ExperienceInput asks for a bullet-formatted rewrite of a raw
// experience description.
type ExperienceInput struct {
	JobTitle       string `json:"jobTitle"`
	RawDescription string `json:"rawDescription"`
	Language       string `json:"language"`
}

// SkillsInput asks for skill suggestions for a role.
type SkillsInput struct {
	JobTitle string `json:"jobTitle"`
	Language string `json:"language"`
}

// CoverLetterInput asks for a full cover letter draft from the
// document.
type CoverLetterInput struct {
	Document resume.Document `json:"document"`
	Language string          `json:"language"`
}

// MatchInput asks for job opportunities matching the document.
type MatchInput struct {
	Document resume.Document `json:"document"`
	Language string          `json:"language"`
}

// SearchInput asks for job opportunities matching a free-text query.
type SearchInput struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Language string `json:"language"`
}

// ApplicationLetterInput asks for a short application email body for
// one specific opportunity.
type ApplicationLetterInput struct {
	Job      resume.JobOpportunity `json:"job"`
	Document resume.Document       `json:"document"`
	Language string                `json:"language"`
}

// AuditInput asks for a full review of the document.
type AuditInput struct {
	Document resume.Document `json:"document"`
	Language string          `json:"language"`
}

// ParseInput carries plain text extracted from an uploaded resume.
type ParseInput struct {
	Text string `json:"text"`
}

// Provider is the gateway port. All methods return token usage
// information; callers can ignore it if not needed.
type Provider interface {
	DraftSummary(ctx context.Context, input SummaryInput) (string, *TokenUsage, error)
	EnhanceExperience(ctx context.Context, input ExperienceInput) (string, *TokenUsage, error)
	SuggestSkills(ctx context.Context, input SkillsInput) ([]string, *TokenUsage, error)
	DraftCoverLetter(ctx context.Context, input CoverLetterInput) (string, *TokenUsage, error)
	FindMatchingJobs(ctx context.Context, input MatchInput) ([]resume.JobOpportunity, *TokenUsage, error)
	SearchJobs(ctx context.Context, input SearchInput) ([]resume.JobOpportunity, *TokenUsage, error)
	DraftApplicationLetter(ctx context.Context, input ApplicationLetterInput) (string, *TokenUsage, error)
	AuditResume(ctx context.Context, input AuditInput) (resume.AuditResult, *TokenUsage, error)
	ParseResumeText(ctx context.Context, input ParseInput) (resume.Document, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
