package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cvforge/internal/app"
	"cvforge/internal/assist"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/observability"
	"cvforge/internal/resume"
	"cvforge/internal/score"
)

// fakeProvider serves canned assist responses; fail switches every
// call to an error so fallback paths can be exercised.
type fakeProvider struct {
	fail   bool
	skills []string
	jobs   []resume.JobOpportunity
	parsed resume.Document
}

func (f *fakeProvider) err() error {
	if f.fail {
		return errors.NewAIError(errors.ErrCodeAIServiceFailed, "provider down", nil)
	}
	return nil
}

func (f *fakeProvider) DraftSummary(ctx context.Context, in assist.SummaryInput) (string, *assist.TokenUsage, error) {
	return "A concise summary.", nil, f.err()
}

func (f *fakeProvider) EnhanceExperience(ctx context.Context, in assist.ExperienceInput) (string, *assist.TokenUsage, error) {
	return "- Did the thing", nil, f.err()
}

func (f *fakeProvider) SuggestSkills(ctx context.Context, in assist.SkillsInput) ([]string, *assist.TokenUsage, error) {
	return f.skills, nil, f.err()
}

func (f *fakeProvider) DraftCoverLetter(ctx context.Context, in assist.CoverLetterInput) (string, *assist.TokenUsage, error) {
	return "Dear hiring manager,", nil, f.err()
}

func (f *fakeProvider) FindMatchingJobs(ctx context.Context, in assist.MatchInput) ([]resume.JobOpportunity, *assist.TokenUsage, error) {
	return f.jobs, nil, f.err()
}

func (f *fakeProvider) SearchJobs(ctx context.Context, in assist.SearchInput) ([]resume.JobOpportunity, *assist.TokenUsage, error) {
	return f.jobs, nil, f.err()
}

func (f *fakeProvider) DraftApplicationLetter(ctx context.Context, in assist.ApplicationLetterInput) (string, *assist.TokenUsage, error) {
	return "I would like to apply.", nil, f.err()
}

func (f *fakeProvider) AuditResume(ctx context.Context, in assist.AuditInput) (resume.AuditResult, *assist.TokenUsage, error) {
	return resume.AuditResult{Score: 72, Summary: "Solid"}, nil, f.err()
}

func (f *fakeProvider) ParseResumeText(ctx context.Context, in assist.ParseInput) (resume.Document, *assist.TokenUsage, error) {
	return f.parsed, nil, f.err()
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *assist.ModelInfo {
	return &assist.ModelInfo{Name: "fake-model", Available: !f.fail}
}

func (f *fakeProvider) Close() error { return nil }

type memStore struct {
	mu  sync.Mutex
	doc resume.Document
}

func (m *memStore) Save(ctx context.Context, doc resume.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc
	return nil
}

func (m *memStore) Load(ctx context.Context) (resume.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, resume.HasPriorWork(m.doc), nil
}

type testServerOptions struct {
	premium   bool
	apiKeys   []string
	rateLimit *config.RateLimitConfig
	provider  *fakeProvider
}

func newTestServer(t *testing.T, opts testServerOptions) (*Server, http.Handler) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Language = "en"
	cfg.App.Premium = opts.premium
	cfg.App.MaxImportSize = 10 * 1024 * 1024
	cfg.Server.APIKeys = opts.apiKeys
	cfg.Server.MaxRequestSize = 1 << 20
	cfg.Store.Backend = "file"
	if opts.rateLimit != nil {
		cfg.Server.RateLimit = *opts.rateLimit
	}

	logger := errors.NewLogger(0)
	st := &memStore{doc: resume.NewDocument()}

	session, err := app.NewSession(context.Background(), st, opts.premium, logger)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	provider := opts.provider
	if provider == nil {
		provider = &fakeProvider{}
	}

	srv := NewServer(cfg, session,
		&assist.Service{Provider: provider},
		fakeExtractor{}, st, logger, "test")

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewObservabilityManager failed: %v", err)
	}

	mux := http.NewServeMux()
	srv.setupRoutes(mux, om)
	return srv, mux
}

// fakeExtractor passes bodies through without docconv
type fakeExtractor struct{}

func (fakeExtractor) Extract(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeDocResponse(t *testing.T, rec *httptest.ResponseRecorder) documentResponse {
	t.Helper()
	var resp documentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{apiKeys: []string{"secret-key-1234"}})

	rec := doJSON(t, h, http.MethodGet, "/document", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("No key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/document", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Bad key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/document", nil)
	req.Header.Set("Authorization", "Bearer secret-key-1234")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Bearer key: status = %d, want 200", rec.Code)
	}

	// Health stays public
	rec = doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Health: status = %d, want 200", rec.Code)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	srv, h := newTestServer(t, testServerOptions{})

	rec := doJSON(t, h, http.MethodGet, "/document", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /document: status = %d", rec.Code)
	}
	resp := decodeDocResponse(t, rec)
	if resp.Score != srv.Session.Score() {
		t.Errorf("Score = %d, want %d", resp.Score, srv.Session.Score())
	}

	doc := resp.Document
	doc.PersonalInfo.FullName = "Maria Santos"
	rec = doJSON(t, h, http.MethodPut, "/document", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /document: status = %d (%s)", rec.Code, rec.Body.String())
	}
	resp = decodeDocResponse(t, rec)
	if resp.Document.PersonalInfo.FullName != "Maria Santos" {
		t.Errorf("FullName = %q after replace", resp.Document.PersonalInfo.FullName)
	}
}

func TestSectionItemLifecycle(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{})

	rec := doJSON(t, h, http.MethodPost, "/document/sections/experience/items",
		map[string]any{"title": "Engineer", "company": "Acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Add item: status = %d (%s)", rec.Code, rec.Body.String())
	}
	resp := decodeDocResponse(t, rec)
	if len(resp.Document.Experience) != 1 {
		t.Fatalf("Experience count = %d, want 1", len(resp.Document.Experience))
	}
	id := resp.Document.Experience[0].ID
	if id == "" {
		t.Fatal("Added item did not get an id")
	}

	// Duplicate id is rejected
	rec = doJSON(t, h, http.MethodPost, "/document/sections/experience/items",
		map[string]any{"id": id, "title": "Other"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Duplicate id: status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPatch, "/document/sections/experience/items/"+id,
		map[string]string{"field": "title", "value": "Senior Engineer"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Patch: status = %d (%s)", rec.Code, rec.Body.String())
	}
	resp = decodeDocResponse(t, rec)
	if resp.Document.Experience[0].Title != "Senior Engineer" {
		t.Errorf("Title = %q after patch", resp.Document.Experience[0].Title)
	}

	// Unknown id patch is a no-op
	rec = doJSON(t, h, http.MethodPatch, "/document/sections/experience/items/nope",
		map[string]string{"field": "title", "value": "X"})
	if rec.Code != http.StatusOK {
		t.Errorf("Unknown id patch: status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/document/sections/experience/items/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete: status = %d", rec.Code)
	}
	resp = decodeDocResponse(t, rec)
	if len(resp.Document.Experience) != 0 {
		t.Errorf("Experience count after delete = %d, want 0", len(resp.Document.Experience))
	}
}

func TestUnknownSectionRejected(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{})

	rec := doJSON(t, h, http.MethodPost, "/document/sections/pets/items",
		map[string]string{"name": "Rex"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Unknown section: status = %d, want 400", rec.Code)
	}
}

func TestRenderFallsBackToModern(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{})

	rec := doJSON(t, h, http.MethodGet, "/render?template=holographic", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Render: status = %d", rec.Code)
	}
	var tree struct {
		Template string `json:"template"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	if tree.Template != "modern" {
		t.Errorf("Template = %q, want modern", tree.Template)
	}
}

func TestAssistSummaryFallback(t *testing.T) {
	tests := []struct {
		name     string
		fail     bool
		wantText string
		wantErr  bool
	}{
		{name: "success returns draft", wantText: "A concise summary."},
		{name: "failure returns empty text and retry message", fail: true, wantText: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, testServerOptions{provider: &fakeProvider{fail: tt.fail}})

			rec := doJSON(t, h, http.MethodPost, "/assist/summary",
				assist.SummaryInput{JobTitle: "Engineer"})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var resp assistTextResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", resp.Text, tt.wantText)
			}
			if (resp.Error != "") != tt.wantErr {
				t.Errorf("Error = %q, wantErr %v", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestAssistExperienceFallbackKeepsRawText(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{provider: &fakeProvider{fail: true}})

	rec := doJSON(t, h, http.MethodPost, "/assist/experience",
		assist.ExperienceInput{JobTitle: "Engineer", RawDescription: "built stuff"})
	var resp assistTextResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "built stuff" {
		t.Errorf("Fallback text = %q, want the raw description", resp.Text)
	}
	if resp.Error == "" {
		t.Error("Expected error indicator on fallback")
	}
}

func TestAssistSkillsDedupesAgainstDocument(t *testing.T) {
	srv, h := newTestServer(t, testServerOptions{
		provider: &fakeProvider{skills: []string{"Python", "SQL"}},
	})

	doc := srv.Session.Document()
	doc.Skills = []resume.Skill{{ID: resume.NewItemID(), Name: "python"}}
	srv.Session.Replace(doc)

	rec := doJSON(t, h, http.MethodPost, "/assist/skills",
		assist.SkillsInput{JobTitle: "Engineer"})
	var resp assistSkillsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Skills) != 1 || resp.Skills[0] != "SQL" {
		t.Errorf("Skills = %v, want [SQL]", resp.Skills)
	}
}

func TestJobsMatchPremiumGate(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{premium: false})

	rec := doJSON(t, h, http.MethodPost, "/assist/jobs/match", map[string]string{})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Non-premium match: status = %d, want 403", rec.Code)
	}
}

func TestJobsMatchAppliesResults(t *testing.T) {
	jobs := []resume.JobOpportunity{{ID: "j1", Title: "Platform Engineer", Company: "Acme"}}
	srv, h := newTestServer(t, testServerOptions{premium: true, provider: &fakeProvider{jobs: jobs}})

	rec := doJSON(t, h, http.MethodPost, "/assist/jobs/match", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("Match: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp assistJobsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Applied {
		t.Error("Match result was not applied")
	}

	matches := srv.Session.Document().JobMatches
	if len(matches) != 1 || matches[0].Title != "Platform Engineer" {
		t.Errorf("JobMatches = %+v", matches)
	}
}

func TestImportReplacesDocument(t *testing.T) {
	parsed := resume.NewDocument()
	parsed.PersonalInfo.FullName = "Imported Person"
	srv, h := newTestServer(t, testServerOptions{provider: &fakeProvider{parsed: parsed}})

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("Imported Person\nEngineer"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Import: status = %d (%s)", rec.Code, rec.Body.String())
	}
	if got := srv.Session.Document().PersonalInfo.FullName; got != "Imported Person" {
		t.Errorf("FullName = %q after import", got)
	}
}

func TestImportParseFailureLeavesDocument(t *testing.T) {
	srv, h := newTestServer(t, testServerOptions{provider: &fakeProvider{fail: true}})
	before := srv.Session.Document()

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("some resume text"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Failed import: status = %d, want 502", rec.Code)
	}
	if got := srv.Session.Document(); got.PersonalInfo != before.PersonalInfo {
		t.Error("Failed import changed the document")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{
		rateLimit: &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  1,
			ByIP:           true,
		},
	})

	rec := doJSON(t, h, http.MethodGet, "/score", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("First request: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/score", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Second request: status = %d, want 429", rec.Code)
	}
}

func TestHealthDegradedWhenModelUnavailable(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{provider: &fakeProvider{fail: true}})

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Health: status = %d, want 503", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
}

func TestStatsReportsRateLimiter(t *testing.T) {
	_, h := newTestServer(t, testServerOptions{
		rateLimit: &config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 10, ByIP: true},
	})

	rec := doJSON(t, h, http.MethodGet, "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Stats: status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp["rateLimiter"]; !ok {
		t.Error("Stats missing rate limiter section")
	}
	if fmt.Sprintf("%v", resp["screen"]) != "landing" {
		t.Errorf("screen = %v, want landing", resp["screen"])
	}
}

func TestScoreReportsBreakdown(t *testing.T) {
	srv, h := newTestServer(t, testServerOptions{})

	srv.Session.Replace(func() resume.Document {
		doc := resume.NewDocument()
		doc.PersonalInfo.Summary = strings.Repeat("x", 30)
		return doc
	}())

	rec := doJSON(t, h, http.MethodGet, "/score", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /score: status = %d", rec.Code)
	}

	var report score.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !report.HasSummary {
		t.Error("Expected summary to count toward the score")
	}
	if report.Total != srv.Session.Score() {
		t.Errorf("Total = %d, want %d", report.Total, srv.Session.Score())
	}
}
