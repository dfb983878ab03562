package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"cvforge/internal/app"
	"cvforge/internal/assist"
	"cvforge/internal/editor"
	"cvforge/internal/observability"
	"cvforge/internal/resume"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// retryMessage is surfaced whenever an assist call fails. The caller
// keeps its current content and can simply try again.
const retryMessage = "The assistant is unavailable right now, please try again."

type assistTextResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type assistSkillsResponse struct {
	Skills []string `json:"skills"`
	Error  string   `json:"error,omitempty"`
}

type assistJobsResponse struct {
	Jobs    []resume.JobOpportunity `json:"jobs"`
	Applied bool                    `json:"applied"`
	Error   string                  `json:"error,omitempty"`
}

type assistAuditResponse struct {
	Audit resume.AuditResult `json:"audit"`
	Error string             `json:"error,omitempty"`
}

// trackAssist runs one provider call under the assist metrics and
// returns its error. Token usage flows into metrics and spans.
func trackAssist(ctx context.Context, om *observability.ObservabilityManager, operation string, call func(context.Context) (*assist.TokenUsage, error)) error {
	return om.GetMetrics().TrackAIOperationWithTokens(ctx, operation, func(ctx context.Context) *observability.AIOperationResult {
		tokenUsage, err := call(ctx)
		return &observability.AIOperationResult{
			Error:      err,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)
}

// assistSummaryHandler drafts a professional summary
func (s *Server) assistSummaryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_summary")
		defer span.End()

		var req assist.SummaryInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Language = s.language(req.Language)

		var draft string
		err := trackAssist(ctx, om, "summary", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			draft, tokenUsage, err = s.Assist.Provider.DraftSummary(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assist_draft", err == nil, om,
			attribute.String("kind", "summary"))

		s.writeAssistText(w, span, draft, err, "Summary draft failed")
	}
}

// assistExperienceHandler rewrites a raw experience description
func (s *Server) assistExperienceHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_experience")
		defer span.End()

		var req assist.ExperienceInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Language = s.language(req.Language)

		var draft string
		err := trackAssist(ctx, om, "experience", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			draft, tokenUsage, err = s.Assist.Provider.EnhanceExperience(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assist_draft", err == nil, om,
			attribute.String("kind", "experience"))

		// A failed rewrite keeps the raw description usable
		if err != nil {
			s.Logger.LogError(err, "Experience rewrite failed")
			span.SetAttributes(attribute.Bool("fallback", true))
			writeJSON(w, http.StatusOK, assistTextResponse{Text: req.RawDescription, Error: retryMessage})
			return
		}
		writeJSON(w, http.StatusOK, assistTextResponse{Text: draft})
	}
}

// assistSkillsHandler suggests skills, deduplicated against the ones
// already on the document.
func (s *Server) assistSkillsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_skills")
		defer span.End()

		var req assist.SkillsInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Language = s.language(req.Language)

		var suggested []string
		err := trackAssist(ctx, om, "skills", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			suggested, tokenUsage, err = s.Assist.Provider.SuggestSkills(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assist_draft", err == nil, om,
			attribute.String("kind", "skills"))

		if err != nil {
			s.Logger.LogError(err, "Skill suggestion failed")
			span.SetAttributes(attribute.Bool("fallback", true))
			writeJSON(w, http.StatusOK, assistSkillsResponse{Skills: []string{}, Error: retryMessage})
			return
		}

		deduped := assist.DedupeSkills(s.Session.Document().Skills, suggested)
		span.SetAttributes(attribute.Int("skills.suggested", len(suggested)),
			attribute.Int("skills.new", len(deduped)))
		writeJSON(w, http.StatusOK, assistSkillsResponse{Skills: deduped})
	}
}

// assistCoverLetterHandler drafts a cover letter from the current
// document.
func (s *Server) assistCoverLetterHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_cover_letter")
		defer span.End()

		var req assist.CoverLetterInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Document = s.Session.Document()
		req.Language = s.language(req.Language)

		var draft string
		err := trackAssist(ctx, om, "cover_letter", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			draft, tokenUsage, err = s.Assist.Provider.DraftCoverLetter(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assist_draft", err == nil, om,
			attribute.String("kind", "cover_letter"))

		s.writeAssistText(w, span, draft, err, "Cover letter draft failed")
	}
}

// assistMatchJobsHandler finds jobs matching the current document and
// replaces the match cache if this is still the newest request.
func (s *Server) assistMatchJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_match_jobs")
		defer span.End()

		if !s.requirePremium(w) {
			return
		}

		var req assist.MatchInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Document = s.Session.Document()
		req.Language = s.language(req.Language)

		token := s.Session.Begin("jobs")

		var jobs []resume.JobOpportunity
		err := trackAssist(ctx, om, "match_jobs", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			jobs, tokenUsage, err = s.Assist.Provider.FindMatchingJobs(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "jobs_matched", err == nil, om)

		s.writeJobsResult(w, span, token, jobs, err, "Job matching failed")
	}
}

// assistSearchJobsHandler searches jobs by free-text query
func (s *Server) assistSearchJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_search_jobs")
		defer span.End()

		if !s.requirePremium(w) {
			return
		}

		var req assist.SearchInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		if req.Query == "" {
			writeErrorResponse(w, "Invalid request", "query is required", http.StatusBadRequest)
			return
		}
		req.Language = s.language(req.Language)

		token := s.Session.Begin("jobs")

		var jobs []resume.JobOpportunity
		err := trackAssist(ctx, om, "search_jobs", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			jobs, tokenUsage, err = s.Assist.Provider.SearchJobs(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "jobs_matched", err == nil, om,
			attribute.String("kind", "search"))

		s.writeJobsResult(w, span, token, jobs, err, "Job search failed")
	}
}

// assistApplicationLetterHandler drafts a short application email for
// one opportunity.
func (s *Server) assistApplicationLetterHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_application_letter")
		defer span.End()

		var req assist.ApplicationLetterInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		if req.Job.Title == "" && req.Job.Company == "" {
			writeErrorResponse(w, "Invalid request", "job is required", http.StatusBadRequest)
			return
		}
		req.Document = s.Session.Document()
		req.Language = s.language(req.Language)

		var draft string
		err := trackAssist(ctx, om, "application_letter", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			draft, tokenUsage, err = s.Assist.Provider.DraftApplicationLetter(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "assist_draft", err == nil, om,
			attribute.String("kind", "application_letter"))

		s.writeAssistText(w, span, draft, err, "Application letter draft failed")
	}
}

// assistAuditHandler runs the full resume audit
func (s *Server) assistAuditHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.assist_audit")
		defer span.End()

		var req assist.AuditInput
		if !parseJSONRequest(w, r, &req) {
			return
		}
		req.Document = s.Session.Document()
		req.Language = s.language(req.Language)

		var audit resume.AuditResult
		err := trackAssist(ctx, om, "audit", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			audit, tokenUsage, err = s.Assist.Provider.AuditResume(ctx, req)
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "resume_audited", err == nil, om)

		if err != nil {
			s.Logger.LogError(err, "Resume audit failed")
			span.SetAttributes(attribute.Bool("fallback", true))
			writeJSON(w, http.StatusOK, assistAuditResponse{Error: retryMessage})
			return
		}
		span.SetAttributes(attribute.Int("audit.score", audit.Score))
		writeJSON(w, http.StatusOK, assistAuditResponse{Audit: audit})
	}
}

// importHandler extracts text from an uploaded resume, parses it into
// a document and replaces the current snapshot.
func (s *Server) importHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(r.Context(), "api.import")
		defer span.End()

		data, mimeType, err := readImportUpload(r, s.AppConfig.App.MaxImportSize)
		if err != nil {
			writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
			return
		}
		span.SetAttributes(
			attribute.String("import.mime_type", mimeType),
			attribute.Int("import.bytes", len(data)),
		)

		text, err := s.Extractor.Extract(ctx, bytes.NewReader(data), mimeType)
		if err != nil {
			s.Logger.LogError(err, "Import extraction failed", "mime_type", mimeType)
			om.GetMetrics().RecordBusinessMetric(ctx, "resume_imported", false, om)
			writeErrorResponse(w, "Extraction failed", "Could not read text from the uploaded document", http.StatusUnprocessableEntity)
			return
		}

		var parsed resume.Document
		err = trackAssist(ctx, om, "parse_resume", func(ctx context.Context) (*assist.TokenUsage, error) {
			var tokenUsage *assist.TokenUsage
			var err error
			parsed, tokenUsage, err = s.Assist.Provider.ParseResumeText(ctx, assist.ParseInput{Text: text})
			return tokenUsage, err
		})

		om.GetMetrics().RecordBusinessMetric(ctx, "resume_imported", err == nil, om)

		// Parse failure leaves the current document untouched
		if err != nil {
			s.Logger.LogError(err, "Import parse failed")
			writeErrorResponse(w, "Import failed", retryMessage, http.StatusBadGateway)
			return
		}

		s.Session.Replace(parsed)
		writeJSON(w, http.StatusOK, s.documentResponse())
	}
}

// requirePremium rejects job operations for non-premium deployments
func (s *Server) requirePremium(w http.ResponseWriter) bool {
	if s.AppConfig.App.Premium {
		return true
	}
	writeErrorResponse(w, "Premium required", "Job matching requires a premium account", http.StatusForbidden)
	return false
}

func (s *Server) writeAssistText(w http.ResponseWriter, span oteltrace.Span, draft string, err error, logMsg string) {
	if err != nil {
		s.Logger.LogError(err, logMsg)
		span.SetAttributes(attribute.Bool("fallback", true))
		writeJSON(w, http.StatusOK, assistTextResponse{Error: retryMessage})
		return
	}
	writeJSON(w, http.StatusOK, assistTextResponse{Text: draft})
}

func (s *Server) writeJobsResult(w http.ResponseWriter, span oteltrace.Span, token app.Token, jobs []resume.JobOpportunity, err error, logMsg string) {
	if err != nil {
		s.Logger.LogError(err, logMsg)
		span.SetAttributes(attribute.Bool("fallback", true))
		writeJSON(w, http.StatusOK, assistJobsResponse{Jobs: []resume.JobOpportunity{}, Error: retryMessage})
		return
	}

	// A newer match or search supersedes this one; stale results are
	// reported but never applied.
	applied := s.Session.Commit(token, func(doc resume.Document) resume.Document {
		return editor.ReplaceJobMatches(doc, jobs)
	})
	span.SetAttributes(
		attribute.Int("jobs.count", len(jobs)),
		attribute.Bool("jobs.applied", applied),
	)
	writeJSON(w, http.StatusOK, assistJobsResponse{Jobs: jobs, Applied: applied})
}

func readImportUpload(r *http.Request, maxSize int64) ([]byte, string, error) {
	if f, header, err := importFormFile(r, maxSize); err == nil {
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxSize))
		if err != nil {
			return nil, "", err
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSize))
	if err != nil {
		return nil, "", err
	}
	return data, r.Header.Get("Content-Type"), nil
}

func importFormFile(r *http.Request, maxSize int64) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, nil, err
	}
	return r.FormFile("file")
}
