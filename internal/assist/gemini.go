package assist

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"cvforge/internal/config"
	cvforgeErrors "cvforge/internal/errors"
	"cvforge/internal/resume"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// opRunner bundles the client, configuration and breakers for one
// operation group. Groups can point at different models or API keys.
type opRunner struct {
	group          string
	client         *genai.Client
	cfg            config.OperationAIConfig
	circuitBreaker *OperationCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
}

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	draft  *opRunner
	match  *opRunner
	audit  *opRunner
	parse  *opRunner
	logger *cvforgeErrors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini-backed gateway, one runner per
// operation group
func NewGeminiProvider(cfg *config.Config, logger *cvforgeErrors.Logger) (*GeminiProvider, error) {
	p := &GeminiProvider{logger: logger}

	groups := []struct {
		name   string
		cfg    config.OperationAIConfig
		target **opRunner
	}{
		{"draft", cfg.GetDraftConfig(), &p.draft},
		{"match", cfg.GetMatchConfig(), &p.match},
		{"audit", cfg.GetAuditConfig(), &p.audit},
		{"parse", cfg.GetParseConfig(), &p.parse},
	}

	for _, g := range groups {
		runner, err := newOpRunner(g.name, g.cfg, logger)
		if err != nil {
			return nil, err
		}
		*g.target = runner
	}

	return p, nil
}

func newOpRunner(group string, cfg config.OperationAIConfig, logger *cvforgeErrors.Logger) (*opRunner, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, cvforgeErrors.NewAIError(cvforgeErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client for "+group, err)
	}

	return &opRunner{
		group:          group,
		client:         client,
		cfg:            cfg,
		circuitBreaker: NewOperationCircuitBreaker(group, &cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(group, &cfg, logger),
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the draft
// group's model, which every deployment configures
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	r := g.draft
	modelInfo := &ModelInfo{
		Name:      r.cfg.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := r.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return r.client.Models.Get(checkCtx, r.cfg.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", r.cfg.Model,
			"provider", r.cfg.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version
	return modelInfo
}

// executeWithRetry executes an AI call with retry logic and
// exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, r *opRunner, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying assist operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *r.cfg.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Assist operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on auth or invalid input errors
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "Assist operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *r.cfg.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *r.cfg.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeOperation runs one gateway operation with tracing, the
// group's timeout, circuit breaker and response parsing.
func executeOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	r *opRunner,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("cvforge.assist.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", r.cfg.Model),
		attribute.String("ai.operation_group", r.group),
		attribute.Float64("ai.temperature", float64(*r.cfg.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	ctx, cancel := context.WithTimeout(ctx, *r.cfg.Timeout)
	defer cancel()

	if *r.cfg.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := r.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, r, operationName, func() (*genai.GenerateContentResponse, error) {
			return r.client.Models.GenerateContent(ctx, r.cfg.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, cvforgeErrors.NewAIError(cvforgeErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, cvforgeErrors.NewAIError(cvforgeErrors.ErrCodeAIResponseParse,
			"Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// generateConfig builds a JSON-schema response config with the group's
// temperature applied
func (r *opRunner) generateConfig(schema *genai.Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if *r.cfg.Temperature > 0 {
		cfg.Temperature = r.cfg.Temperature
	}
	return cfg
}

func (r *opRunner) systemPrompt(fromDefaults string) string {
	sp := r.cfg.CustomPrompts.SystemPrompts
	switch r.group {
	case "draft":
		return resolvePrompt(sp.Draft, fromDefaults)
	case "match":
		return resolvePrompt(sp.Match, fromDefaults)
	case "audit":
		return resolvePrompt(sp.Audit, fromDefaults)
	case "parse":
		return resolvePrompt(sp.Parse, fromDefaults)
	default:
		return fromDefaults
	}
}

func (r *opRunner) userTemplate(fromDefaults string) string {
	up := r.cfg.CustomPrompts.UserPrompts
	switch r.group {
	case "draft":
		return resolvePrompt(up.Draft, fromDefaults)
	case "match":
		return resolvePrompt(up.Match, fromDefaults)
	case "audit":
		return resolvePrompt(up.Audit, fromDefaults)
	case "parse":
		return resolvePrompt(up.Parse, fromDefaults)
	default:
		return fromDefaults
	}
}

func stringSchema(field string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			field: {Type: genai.TypeString},
		},
		Required: []string{field},
	}
}

func jobListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"jobs": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"company":     {Type: genai.TypeString},
						"location":    {Type: genai.TypeString},
						"matchScore":  {Type: genai.TypeInteger},
						"salaryRange": {Type: genai.TypeString},
						"reason":      {Type: genai.TypeString},
						"hrEmail":     {Type: genai.TypeString},
					},
					Required: []string{"title", "company", "location", "matchScore", "salaryRange", "reason", "hrEmail"},
				},
			},
		},
		Required: []string{"jobs"},
	}
}

// DraftSummary implements Provider
func (g *GeminiProvider) DraftSummary(ctx context.Context, input SummaryInput) (string, *TokenUsage, error) {
	r := g.draft
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.Summary),
		input.JobTitle, input.ExperienceSummary, input.Language)

	output, usage, err := executeOperation[struct {
		Summary string `json:"summary"`
	}](g, ctx, r, "draft_summary", userPrompt, r.systemPrompt(DefaultSystemPrompts.Draft),
		r.generateConfig(stringSchema("summary")),
		attribute.Int("input.experience_length", len(input.ExperienceSummary)))
	if err != nil {
		return "", nil, err
	}
	return output.Summary, usage, nil
}

// EnhanceExperience implements Provider
func (g *GeminiProvider) EnhanceExperience(ctx context.Context, input ExperienceInput) (string, *TokenUsage, error) {
	r := g.draft
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.Experience),
		input.JobTitle, input.RawDescription, input.Language)

	output, usage, err := executeOperation[struct {
		Description string `json:"description"`
	}](g, ctx, r, "enhance_experience", userPrompt, r.systemPrompt(DefaultSystemPrompts.Draft),
		r.generateConfig(stringSchema("description")),
		attribute.Int("input.description_length", len(input.RawDescription)))
	if err != nil {
		return "", nil, err
	}
	return output.Description, usage, nil
}

// SuggestSkills implements Provider
func (g *GeminiProvider) SuggestSkills(ctx context.Context, input SkillsInput) ([]string, *TokenUsage, error) {
	r := g.draft
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.Skills),
		input.JobTitle, input.Language)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"skills": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"skills"},
	}

	output, usage, err := executeOperation[struct {
		Skills []string `json:"skills"`
	}](g, ctx, r, "suggest_skills", userPrompt, r.systemPrompt(DefaultSystemPrompts.Draft),
		r.generateConfig(schema))
	if err != nil {
		return nil, nil, err
	}
	return output.Skills, usage, nil
}

// DraftCoverLetter implements Provider
func (g *GeminiProvider) DraftCoverLetter(ctx context.Context, input CoverLetterInput) (string, *TokenUsage, error) {
	r := g.draft
	docJSON, err := json.Marshal(input.Document)
	if err != nil {
		return "", nil, cvforgeErrors.NewInternalError(cvforgeErrors.ErrCodeInvalidFormat,
			"Failed to serialize document", err)
	}
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.CoverLetter),
		string(docJSON), input.Language)

	output, usage, err := executeOperation[struct {
		Body string `json:"body"`
	}](g, ctx, r, "draft_cover_letter", userPrompt, r.systemPrompt(DefaultSystemPrompts.Draft),
		r.generateConfig(stringSchema("body")))
	if err != nil {
		return "", nil, err
	}
	return output.Body, usage, nil
}

// DraftApplicationLetter implements Provider
func (g *GeminiProvider) DraftApplicationLetter(ctx context.Context, input ApplicationLetterInput) (string, *TokenUsage, error) {
	r := g.draft
	jobJSON, err := json.Marshal(input.Job)
	if err != nil {
		return "", nil, cvforgeErrors.NewInternalError(cvforgeErrors.ErrCodeInvalidFormat,
			"Failed to serialize job opportunity", err)
	}
	docJSON, err := json.Marshal(input.Document)
	if err != nil {
		return "", nil, cvforgeErrors.NewInternalError(cvforgeErrors.ErrCodeInvalidFormat,
			"Failed to serialize document", err)
	}
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.ApplicationLetter),
		string(jobJSON), string(docJSON), input.Language)

	output, usage, err := executeOperation[struct {
		Body string `json:"body"`
	}](g, ctx, r, "draft_application_letter", userPrompt, r.systemPrompt(DefaultSystemPrompts.Draft),
		r.generateConfig(stringSchema("body")),
		attribute.String("job.title", input.Job.Title))
	if err != nil {
		return "", nil, err
	}
	return output.Body, usage, nil
}

// jobWire is the job opportunity as returned by the collaborator; ids
// are assigned client-side on receipt.
type jobWire struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	MatchScore  int    `json:"matchScore"`
	SalaryRange string `json:"salaryRange"`
	Reason      string `json:"reason"`
	HREmail     string `json:"hrEmail"`
}

func toJobOpportunities(wires []jobWire) []resume.JobOpportunity {
	jobs := make([]resume.JobOpportunity, 0, len(wires))
	for _, w := range wires {
		jobs = append(jobs, resume.JobOpportunity{
			ID:          resume.NewItemID(),
			Title:       w.Title,
			Company:     w.Company,
			Location:    w.Location,
			MatchScore:  w.MatchScore,
			SalaryRange: w.SalaryRange,
			Reason:      w.Reason,
			HREmail:     w.HREmail,
		})
	}
	return jobs
}

// FindMatchingJobs implements Provider
func (g *GeminiProvider) FindMatchingJobs(ctx context.Context, input MatchInput) ([]resume.JobOpportunity, *TokenUsage, error) {
	r := g.match
	docJSON, err := json.Marshal(input.Document)
	if err != nil {
		return nil, nil, cvforgeErrors.NewInternalError(cvforgeErrors.ErrCodeInvalidFormat,
			"Failed to serialize document", err)
	}
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.MatchJobs),
		string(docJSON), input.Language)

	output, usage, err := executeOperation[struct {
		Jobs []jobWire `json:"jobs"`
	}](g, ctx, r, "find_matching_jobs", userPrompt, r.systemPrompt(DefaultSystemPrompts.Match),
		r.generateConfig(jobListSchema()))
	if err != nil {
		return nil, nil, err
	}
	return toJobOpportunities(output.Jobs), usage, nil
}

// SearchJobs implements Provider
func (g *GeminiProvider) SearchJobs(ctx context.Context, input SearchInput) ([]resume.JobOpportunity, *TokenUsage, error) {
	r := g.match
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.SearchJobs),
		input.Query, input.Location, input.Language)

	output, usage, err := executeOperation[struct {
		Jobs []jobWire `json:"jobs"`
	}](g, ctx, r, "search_jobs", userPrompt, r.systemPrompt(DefaultSystemPrompts.Match),
		r.generateConfig(jobListSchema()),
		attribute.String("search.query", input.Query))
	if err != nil {
		return nil, nil, err
	}
	return toJobOpportunities(output.Jobs), usage, nil
}

// AuditResume implements Provider
func (g *GeminiProvider) AuditResume(ctx context.Context, input AuditInput) (resume.AuditResult, *TokenUsage, error) {
	r := g.audit
	docJSON, err := json.Marshal(input.Document)
	if err != nil {
		return resume.AuditResult{}, nil, cvforgeErrors.NewInternalError(cvforgeErrors.ErrCodeInvalidFormat,
			"Failed to serialize document", err)
	}
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.Audit),
		string(docJSON), input.Language)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":   {Type: genai.TypeInteger},
			"summary": {Type: genai.TypeString},
			"strengths": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"improvements": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"score", "summary", "strengths", "improvements"},
	}

	output, usage, err := executeOperation[resume.AuditResult](
		g, ctx, r, "audit_resume", userPrompt, r.systemPrompt(DefaultSystemPrompts.Audit),
		r.generateConfig(schema))
	if err != nil {
		return resume.AuditResult{}, nil, err
	}
	return output, usage, nil
}

// parsedDocument is the import parser's wire shape: only the sections
// the import flow fills.
type parsedDocument struct {
	PersonalInfo resume.PersonalInfo `json:"personalInfo"`
	Experience   []resume.Experience `json:"experience"`
	Education    []resume.Education  `json:"education"`
	Skills       []resume.Skill      `json:"skills"`
	Languages    []resume.Language   `json:"languages"`
}

// ParseResumeText implements Provider. Sections the parser does not
// fill come back as defaults; item ids are assigned on receipt.
func (g *GeminiProvider) ParseResumeText(ctx context.Context, input ParseInput) (resume.Document, *TokenUsage, error) {
	r := g.parse
	userPrompt := fmt.Sprintf(r.userTemplate(DefaultUserPrompts.Parse), input.Text)

	output, usage, err := executeOperation[parsedDocument](
		g, ctx, r, "parse_resume_text", userPrompt, r.systemPrompt(DefaultSystemPrompts.Parse),
		r.generateConfig(parseSchema()),
		attribute.Int("input.text_length", len(input.Text)))
	if err != nil {
		return resume.Document{}, nil, err
	}

	doc := resume.NewDocument()
	doc.PersonalInfo = output.PersonalInfo
	doc.Experience = output.Experience
	doc.Education = output.Education
	doc.Skills = output.Skills
	doc.Languages = output.Languages

	for i := range doc.Experience {
		doc.Experience[i].ID = resume.NewItemID()
	}
	for i := range doc.Education {
		doc.Education[i].ID = resume.NewItemID()
	}
	for i := range doc.Skills {
		doc.Skills[i].ID = resume.NewItemID()
	}
	for i := range doc.Languages {
		doc.Languages[i].ID = resume.NewItemID()
	}

	return resume.Heal(doc), usage, nil
}

func parseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"personalInfo": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"fullName": {Type: genai.TypeString},
					"jobTitle": {Type: genai.TypeString},
					"email":    {Type: genai.TypeString},
					"phone":    {Type: genai.TypeString},
					"location": {Type: genai.TypeString},
					"linkedin": {Type: genai.TypeString},
					"website":  {Type: genai.TypeString},
					"summary":  {Type: genai.TypeString},
				},
			},
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"company":     {Type: genai.TypeString},
						"startDate":   {Type: genai.TypeString},
						"endDate":     {Type: genai.TypeString},
						"current":     {Type: genai.TypeBoolean},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"title", "company"},
				},
			},
			"education": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"degree": {Type: genai.TypeString},
						"school": {Type: genai.TypeString},
						"year":   {Type: genai.TypeString},
					},
					Required: []string{"degree", "school"},
				},
			},
			"skills": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString},
						"level": {Type: genai.TypeString},
					},
					Required: []string{"name"},
				},
			},
			"languages": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"language":    {Type: genai.TypeString},
						"proficiency": {Type: genai.TypeString},
					},
					Required: []string{"language"},
				},
			},
		},
		Required: []string{"personalInfo", "experience", "education", "skills", "languages"},
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics for all
// operation groups
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{}
	healthy := true
	for _, r := range []*opRunner{g.draft, g.match, g.audit, g.parse} {
		stats[r.group] = r.circuitBreaker.GetStats()
		healthy = healthy && r.circuitBreaker.IsHealthy() && r.modelBreaker.IsModelHealthy()
	}
	stats["overall_healthy"] = healthy
	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini
// response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
