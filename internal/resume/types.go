package resume

// PersonalInfo holds the singleton identity block of a document.
// Every field is free text; an empty string means "absent".
type PersonalInfo struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	LinkedIn       string `json:"linkedin"`
	Website        string `json:"website"`
	Summary        string `json:"summary"`
	JobTitle       string `json:"jobTitle"`
	DateOfBirth    string `json:"dateOfBirth"`
	Nationality    string `json:"nationality"`
	DrivingLicense string `json:"drivingLicense"`
	PhotoURL       string `json:"photoUrl"` // data URI or empty
}

// Experience is one entry in the work history section.
// When Current is true the end date is displayed as a localized
// "Present" label; the stored EndDate is retained but ignored.
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Education struct {
	ID     string `json:"id"`
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   string `json:"year"`
}

// SkillLevel is the advisory proficiency scale for skills.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillExpert       SkillLevel = "Expert"
	SkillMaster       SkillLevel = "Master"
)

type Skill struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

// Proficiency is the advisory scale for spoken languages.
type Proficiency string

const (
	ProficiencyNative Proficiency = "Native"
	ProficiencyFluent Proficiency = "Fluent"
	ProficiencyGood   Proficiency = "Good"
	ProficiencyBasic  Proficiency = "Basic"
)

type Language struct {
	ID          string      `json:"id"`
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Reference struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CoverLetter is the singleton cover letter block.
type CoverLetter struct {
	RecipientName  string `json:"recipientName"`
	RecipientTitle string `json:"recipientTitle"`
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	Body           string `json:"body"`
}

// Template identifies one of the fixed visual layouts.
type Template string

const (
	TemplateModern       Template = "modern"
	TemplateProfessional Template = "professional"
	TemplateElegant      Template = "elegant"
	TemplateCreative     Template = "creative"
	TemplateMinimal      Template = "minimal"
)

// Templates lists the known template ids in display order.
var Templates = []Template{
	TemplateModern,
	TemplateProfessional,
	TemplateElegant,
	TemplateCreative,
	TemplateMinimal,
}

// NormalizeTemplate maps unknown template values to TemplateModern.
// Rendering must never fail on a bad template id.
func NormalizeTemplate(t Template) Template {
	switch t {
	case TemplateModern, TemplateProfessional, TemplateElegant, TemplateCreative, TemplateMinimal:
		return t
	default:
		return TemplateModern
	}
}

// Meta holds the presentation metadata shared by all views.
type Meta struct {
	AccentColor string   `json:"accentColor"`
	Template    Template `json:"template"`
}

// JobOpportunity is a job listing returned by the assist collaborator.
// The ID is assigned client-side upon receipt, never by the collaborator.
type JobOpportunity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	MatchScore  int    `json:"matchScore"`
	SalaryRange string `json:"salaryRange"`
	Reason      string `json:"reason"`
	HREmail     string `json:"hrEmail"`
}

// AuditResult is the outcome of a resume audit.
type AuditResult struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Document is the single source of truth for one resume. All editors
// return a new Document; the in-memory instance is never mutated in
// place.
type Document struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
	Languages    []Language   `json:"languages"`
	Courses      []Course     `json:"courses"`
	Interests    []Interest   `json:"interests"`
	References   []Reference  `json:"references"`
	CoverLetter  CoverLetter  `json:"coverLetter"`

	// JobMatches is a transient cache replaced wholesale by match and
	// search operations. It is persisted for convenience but never
	// authoritative.
	JobMatches []JobOpportunity `json:"jobMatches"`

	Meta Meta `json:"meta"`
}
