package assist

// SystemPrompts contains system-level instructions per operation group
type SystemPrompts struct {
	Draft string
	Match string
	Audit string
	Parse string
}

// UserPrompts contains user-level prompt templates with placeholders
// for dynamic content, one per gateway operation
type UserPrompts struct {
	Summary           string
	Experience        string
	Skills            string
	CoverLetter       string
	ApplicationLetter string
	MatchJobs         string
	SearchJobs        string
	Audit             string
	Parse             string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Draft: `You are an expert resume and career writer with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source material
- Write in the first person without clichés or filler phrases
- Keep output concise, concrete and professional
- Always respond in the language requested by the user`,

	Match: `You are an expert career advisor and labor market analyst. Your role is to:

- Match candidates to realistic job opportunities based on their actual skills and experience
- Provide honest match scores grounded in the overlap between profile and role
- Use realistic company names, locations and salary ranges for the candidate's market
- Always respond in the language requested by the user

Never fabricate a perfect match: a low score with a clear reason is more useful than flattery.`,

	Audit: `You are an expert resume reviewer and hiring consultant with a focus on accuracy and actionable feedback. Your role is to:

- Evaluate the resume's completeness, clarity and impact
- Identify concrete strengths worth keeping
- List specific, prioritized improvements
- Score conservatively and justify the score in the summary
- Always respond in the language requested by the user`,

	Parse: `You are a precise document parser. You receive the plain text of a resume and extract its structured content.

- Extract only information present in the text; never invent values
- Leave fields empty when the text does not provide them
- Normalize dates to ISO format (YYYY-MM-DD or YYYY-MM) when possible
- Preserve the original language of the text`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	Summary: `Write a professional summary for a resume, 2 to 4 sentences, first person, no clichés.

Job title: %s

Experience overview:
%s

Respond in this language: %s

Return only the summary text.`,

	Experience: `Rewrite the following work experience description as 3 to 5 concise bullet points. Start each bullet with a strong verb and keep every fact from the original; do not add accomplishments that are not present.

Job title: %s

Original description:
%s

Respond in this language: %s

Return only the bullet points, one per line, each starting with "- ".`,

	Skills: `Suggest 8 to 12 relevant skills for the following role. Mix hard and soft skills, most important first. Use short skill names (1 to 3 words each), no descriptions.

Job title: %s

Respond in this language: %s`,

	CoverLetter: `Write a complete cover letter body based on this resume. 3 to 4 paragraphs, first person, professional but warm. Do not include the date, address blocks or signature; only the letter body.

Resume (JSON):
%s

Respond in this language: %s`,

	ApplicationLetter: `Write a short application email body (120 to 180 words) for the following job opportunity, based on the candidate's resume. Address the recipient directly, name the role, and highlight the two strongest matching qualifications. No subject line, no signature.

Job opportunity (JSON):
%s

Resume (JSON):
%s

Respond in this language: %s`,

	MatchJobs: `Based on the following resume, propose 5 realistic job opportunities this candidate could apply for today. For each: title, company, location, a match score from 0 to 100, a salary range, a one-sentence reason for the match, and a plausible HR contact email.

Resume (JSON):
%s

Respond in this language: %s`,

	SearchJobs: `Find 5 realistic job opportunities for the following search. For each: title, company, location, a match score from 0 to 100 indicating how well it fits the query, a salary range, a one-sentence reason, and a plausible HR contact email.

Search query: %s
Location: %s

Respond in this language: %s`,

	Audit: `Review this resume thoroughly. Provide:
1. An overall score from 0 to 100
2. A short summary of your assessment (2 to 3 sentences)
3. The concrete strengths of this resume
4. Specific improvements, ordered by impact

Resume (JSON):
%s

Respond in this language: %s`,

	Parse: `Extract the structured resume data from the following plain text. Fill personal information, work experience, education, skills and languages. Leave everything else empty.

Resume text:
%s`,
}

// resolvePrompt selects the prompt string by priority: a value loaded
// from a configured file or set inline in config wins over the
// hardcoded default.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
