// Package formatters turns command results into the configured output
// format. JSON works for every type; text and markdown have dedicated
// formatters per result shape.
package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"cvforge/internal/render"
	"cvforge/internal/resume"
	"cvforge/internal/score"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Report", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "Report", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "Tree", &TreeTextFormatter{})
	registry.RegisterFormatter("markdown", "Tree", &TreeMarkdownFormatter{})
	registry.RegisterFormatter("text", "Document", &DocumentTextFormatter{})
	registry.RegisterFormatter("markdown", "Document", &DocumentMarkdownFormatter{})

	return registry
}

// GlobalRegistry is the default formatter registry
var GlobalRegistry = NewFormatterRegistry()

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case score.Report:
		return "Report"
	case render.Tree:
		return "Tree"
	case resume.Document:
		return "Document"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func checkmark(ok bool) string {
	if ok {
		return "x"
	}
	return " "
}

// ScoreTextFormatter handles text formatting for the completeness report
type ScoreTextFormatter struct{}

func (sf *ScoreTextFormatter) Format(data any) (string, error) {
	report, ok := data.(score.Report)
	if !ok {
		return "", fmt.Errorf("expected score.Report, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME COMPLETENESS ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n\n", report.Total))
	output.WriteString(fmt.Sprintf("[%s] Photo\n", checkmark(report.HasPhoto)))
	output.WriteString(fmt.Sprintf("[%s] Professional summary\n", checkmark(report.HasSummary)))
	output.WriteString(fmt.Sprintf("[%s] Work experience\n", checkmark(report.HasExperience)))
	output.WriteString(fmt.Sprintf("[%s] Education\n", checkmark(report.HasEducation)))
	output.WriteString(fmt.Sprintf("[%s] Skills (3 or more)\n", checkmark(report.HasSkills)))
	output.WriteString(fmt.Sprintf("[%s] Languages\n", checkmark(report.HasLanguages)))
	output.WriteString(fmt.Sprintf("[%s] Cover letter\n", checkmark(report.HasCoverLetter)))

	return output.String(), nil
}

func (sf *ScoreTextFormatter) SupportedType() string {
	return "Report"
}

// ScoreMarkdownFormatter handles markdown formatting for the completeness report
type ScoreMarkdownFormatter struct{}

func (sf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(score.Report)
	if !ok {
		return "", fmt.Errorf("expected score.Report, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Completeness\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", report.Total))
	output.WriteString(fmt.Sprintf("- [%s] Photo\n", checkmark(report.HasPhoto)))
	output.WriteString(fmt.Sprintf("- [%s] Professional summary\n", checkmark(report.HasSummary)))
	output.WriteString(fmt.Sprintf("- [%s] Work experience\n", checkmark(report.HasExperience)))
	output.WriteString(fmt.Sprintf("- [%s] Education\n", checkmark(report.HasEducation)))
	output.WriteString(fmt.Sprintf("- [%s] Skills (3 or more)\n", checkmark(report.HasSkills)))
	output.WriteString(fmt.Sprintf("- [%s] Languages\n", checkmark(report.HasLanguages)))
	output.WriteString(fmt.Sprintf("- [%s] Cover letter\n", checkmark(report.HasCoverLetter)))

	return output.String(), nil
}

func (sf *ScoreMarkdownFormatter) SupportedType() string {
	return "Report"
}

// TreeTextFormatter handles text formatting for a rendered layout tree
type TreeTextFormatter struct{}

func (tf *TreeTextFormatter) Format(data any) (string, error) {
	tree, ok := data.(render.Tree)
	if !ok {
		return "", fmt.Errorf("expected render.Tree, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(string(tree.Template))))
	if tree.Name != "" {
		output.WriteString(tree.Name + "\n")
	}
	if tree.JobTitle != "" {
		output.WriteString(tree.JobTitle + "\n")
	}
	output.WriteString("\n")

	for _, region := range tree.Regions {
		output.WriteString(fmt.Sprintf("--- %s ---\n", region.Name))
		for _, section := range region.Sections {
			output.WriteString(fmt.Sprintf("%s:\n", section.Kind))
			for _, entry := range section.Entries {
				writeEntryText(&output, entry)
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func writeEntryText(output *strings.Builder, entry render.Entry) {
	line := entry.Heading
	if entry.Subheading != "" {
		if line != "" {
			line += " - "
		}
		line += entry.Subheading
	}
	if entry.Dates != "" {
		line += " (" + entry.Dates + ")"
	}
	if entry.Level != "" {
		line += " [" + entry.Level + "]"
	}
	if line != "" {
		output.WriteString("  " + line + "\n")
	}
	if entry.Body != "" {
		output.WriteString("  " + entry.Body + "\n")
	}
}

func (tf *TreeTextFormatter) SupportedType() string {
	return "Tree"
}

// TreeMarkdownFormatter handles markdown formatting for a rendered layout tree
type TreeMarkdownFormatter struct{}

func (tf *TreeMarkdownFormatter) Format(data any) (string, error) {
	tree, ok := data.(render.Tree)
	if !ok {
		return "", fmt.Errorf("expected render.Tree, got %T", data)
	}

	var output strings.Builder

	if tree.Name != "" {
		output.WriteString("# " + tree.Name + "\n\n")
	} else {
		output.WriteString("# Resume\n\n")
	}
	if tree.JobTitle != "" {
		output.WriteString("_" + tree.JobTitle + "_\n\n")
	}

	for _, region := range tree.Regions {
		for _, section := range region.Sections {
			output.WriteString(fmt.Sprintf("## %s\n\n", section.Kind))
			for _, entry := range section.Entries {
				writeEntryMarkdown(&output, entry)
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func writeEntryMarkdown(output *strings.Builder, entry render.Entry) {
	line := entry.Heading
	if entry.Subheading != "" {
		if line != "" {
			line += " - "
		}
		line += entry.Subheading
	}
	if entry.Dates != "" {
		line += " (" + entry.Dates + ")"
	}
	if line != "" {
		output.WriteString("**" + line + "**\n\n")
	}
	if entry.Body != "" {
		output.WriteString(entry.Body + "\n\n")
	}
}

func (tf *TreeMarkdownFormatter) SupportedType() string {
	return "Tree"
}

// DocumentTextFormatter summarizes an imported or loaded document
type DocumentTextFormatter struct{}

func (df *DocumentTextFormatter) Format(data any) (string, error) {
	doc, ok := data.(resume.Document)
	if !ok {
		return "", fmt.Errorf("expected resume.Document, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME DOCUMENT ===\n\n")
	output.WriteString(fmt.Sprintf("Name: %s\n", doc.PersonalInfo.FullName))
	output.WriteString(fmt.Sprintf("Title: %s\n", doc.PersonalInfo.JobTitle))
	output.WriteString(fmt.Sprintf("Email: %s\n", doc.PersonalInfo.Email))
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Experience entries: %d\n", len(doc.Experience)))
	output.WriteString(fmt.Sprintf("Education entries:  %d\n", len(doc.Education)))
	output.WriteString(fmt.Sprintf("Skills:             %d\n", len(doc.Skills)))
	output.WriteString(fmt.Sprintf("Languages:          %d\n", len(doc.Languages)))
	output.WriteString(fmt.Sprintf("Template:           %s\n", doc.Meta.Template))

	return output.String(), nil
}

func (df *DocumentTextFormatter) SupportedType() string {
	return "Document"
}

// DocumentMarkdownFormatter summarizes a document as markdown
type DocumentMarkdownFormatter struct{}

func (df *DocumentMarkdownFormatter) Format(data any) (string, error) {
	doc, ok := data.(resume.Document)
	if !ok {
		return "", fmt.Errorf("expected resume.Document, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Document\n\n")
	output.WriteString(fmt.Sprintf("**Name:** %s\n\n", doc.PersonalInfo.FullName))
	output.WriteString(fmt.Sprintf("**Title:** %s\n\n", doc.PersonalInfo.JobTitle))
	output.WriteString(fmt.Sprintf("**Email:** %s\n\n", doc.PersonalInfo.Email))
	output.WriteString("| Section | Entries |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Experience | %d |\n", len(doc.Experience)))
	output.WriteString(fmt.Sprintf("| Education | %d |\n", len(doc.Education)))
	output.WriteString(fmt.Sprintf("| Skills | %d |\n", len(doc.Skills)))
	output.WriteString(fmt.Sprintf("| Languages | %d |\n", len(doc.Languages)))

	return output.String(), nil
}

func (df *DocumentMarkdownFormatter) SupportedType() string {
	return "Document"
}
