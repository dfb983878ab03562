package cli

import (
	"cvforge/internal/common"
	"cvforge/internal/editor"
	"cvforge/internal/render"
	"cvforge/internal/resume"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [resume-file]",
	Short: "Project a resume document through a layout template",
	Long: `Project a resume document into the layout tree of one of the built-in
templates. With a file argument the document is read from that JSON
file; without one it is loaded from the configured store. The
--template flag overrides the template stored in the document.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if renderConfig.OutputFormat == "" {
			renderConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(renderConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRender,
}

var (
	renderConfig   common.CommandConfig
	renderTemplate string
	renderLang     string
)

func init() {
	renderCmd.Flags().StringVarP(&renderConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template override: modern, professional, elegant, creative, minimal")
	renderCmd.Flags().StringVar(&renderLang, "lang", "", "Heading language (default from config)")

	_ = renderCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = renderCmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"modern", "professional", "elegant", "creative", "minimal"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	doc, err := loadDocument(cmd, args, cfg, logger)
	if err != nil {
		return err
	}

	if renderTemplate != "" {
		doc = editor.SetTemplate(doc, resume.Template(renderTemplate))
	}

	lang := renderLang
	if lang == "" {
		lang = cfg.App.Language
	}

	tree := render.Project(doc, lang)
	logger.Info("Rendered document",
		"template", string(tree.Template),
		"regions", len(tree.Regions),
		"lang", lang)

	return common.NewOutputHandler(logger).HandleOutput(tree, renderConfig)
}
