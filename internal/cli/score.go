package cli

import (
	"fmt"

	"cvforge/internal/common"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/resume"
	"cvforge/internal/score"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]",
	Short: "Report the completeness score of a resume document",
	Long: `Compute the 0-100 completeness score of a resume document and show
which sections contribute to it. With a file argument the document is
read from that JSON file; without one it is loaded from the configured
store.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	doc, err := loadDocument(cmd, args, cfg, logger)
	if err != nil {
		return err
	}

	report := score.Breakdown(doc)
	logger.Info("Computed completeness score", "score", report.Total)

	return common.NewOutputHandler(logger).HandleOutput(report, scoreConfig)
}

// loadDocument resolves the document for read-only commands: an
// explicit file argument wins, otherwise the configured store is used.
// A missing store entry yields a fresh empty document.
func loadDocument(cmd *cobra.Command, args []string, cfg *config.Config, logger *errors.Logger) (resume.Document, error) {
	if len(args) == 1 {
		return common.NewFileProcessor(logger).LoadDocument(args[0])
	}

	st, err := newStore(cfg, logger)
	if err != nil {
		return resume.Document{}, fmt.Errorf("failed to create store: %w", err)
	}

	doc, found, err := st.Load(cmd.Context())
	if err != nil {
		return resume.Document{}, fmt.Errorf("failed to load document from store: %w", err)
	}
	if !found {
		logger.Debug("No stored document found, using an empty one")
	}
	return doc, nil
}
