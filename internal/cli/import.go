package cli

import (
	"bytes"
	"context"
	"fmt"

	"cvforge/internal/assist"
	"cvforge/internal/common"
	"cvforge/internal/errors"
	"cvforge/internal/extract"
	"cvforge/internal/resume"
	"cvforge/internal/utils"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [resume-file]",
	Short: "Import an existing resume file into a structured document",
	Long: `Import a resume from a PDF, Word or plain text file. The file's text
is extracted and parsed by AI into a structured resume document, which
is printed in the selected output format. Use --save to also persist
the imported document to the configured store.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if importConfig.OutputFormat == "" {
			importConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(importConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runImport,
}

var (
	importConfig common.CommandConfig
	importSave   bool
)

func init() {
	importCmd.Flags().StringVarP(&importConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	importCmd.Flags().StringVar(&importConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	importCmd.Flags().BoolVar(&importSave, "save", false, "Persist the imported document to the configured store")

	_ = importCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// importInput is the raw upload plus the MIME type derived from its
// file extension.
type importInput struct {
	data     []byte
	mimeType string
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if cfg.App.MaxImportSize > 0 {
		if info, err := utils.ValidateInputFileSize(args[0], cfg.App.MaxImportSize); err != nil {
			return errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("File %s exceeds the import limit of %s", args[0], utils.FormatFileSize(cfg.App.MaxImportSize)), err)
		} else if info != nil {
			logger.Debug("Import upload accepted", "size", utils.FormatFileSize(info.Size()))
		}
	}

	assistSvc, err := assist.NewService(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create assist service: %w", err)
	}
	defer func() {
		if err := assistSvc.Close(); err != nil {
			logger.Warn("Failed to close assist service", "error", err)
		}
	}()

	extractor := extract.NewDocconvExtractor(logger)
	mimeType := utils.MimeTypeForFile(args[0])

	createInput := func(contents [][]byte) (importInput, error) {
		if len(contents) != 1 {
			return importInput{}, fmt.Errorf("expected 1 file, got %d", len(contents))
		}
		return importInput{data: contents[0], mimeType: mimeType}, nil
	}

	logDetails := func(input importInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume import",
			"bytes", len(input.data),
			"mime_type", input.mimeType,
			"output_format", cmdCfg.OutputFormat)
	}

	importOperation := func(ctx context.Context, input importInput) (resume.Document, *assist.TokenUsage, error) {
		text, err := extractor.Extract(ctx, bytes.NewReader(input.data), input.mimeType)
		if err != nil {
			return resume.Document{}, nil, err
		}

		doc, tokenUsage, err := assistSvc.Provider.ParseResumeText(ctx, assist.ParseInput{Text: text})
		if err != nil {
			return resume.Document{}, tokenUsage, err
		}
		doc = resume.Heal(doc)

		if importSave {
			st, err := newStore(cfg, logger)
			if err != nil {
				return resume.Document{}, tokenUsage, fmt.Errorf("failed to create store: %w", err)
			}
			if err := st.Save(ctx, doc); err != nil {
				return resume.Document{}, tokenUsage, fmt.Errorf("failed to save imported document: %w", err)
			}
			logger.Info("Imported document saved", "backend", cfg.Store.Backend)
		}

		return doc, tokenUsage, nil
	}

	err = common.RunAssistCommand(
		cmd.Context(),
		logger,
		importConfig,
		args,
		createInput,
		importOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to import resume: %w", err)
	}
	logger.Info("Resume import completed successfully")
	return nil
}
