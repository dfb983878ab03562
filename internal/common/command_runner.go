package common

import (
	"context"
	"fmt"
	"os"

	"cvforge/internal/assist"
	"cvforge/internal/errors"
)

// CreateInputFunc defines how to build the assist input from raw file contents.
type CreateInputFunc[Input any] func(contents [][]byte) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AssistOperationFunc is a generic function signature for any assist operation with token usage.
type AssistOperationFunc[Input, Output any] func(context.Context, Input) (Output, *assist.TokenUsage, error)

// RunAssistCommand encapsulates the common logic for file-based CLI
// commands that call the assist gateway: read inputs, run the
// operation, report token usage and write the formatted result.
func RunAssistCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation AssistOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents := make([][]byte, len(args))
	for i, filename := range args {
		data, err := fileProcessor.ReadRawFile(filename)
		if err != nil {
			return err
		}
		contents[i] = data
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, err := operation(ctx, input)
	if err != nil {
		return err
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("AI token usage", "input_tokens", tokenUsage.InputTokens, "output_tokens", tokenUsage.OutputTokens, "total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n", tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
