// Package extract turns uploaded resume files into plain text for the
// import parser.
package extract

import (
	"context"
	"io"
	"strings"

	"code.sajari.com/docconv"

	"cvforge/internal/errors"
)

// TextExtractor is the extraction port used by the import flow.
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, mimeType string) (string, error)
}

// DocconvExtractor extracts text from PDF and office documents via
// docconv. Plain text passes through untouched.
type DocconvExtractor struct {
	logger *errors.Logger
}

func NewDocconvExtractor(logger *errors.Logger) *DocconvExtractor {
	return &DocconvExtractor{logger: logger}
}

var _ TextExtractor = (*DocconvExtractor)(nil)

func (e *DocconvExtractor) Extract(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.HasPrefix(mimeType, "text/") {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read text upload", err)
		}
		return string(data), nil
	}

	res, err := docconv.Convert(r, mimeType, true)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeExtractionFailed, "failed to extract text from document", err).
			WithContext("mime_type", mimeType)
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", errors.NewValidationError(errors.ErrCodeExtractionFailed,
			"document contains no extractable text", nil).
			WithContext("mime_type", mimeType)
	}

	if e.logger != nil {
		e.logger.Debug("Extracted document text",
			"mime_type", mimeType,
			"text_length", len(text))
	}
	return text, nil
}
