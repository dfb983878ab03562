package extract

import (
	"context"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	e := NewDocconvExtractor(nil)

	text, err := e.Extract(context.Background(), strings.NewReader("Maria Santos\nPlatform Engineer"), "text/plain")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(text, "Maria Santos") {
		t.Errorf("Extracted text missing content: %q", text)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	e := NewDocconvExtractor(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Extract(ctx, strings.NewReader("ignored"), "text/plain"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
