package config

import (
	"fmt"
	"os"
)

// loadPromptsFromFiles resolves every *File prompt reference into its
// inline counterpart. File content takes precedence over inline values
// so operators can manage long prompts outside the YAML.
func (c *Config) loadPromptsFromFiles() error {
	prompts := []*PromptConfig{
		&c.AI.CustomPrompts,
		&c.AI.Draft.CustomPrompts,
		&c.AI.Match.CustomPrompts,
		&c.AI.Audit.CustomPrompts,
		&c.AI.Parse.CustomPrompts,
	}

	for _, p := range prompts {
		entries := []struct {
			file   string
			target *string
		}{
			{p.SystemPrompts.DraftFile, &p.SystemPrompts.Draft},
			{p.SystemPrompts.MatchFile, &p.SystemPrompts.Match},
			{p.SystemPrompts.AuditFile, &p.SystemPrompts.Audit},
			{p.SystemPrompts.ParseFile, &p.SystemPrompts.Parse},
			{p.UserPrompts.DraftFile, &p.UserPrompts.Draft},
			{p.UserPrompts.MatchFile, &p.UserPrompts.Match},
			{p.UserPrompts.AuditFile, &p.UserPrompts.Audit},
			{p.UserPrompts.ParseFile, &p.UserPrompts.Parse},
		}
		for _, e := range entries {
			if e.file == "" {
				continue
			}
			content, err := os.ReadFile(e.file)
			if err != nil {
				return fmt.Errorf("failed to read prompt file %s: %w", e.file, err)
			}
			if len(content) == 0 {
				return fmt.Errorf("prompt file %s is empty", e.file)
			}
			*e.target = string(content)
		}
	}

	return nil
}
