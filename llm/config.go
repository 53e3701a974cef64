package llm

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRoleConfig reads role chains from a JSON file shaped as
// {"generation": {"primary": {...}, "backups": [...]}, ...}. An empty path
// yields DefaultRoleConfig.
func LoadRoleConfig(path string) (RoleConfig, error) {
	if path == "" {
		return DefaultRoleConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model config: %w", err)
	}

	var raw map[Role]RoleChain
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing model config: %w", err)
	}

	config := make(RoleConfig, len(raw))
	known := make(map[Role]bool, len(Roles()))
	for _, r := range Roles() {
		known[r] = true
	}

	for role, chain := range raw {
		if !known[role] {
			return nil, fmt.Errorf("unknown model role %q", role)
		}
		if chain.Primary.Name == "" {
			return nil, fmt.Errorf("role %q has no primary model", role)
		}
		config[role] = chain
	}

	return config, nil
}

// DefaultRoleConfig is the shipped chain layout: fast Groq-hosted models
// with a larger model or a second provider behind each primary.
func DefaultRoleConfig() RoleConfig {
	return RoleConfig{
		RoleReasoning: {
			Primary: ModelSpec{Provider: "groq", Name: "llama-3.3-70b-versatile", Temperature: 0.6, MaxTokens: 4096, TopP: 0.9},
			Backups: []ModelSpec{
				{Provider: "groq", Name: "llama-3.1-8b-instant", Temperature: 0.6, MaxTokens: 4096, TopP: 0.9},
			},
		},
		RoleGeneration: {
			Primary: ModelSpec{Provider: "groq", Name: "llama-3.3-70b-versatile", Temperature: 0.7, MaxTokens: 2048, TopP: 0.9},
			Backups: []ModelSpec{
				{Provider: "groq", Name: "llama-3.1-8b-instant", Temperature: 0.7, MaxTokens: 2048, TopP: 0.9},
				{Provider: "anthropic", Name: "claude-3-5-haiku-20241022", Temperature: 0.7, MaxTokens: 2048, TopP: 0.9},
			},
		},
		RoleMatching: {
			Primary: ModelSpec{Provider: "groq", Name: "llama-3.1-8b-instant", Temperature: 0.2, MaxTokens: 1024, TopP: 0.9},
			Backups: []ModelSpec{
				{Provider: "groq", Name: "llama-3.3-70b-versatile", Temperature: 0.2, MaxTokens: 1024, TopP: 0.9},
			},
		},
		RoleExtraction: {
			Primary: ModelSpec{Provider: "groq", Name: "llama-3.1-8b-instant", Temperature: 0.1, MaxTokens: 512, TopP: 0.9},
			Backups: []ModelSpec{
				{Provider: "groq", Name: "llama-3.3-70b-versatile", Temperature: 0.1, MaxTokens: 512, TopP: 0.9},
			},
		},
		RoleEmbedding: {
			Primary: ModelSpec{Provider: "ollama", Name: "nomic-embed-text"},
			Backups: []ModelSpec{
				{Provider: "openai", Name: "text-embedding-3-small"},
			},
		},
	}
}
