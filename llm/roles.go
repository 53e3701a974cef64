package llm

import (
	"sync"
)

// Role names a model function within the pipeline. Each role resolves to an
// ordered chain of concrete models.
type Role string

const (
	RoleReasoning  Role = "reasoning"
	RoleGeneration Role = "generation"
	RoleMatching   Role = "matching"
	RoleExtraction Role = "extraction"
	RoleEmbedding  Role = "embedding"
)

// Roles lists every known role in a stable order.
func Roles() []Role {
	return []Role{RoleReasoning, RoleGeneration, RoleMatching, RoleExtraction, RoleEmbedding}
}

// ModelSpec describes one concrete model within a role chain.
type ModelSpec struct {
	Provider    string  `json:"provider"` // "groq", "anthropic", "openai", "ollama"
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
}

// RoleChain is a primary model plus its ordered backups. The backup list is
// the whole retry policy: there is no additional backoff loop.
type RoleChain struct {
	Primary ModelSpec   `json:"primary"`
	Backups []ModelSpec `json:"backups"`
}

// Chain returns the full ordered call list.
func (rc RoleChain) Chain() []ModelSpec {
	chain := make([]ModelSpec, 0, 1+len(rc.Backups))
	chain = append(chain, rc.Primary)
	chain = append(chain, rc.Backups...)
	return chain
}

// RoleConfig maps every role to its chain. It is built once from
// configuration and injected into the Router; runtime enable/disable state
// lives in SwitchStore, not here.
type RoleConfig map[Role]RoleChain

// SwitchStore holds the per-role enable switches. Reads vastly outnumber
// writes, so a plain RWMutex suffices. Toggles take effect on the next call.
type SwitchStore struct {
	mu      sync.RWMutex
	enabled map[Role]bool
}

// NewSwitchStore creates a store with every known role enabled.
func NewSwitchStore() *SwitchStore {
	enabled := make(map[Role]bool, len(Roles()))
	for _, r := range Roles() {
		enabled[r] = true
	}
	return &SwitchStore{enabled: enabled}
}

func (s *SwitchStore) Enabled(role Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[role]
}

func (s *SwitchStore) Set(role Role, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[role] = enabled
}

// Snapshot returns a copy of the switch map.
func (s *SwitchStore) Snapshot() map[Role]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Role]bool, len(s.enabled))
	for r, e := range s.enabled {
		out[r] = e
	}
	return out
}
