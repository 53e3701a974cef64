package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
	"github.com/hazemmrad17/cftravel-sub000/prompts"
)

// historyWindow caps how many trailing turns feed the generation prompt.
const historyWindow = 6

// SynthesizeStep produces the final prose reply through the generation
// model, streaming chunks to the reporter as they arrive.
type SynthesizeStep struct {
	router *llm.Router
}

func NewSynthesizeStep(router *llm.Router) *SynthesizeStep {
	return &SynthesizeStep{router: router}
}

// Run streams the reply and returns the accumulated text. On mid-stream
// failure (including client disconnect) the already-produced prefix is
// returned alongside the error so the caller can persist it as a complete
// turn.
func (s *SynthesizeStep) Run(ctx context.Context, reporter Reporter, prefs memory.Preferences, matches []catalog.Match, turns []memory.Turn) (string, error) {
	prefsJSON, _ := json.Marshal(prefs)

	matchesJSON := "[]"
	if len(matches) > 0 {
		data, err := json.Marshal(matches)
		if err != nil {
			return "", fmt.Errorf("error marshaling matches: %w", err)
		}
		matchesJSON = string(data)
	}

	systemPrompt, userPrompt, err := prompts.RenderGenerateAnswer(string(prefsJSON), matchesJSON, renderHistory(turns))
	if err != nil {
		return "", fmt.Errorf("error rendering answer prompt: %w", err)
	}

	var answer strings.Builder
	err = s.router.Invoke(ctx, llm.RoleGeneration,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		func(chunk string) error {
			answer.WriteString(chunk)
			return reporter.Content(chunk)
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithStreaming(true))

	return answer.String(), err
}

func renderHistory(turns []memory.Turn) string {
	start := 0
	if len(turns) > historyWindow {
		start = len(turns) - historyWindow
	}

	var b strings.Builder
	for _, turn := range turns[start:] {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}
