package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

func loadPrompt(templatePath string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templatesFS, templatePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// RenderExtractPreferences renders the preference-extraction prompt pair.
// KnownPreferences is the JSON of the previous snapshot so the model only
// reports new or changed fields.
func RenderExtractPreferences(userText, knownPreferences string) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = loadPrompt("templates/extract_preferences_system.md", nil)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/extract_preferences_user.md", map[string]string{
		"UserText":         userText,
		"KnownPreferences": knownPreferences,
	})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

// RenderRankOffers renders the offer-ranking prompt pair. Candidates is the
// JSON of the bounded candidate set, never the full catalog.
func RenderRankOffers(preferences, candidates string) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = loadPrompt("templates/rank_offers_system.md", nil)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/rank_offers_user.md", map[string]string{
		"Preferences": preferences,
		"Candidates":  candidates,
	})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

// RenderGenerateAnswer renders the response-synthesis prompt pair.
func RenderGenerateAnswer(preferences, matches, history string) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = loadPrompt("templates/generate_answer_system.md", nil)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/generate_answer_user.md", map[string]string{
		"Preferences": preferences,
		"Matches":     matches,
		"History":     history,
	})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}
