package agent

import (
	"strings"
	"unicode"

	"github.com/hazemmrad17/cftravel-sub000/memory"
)

// Classification is the interpreted intent of a reply to a confirmation
// prompt.
type Classification int

const (
	Affirmative Classification = iota
	Modifying
	Ambiguous
)

// Classifier interprets a user reply while offers are pending. The default
// is keyword-based; the signature allows swapping in a model-based
// classifier without touching the state machine.
type Classifier func(text string) Classification

var affirmativePhrases = []string{
	"oui", "ok", "d'accord", "daccord", "parfait", "très bien",
	"je confirme", "c'est bon", "allez-y", "allez y", "allons-y",
	"vas-y", "montrez-moi", "montre-moi", "montrez moi", "je veux voir",
	"go", "yes", "super",
}

var negationMarkers = []string{
	"non", "pas ", "plutôt", "plutot", "autre", "change", "différent",
	"different", "sauf", "finalement",
}

// ClassifyConfirmation is the default keyword classifier. Anything that is
// neither clearly affirmative nor clearly a change reads as Ambiguous; the
// state machine treats Ambiguous as Modifying, preferring to ask again over
// guessing.
func ClassifyConfirmation(text string) Classification {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Ambiguous
	}

	for _, marker := range negationMarkers {
		if strings.Contains(t, marker) {
			return Modifying
		}
	}

	tokens := wordTokens(t)
	for _, phrase := range affirmativePhrases {
		if containsWordSequence(tokens, wordTokens(phrase)) {
			return Affirmative
		}
	}

	// A message carrying fresh preference signal is a modification.
	if patch := VocabularyExtract(text); patch != (memory.Preferences{}) {
		return Modifying
	}

	return Ambiguous
}

// wordTokens splits on anything that is not a letter or digit, so hyphens
// and apostrophes separate words: "allez-y" and "allez y" tokenize alike.
func wordTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWordSequence reports whether phrase occurs in tokens as a run of
// whole words. Substring matching fires inside unrelated words ("goûter"
// contains "go"), which would release pending offers on a non-answer.
func containsWordSequence(tokens, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// clarifyingQuestion picks the next question for the missing required
// fields: a destination plus at least one of duration, style or budget.
func clarifyingQuestion(prefs memory.Preferences) string {
	if prefs.Destination == "" {
		return "Où souhaitez-vous partir ? Une destination précise ou une région du monde ?"
	}
	return "Très bien ! Pour affiner ma recherche : quelle durée, quel style de voyage (aventure, culturel, détente...) ou quel budget envisagez-vous ?"
}

// confirmationPrompt recaps the known preferences before releasing offers.
func confirmationPrompt(prefs memory.Preferences) string {
	return "Voici ce que j'ai compris : " + prefs.Summary() +
		". Voulez-vous voir les offres correspondantes ?"
}
