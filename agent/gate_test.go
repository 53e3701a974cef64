package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hazemmrad17/cftravel-sub000/memory"
)

func TestClassifyConfirmation(t *testing.T) {
	cases := []struct {
		text string
		want Classification
	}{
		{"oui", Affirmative},
		{"Oui, montrez-moi les offres", Affirmative},
		{"parfait, allez-y", Affirmative},
		{"d'accord", Affirmative},
		{"non, plutôt en Italie", Modifying},
		{"pas le Japon finalement", Modifying},
		{"je préfère autre chose", Modifying},
		{"en fait je veux partir au Maroc", Modifying},
		{"plutôt 3 semaines", Modifying},
		{"hmm je ne sais pas trop", Modifying},
		{"hmm je réfléchis encore", Ambiguous},
		{"c'était un superbe voyage", Ambiguous},
		{"nous goûterons la cuisine locale", Ambiguous},
		{"", Ambiguous},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyConfirmation(tc.text))
		})
	}
}

func TestClarifyingQuestion(t *testing.T) {
	q := clarifyingQuestion(memory.Preferences{})
	assert.Contains(t, q, "partir")

	q = clarifyingQuestion(memory.Preferences{Destination: "Japon"})
	assert.Contains(t, q, "durée")
}

func TestConfirmationPrompt(t *testing.T) {
	prompt := confirmationPrompt(memory.Preferences{Destination: "Japon", Duration: "14 jours"})
	assert.Contains(t, prompt, "Japon")
	assert.Contains(t, prompt, "14 jours")
	assert.Contains(t, prompt, "offres")
}
