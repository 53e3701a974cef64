package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
	"github.com/hazemmrad17/cftravel-sub000/prompts"
)

// ExtractStep turns a free-text user message into a preference patch. The
// model path is best-effort: malformed model output degrades to vocabulary
// extraction, so a turn never fails on extraction.
type ExtractStep struct {
	router *llm.Router
}

func NewExtractStep(router *llm.Router) *ExtractStep {
	return &ExtractStep{router: router}
}

type preferencePatch struct {
	Destination   string     `json:"destination"`
	Duration      flexString `json:"duration"`
	Budget        string     `json:"budget"`
	TravelStyle   string     `json:"travel_style"`
	TravelerCount flexInt    `json:"traveler_count"`
	Timing        string     `json:"timing"`
}

// flexString tolerates models emitting a number where a string is expected.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(strconv.Itoa(int(n)))
	}
	return nil
}

// flexInt tolerates models emitting a quoted number.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(v)
		}
	}
	return nil
}

// Run extracts a partial preference patch from userText. Fields absent from
// the message are left zero so merging never clears known values.
func (s *ExtractStep) Run(ctx context.Context, userText string, known memory.Preferences) memory.Preferences {
	knownJSON, _ := json.Marshal(known)

	systemPrompt, userPrompt, err := prompts.RenderExtractPreferences(userText, string(knownJSON))
	if err != nil {
		logger.Error("failed to render extraction prompt", zap.Error(err))
		return VocabularyExtract(userText)
	}

	var raw strings.Builder
	err = s.router.Invoke(ctx, llm.RoleExtraction,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt))

	if err != nil {
		logger.Error("preference extraction model failed, using vocabulary fallback", zap.Error(err))
		return VocabularyExtract(userText)
	}

	patch, err := parsePreferencePatch(raw.String())
	if err != nil {
		logger.Error("unparseable extraction output, using vocabulary fallback",
			zap.String("output", raw.String()), zap.Error(err))
		return VocabularyExtract(userText)
	}

	return patch
}

// parsePreferencePatch decodes the model's JSON, tolerating prose around the
// object by slicing from the first '{' to the last '}'.
func parsePreferencePatch(response string) (memory.Preferences, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start >= end {
		return memory.Preferences{}, fmt.Errorf("no JSON object in extraction output")
	}

	var patch preferencePatch
	if err := json.Unmarshal([]byte(response[start:end+1]), &patch); err != nil {
		return memory.Preferences{}, fmt.Errorf("error unmarshaling extraction output: %w", err)
	}

	return memory.Preferences{
		Destination:   strings.TrimSpace(patch.Destination),
		Duration:      normalizeDuration(string(patch.Duration)),
		Budget:        strings.ToLower(strings.TrimSpace(patch.Budget)),
		TravelStyle:   strings.ToLower(strings.TrimSpace(patch.TravelStyle)),
		TravelerCount: int(patch.TravelerCount),
		Timing:        strings.ToLower(strings.TrimSpace(patch.Timing)),
	}, nil
}

// normalizeDuration renders any duration the model produced as "N jours".
func normalizeDuration(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}

	if m := durationPattern.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "semaine") {
			n *= 7
		}
		return fmt.Sprintf("%d jours", n)
	}

	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return fmt.Sprintf("%d jours", n)
	}
	return raw
}

var (
	durationPattern = regexp.MustCompile(`(\d+)\s*(jours?|semaines?|nuits?)`)
	travelerPattern = regexp.MustCompile(`(\d+)\s*(personnes?|voyageurs?|adultes?)`)
)

// destinationVocabulary maps lowercase mentions to canonical names.
var destinationVocabulary = map[string]string{
	"japon": "Japon", "italie": "Italie", "grèce": "Grèce", "grece": "Grèce",
	"maroc": "Maroc", "thaïlande": "Thaïlande", "thailande": "Thaïlande",
	"islande": "Islande", "pérou": "Pérou", "perou": "Pérou",
	"canada": "Canada", "espagne": "Espagne", "portugal": "Portugal",
	"vietnam": "Vietnam", "indonésie": "Indonésie", "indonesie": "Indonésie",
	"bali": "Bali", "jordanie": "Jordanie", "namibie": "Namibie",
	"costa rica": "Costa Rica", "norvège": "Norvège", "norvege": "Norvège",
	"égypte": "Égypte", "egypte": "Égypte", "mexique": "Mexique",
	"inde": "Inde", "croatie": "Croatie", "afrique du sud": "Afrique du Sud",
}

var budgetVocabulary = map[string]string{
	"pas cher": "économique", "économique": "économique", "economique": "économique",
	"petit budget": "économique", "budget serré": "économique",
	"confort": "confort", "milieu de gamme": "confort",
	"luxe": "luxe", "haut de gamme": "luxe", "luxueux": "luxe",
}

var styleVocabulary = map[string]string{
	"aventure": "aventure", "culturel": "culturel", "culture": "culturel",
	"détente": "détente", "detente": "détente", "repos": "détente", "relax": "détente",
	"plage": "plage", "randonnée": "randonnée", "randonnee": "randonnée",
	"trek": "randonnée", "safari": "safari", "croisière": "croisière",
	"croisiere": "croisière", "famille": "famille", "romantique": "romantique",
}

var timingVocabulary = []string{
	"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août",
	"septembre", "octobre", "novembre", "décembre",
	"été", "hiver", "printemps", "automne",
}

// VocabularyExtract is the deterministic fallback extraction over a fixed
// French vocabulary. It only reports what it can literally find.
func VocabularyExtract(userText string) memory.Preferences {
	text := strings.ToLower(userText)
	var patch memory.Preferences

	for mention, canonical := range destinationVocabulary {
		if strings.Contains(text, mention) {
			patch.Destination = canonical
			break
		}
	}

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		patch.Duration = normalizeDuration(m[0])
	}

	for mention, tier := range budgetVocabulary {
		if strings.Contains(text, mention) {
			patch.Budget = tier
			break
		}
	}

	for mention, style := range styleVocabulary {
		if strings.Contains(text, mention) {
			patch.TravelStyle = style
			break
		}
	}

	for _, period := range timingVocabulary {
		if strings.Contains(text, period) {
			patch.Timing = period
			break
		}
	}

	if m := travelerPattern.FindStringSubmatch(text); m != nil {
		patch.TravelerCount, _ = strconv.Atoi(m[1])
	} else if strings.Contains(text, "en couple") {
		patch.TravelerCount = 2
	} else if strings.Contains(text, "en solo") || strings.Contains(text, "tout seul") {
		patch.TravelerCount = 1
	}

	return patch
}
