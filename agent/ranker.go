package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
	"github.com/hazemmrad17/cftravel-sub000/prompts"
)

// maxMatches caps how many offers one reply may carry. Three keeps the
// answer scannable and bounds rendering cost downstream.
const maxMatches = 3

// RankStep asks the matching model to select and justify the best offers
// from the bounded candidate set. Unparseable model output degrades to
// similarity order with a generic rationale; only transport-level chain
// failure surfaces as an error.
type RankStep struct {
	router *llm.Router
}

func NewRankStep(router *llm.Router) *RankStep {
	return &RankStep{router: router}
}

// rankedCandidate is the offer shape shown to the matching model.
type rankedCandidate struct {
	Reference    string   `json:"reference"`
	ProductName  string   `json:"product_name"`
	Description  string   `json:"description"`
	Destinations []string `json:"destinations"`
	DurationDays int      `json:"duration_days"`
	OfferType    string   `json:"offer_type"`
	Highlights   []string `json:"highlights"`
}

type rankResponse struct {
	Matches []struct {
		Reference string  `json:"reference"`
		Score     float64 `json:"score"`
		Rationale string  `json:"rationale"`
	} `json:"matches"`
}

// Run ranks candidates against prefs. The returned list never exceeds
// maxMatches and only contains offers from the input candidate set.
func (s *RankStep) Run(ctx context.Context, prefs memory.Preferences, candidates []catalog.Hit) ([]catalog.Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	candidatesJSON, err := json.Marshal(candidateViews(candidates))
	if err != nil {
		return nil, fmt.Errorf("error marshaling candidates: %w", err)
	}

	prefsJSON, _ := json.Marshal(prefs)

	systemPrompt, userPrompt, err := prompts.RenderRankOffers(string(prefsJSON), string(candidatesJSON))
	if err != nil {
		return nil, fmt.Errorf("error rendering ranking prompt: %w", err)
	}

	var raw strings.Builder
	err = s.router.Invoke(ctx, llm.RoleMatching,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt))

	if err != nil {
		return nil, err
	}

	matches, parseErr := parseRankResponse(raw.String(), candidates)
	if parseErr != nil {
		logger.Error("unparseable ranking output, falling back to similarity order",
			zap.String("output", raw.String()), zap.Error(parseErr))
		return similarityFallback(candidates), nil
	}

	return matches, nil
}

func candidateViews(candidates []catalog.Hit) []rankedCandidate {
	views := make([]rankedCandidate, len(candidates))
	for i, hit := range candidates {
		o := hit.Offer

		destinations := make([]string, len(o.Destinations))
		for j, d := range o.Destinations {
			destinations[j] = d.City + ", " + d.Country
		}

		highlights := make([]string, len(o.Highlights))
		for j, h := range o.Highlights {
			highlights[j] = h.Title
		}

		views[i] = rankedCandidate{
			Reference:    o.Reference,
			ProductName:  o.ProductName,
			Description:  o.Description,
			Destinations: destinations,
			DurationDays: o.DurationDays,
			OfferType:    o.OfferType,
			Highlights:   highlights,
		}
	}
	return views
}

// candidateText renders the prompt share of one offer, for token budgeting.
func candidateText(o *catalog.Offer) string {
	data, _ := json.Marshal(candidateViews([]catalog.Hit{{Offer: o}}))
	return string(data)
}

func parseRankResponse(response string, candidates []catalog.Hit) ([]catalog.Match, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no JSON object in ranking output")
	}

	var parsed rankResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling ranking output: %w", err)
	}

	byRef := make(map[string]*catalog.Offer, len(candidates))
	for _, hit := range candidates {
		byRef[hit.Offer.Reference] = hit.Offer
	}

	var matches []catalog.Match
	for _, m := range parsed.Matches {
		offer, ok := byRef[m.Reference]
		if !ok {
			// Hallucinated reference: drop it rather than show an offer
			// the model was never given.
			continue
		}

		score := m.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}

		rationale := strings.TrimSpace(m.Rationale)
		if rationale == "" {
			rationale = genericRationale
		}

		matches = append(matches, catalog.Match{
			Reference: m.Reference,
			Score:     score,
			Rationale: rationale,
			Offer:     offer,
		})
		delete(byRef, m.Reference) // no duplicates

		if len(matches) == maxMatches {
			break
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("ranking output contained no usable match")
	}

	// Presentation order: score descending. The stable sort keeps the
	// candidate order on ties, which is itself deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

const genericRationale = "L'offre la plus proche de vos critères."

// similarityFallback keeps the top candidates in retrieval order.
func similarityFallback(candidates []catalog.Hit) []catalog.Match {
	n := len(candidates)
	if n > maxMatches {
		n = maxMatches
	}

	matches := make([]catalog.Match, n)
	for i, hit := range candidates[:n] {
		score := float64(hit.Score)
		if score < 0 {
			score = 0
		}
		matches[i] = catalog.Match{
			Reference: hit.Offer.Reference,
			Score:     score,
			Rationale: genericRationale,
			Offer:     hit.Offer,
		}
	}
	return matches
}
