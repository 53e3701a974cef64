package agent

import (
	"context"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
)

// RetrieveStep builds the bounded candidate set for ranking. The candidate
// count is capped so that count × average-offer-token-size stays inside the
// ranking model's context budget. An empty result is a valid "no matches",
// never an error: embedding failures degrade to keyword containment.
type RetrieveStep struct {
	router  *llm.Router
	catalog *catalog.Catalog
	index   *catalog.Index

	maxCandidates  int
	avgOfferTokens int
}

func NewRetrieveStep(router *llm.Router, cat *catalog.Catalog, index *catalog.Index, maxCandidates, rankerTokenBudget int) *RetrieveStep {
	s := &RetrieveStep{
		router:         router,
		catalog:        cat,
		index:          index,
		maxCandidates:  maxCandidates,
		avgOfferTokens: averageOfferTokens(cat),
	}

	if budgetK := rankerTokenBudget / s.avgOfferTokens; budgetK < s.maxCandidates {
		s.maxCandidates = budgetK
	}
	if s.maxCandidates < 1 {
		s.maxCandidates = 1
	}
	return s
}

// averageOfferTokens samples the catalog to estimate how many tokens one
// offer costs inside a ranking prompt.
func averageOfferTokens(cat *catalog.Catalog) int {
	offers := cat.Offers()
	sample := len(offers)
	if sample > 20 {
		sample = 20
	}

	total := 0
	for _, o := range offers[:sample] {
		total += llm.CountTokens(candidateText(o))
	}

	avg := total / sample
	if avg < 1 {
		avg = 1
	}
	return avg
}

// Run returns candidates sorted by similarity descending.
func (s *RetrieveStep) Run(ctx context.Context, prefs memory.Preferences) []catalog.Hit {
	query := prefs.CanonicalQuery()
	if query == "" {
		return nil
	}

	vector, err := s.router.Embed(ctx, query)
	if err != nil {
		logger.Error("query embedding failed, using keyword retrieval", zap.Error(err))
		return s.keywordSearch(prefs)
	}

	hits, err := s.index.TopK(vector, s.maxCandidates)
	if err != nil {
		logger.Error("vector search failed, using keyword retrieval", zap.Error(err))
		return s.keywordSearch(prefs)
	}

	return hits
}

// keywordSearch matches preference terms against offer text. Scores are the
// matched share of query terms, so they stay comparable to similarities.
func (s *RetrieveStep) keywordSearch(prefs memory.Preferences) []catalog.Hit {
	terms := keywordTerms(prefs)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		hit catalog.Hit
		pos int
	}

	var results []scored
	for pos, offer := range s.catalog.Offers() {
		haystack := offer.SearchText()

		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		results = append(results, scored{
			hit: catalog.Hit{Offer: offer, Score: float32(matched) / float32(len(terms))},
			pos: pos,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].hit.Score != results[j].hit.Score {
			return results[i].hit.Score > results[j].hit.Score
		}
		return results[i].pos < results[j].pos
	})

	if len(results) > s.maxCandidates {
		results = results[:s.maxCandidates]
	}

	hits := make([]catalog.Hit, len(results))
	for i, r := range results {
		hits[i] = r.hit
	}
	return hits
}

func keywordTerms(prefs memory.Preferences) []string {
	var terms []string
	for _, field := range []string{prefs.Destination, prefs.TravelStyle} {
		for _, word := range strings.Fields(strings.ToLower(field)) {
			if len(word) > 2 {
				terms = append(terms, word)
			}
		}
	}
	return terms
}
