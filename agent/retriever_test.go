package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
)

func retrievalCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	offers := []*catalog.Offer{
		{
			Reference:    "JAP-1",
			ProductName:  "Le Japon des traditions",
			Description:  "Circuit culturel de Tokyo à Kyoto",
			Destinations: []catalog.Place{{City: "Tokyo", Country: "Japon"}},
			DurationDays: 12,
			OfferType:    "circuit culturel",
			Embedding:    []float32{1, 0},
		},
		{
			Reference:    "ITA-1",
			ProductName:  "Douceur italienne",
			Description:  "Séjour détente sur la côte",
			Destinations: []catalog.Place{{City: "Sorrente", Country: "Italie"}},
			DurationDays: 8,
			OfferType:    "séjour détente",
			Embedding:    []float32{0, 1},
		},
		{
			Reference:    "JAP-2",
			ProductName:  "Japon moderne",
			Description:  "Tokyo et Osaka côté néons",
			Destinations: []catalog.Place{{City: "Osaka", Country: "Japon"}},
			DurationDays: 9,
			OfferType:    "citytrip",
			Embedding:    []float32{0.9, 0.1},
		},
	}

	c, err := catalog.New(offers)
	require.NoError(t, err)
	return c
}

func embeddingRouter(vector []float32, fail bool) *llm.Router {
	switches := llm.NewSwitchStore()
	if fail {
		switches.Set(llm.RoleEmbedding, false)
	}

	config := llm.RoleConfig{
		llm.RoleEmbedding: {Primary: llm.ModelSpec{Provider: "stub", Name: "stub-embed"}},
	}
	return llm.NewRouter(config, switches,
		llm.WithEmbedderFactory(func(llm.ModelSpec) (llm.Embedder, error) {
			return fixedEmbedder{vector: vector}, nil
		}))
}

type fixedEmbedder struct{ vector []float32 }

func (e fixedEmbedder) GetModel() string { return "stub-embed" }
func (e fixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func TestRetrieveSemantic(t *testing.T) {
	cat := retrievalCatalog(t)
	index, err := catalog.NewIndex(cat)
	require.NoError(t, err)

	step := NewRetrieveStep(embeddingRouter([]float32{1, 0}, false), cat, index, 2, 100000)
	hits := step.Run(context.Background(), memory.Preferences{Destination: "Japon", Duration: "12 jours"})

	require.Len(t, hits, 2)
	assert.Equal(t, "JAP-1", hits[0].Offer.Reference)
	assert.Equal(t, "JAP-2", hits[1].Offer.Reference)
}

func TestRetrieveKeywordFallback(t *testing.T) {
	cat := retrievalCatalog(t)
	index, err := catalog.NewIndex(cat)
	require.NoError(t, err)

	step := NewRetrieveStep(embeddingRouter(nil, true), cat, index, 8, 100000)
	hits := step.Run(context.Background(), memory.Preferences{Destination: "Japon", TravelStyle: "culturel"})

	require.NotEmpty(t, hits)
	// JAP-1 matches both terms, JAP-2 only one.
	assert.Equal(t, "JAP-1", hits[0].Offer.Reference)
	for _, hit := range hits {
		assert.NotEqual(t, "ITA-1", hit.Offer.Reference)
	}
}

func TestRetrieveEmptyPreferences(t *testing.T) {
	cat := retrievalCatalog(t)
	index, err := catalog.NewIndex(cat)
	require.NoError(t, err)

	step := NewRetrieveStep(embeddingRouter([]float32{1, 0}, false), cat, index, 8, 100000)
	assert.Empty(t, step.Run(context.Background(), memory.Preferences{}))
}

func TestRetrieveTokenBudgetCapsCandidates(t *testing.T) {
	cat := retrievalCatalog(t)
	index, err := catalog.NewIndex(cat)
	require.NoError(t, err)

	// A tiny budget forces the candidate cap down to one.
	step := NewRetrieveStep(embeddingRouter([]float32{1, 0}, false), cat, index, 8, 1)
	hits := step.Run(context.Background(), memory.Preferences{Destination: "Japon", Duration: "12 jours"})

	assert.Len(t, hits, 1)
}
