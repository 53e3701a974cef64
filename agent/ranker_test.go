package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
)

func rankerCandidates() []catalog.Hit {
	refs := []string{"A-1", "B-2", "C-3", "D-4"}
	hits := make([]catalog.Hit, len(refs))
	for i, ref := range refs {
		hits[i] = catalog.Hit{
			Offer: &catalog.Offer{Reference: ref, ProductName: "Voyage " + ref},
			Score: 0.9 - float32(i)*0.1,
		}
	}
	return hits
}

func TestParseRankResponse(t *testing.T) {
	candidates := rankerCandidates()

	t.Run("keeps only candidate references", func(t *testing.T) {
		response := `{"matches":[
			{"reference":"A-1","score":0.9,"rationale":"Correspond au style demandé."},
			{"reference":"HALLUCINATED","score":0.95,"rationale":"n'existe pas"},
			{"reference":"B-2","score":0.7,"rationale":"Bonne durée."}]}`

		matches, err := parseRankResponse(response, candidates)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "A-1", matches[0].Reference)
		assert.Equal(t, "B-2", matches[1].Reference)
	})

	t.Run("caps at three matches", func(t *testing.T) {
		response := `{"matches":[
			{"reference":"A-1","score":0.9},
			{"reference":"B-2","score":0.8},
			{"reference":"C-3","score":0.7},
			{"reference":"D-4","score":0.6}]}`

		matches, err := parseRankResponse(response, candidates)
		require.NoError(t, err)
		assert.Len(t, matches, 3)
	})

	t.Run("clamps scores into unit range", func(t *testing.T) {
		response := `{"matches":[
			{"reference":"A-1","score":3.5},
			{"reference":"B-2","score":-1}]}`

		matches, err := parseRankResponse(response, candidates)
		require.NoError(t, err)
		assert.Equal(t, 1.0, matches[0].Score)
		assert.Equal(t, 0.0, matches[1].Score)
	})

	t.Run("drops duplicate references", func(t *testing.T) {
		response := `{"matches":[
			{"reference":"A-1","score":0.9},
			{"reference":"A-1","score":0.8}]}`

		matches, err := parseRankResponse(response, candidates)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("orders by score descending", func(t *testing.T) {
		response := `{"matches":[
			{"reference":"C-3","score":0.5},
			{"reference":"A-1","score":0.9},
			{"reference":"B-2","score":0.7}]}`

		matches, err := parseRankResponse(response, candidates)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "A-1", matches[0].Reference)
		assert.Equal(t, "C-3", matches[2].Reference)
	})

	t.Run("fills empty rationales", func(t *testing.T) {
		matches, err := parseRankResponse(`{"matches":[{"reference":"A-1","score":0.9,"rationale":"  "}]}`, candidates)
		require.NoError(t, err)
		assert.Equal(t, genericRationale, matches[0].Rationale)
	})

	t.Run("only hallucinated references is unusable", func(t *testing.T) {
		_, err := parseRankResponse(`{"matches":[{"reference":"X-9","score":0.9}]}`, candidates)
		assert.Error(t, err)
	})

	t.Run("prose without JSON is unusable", func(t *testing.T) {
		_, err := parseRankResponse("Voici mes recommandations...", candidates)
		assert.Error(t, err)
	})
}

func TestSimilarityFallback(t *testing.T) {
	matches := similarityFallback(rankerCandidates())

	require.Len(t, matches, 3)
	assert.Equal(t, "A-1", matches[0].Reference)
	assert.Equal(t, genericRationale, matches[0].Rationale)
	assert.InDelta(t, 0.9, matches[0].Score, 1e-6)

	assert.Empty(t, similarityFallback(nil))
}
