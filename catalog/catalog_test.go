package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOffer(ref, name, country string) *Offer {
	return &Offer{
		Reference:    ref,
		ProductName:  name,
		Description:  "Un voyage à découvrir.",
		Destinations: []Place{{City: "Capitale", Country: country}},
		DurationDays: 10,
	}
}

func TestNewValidatesOffers(t *testing.T) {
	t.Run("accepts valid offers", func(t *testing.T) {
		c, err := New([]*Offer{
			testOffer("A-1", "Voyage A", "Japon"),
			testOffer("B-2", "Voyage B", "Italie"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, "Voyage A", c.Get("A-1").ProductName)
		assert.Nil(t, c.Get("missing"))
	})

	t.Run("rejects missing reference", func(t *testing.T) {
		_, err := New([]*Offer{testOffer("", "Voyage A", "Japon")})
		require.Error(t, err)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := New([]*Offer{testOffer("A-1", "", "Japon")})
		require.Error(t, err)
	})

	t.Run("rejects duplicate reference", func(t *testing.T) {
		_, err := New([]*Offer{
			testOffer("A-1", "Voyage A", "Japon"),
			testOffer("A-1", "Voyage B", "Italie"),
		})
		require.Error(t, err)
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offers.json")
	data := `[{"reference":"A-1","product_name":"Voyage A","description":"d","destinations":[{"city":"Tokyo","country":"Japon"}],"duration_days":12}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 12, c.Get("A-1").DurationDays)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestBackfill(t *testing.T) {
	offers := make([]*Offer, 5)
	for i := range offers {
		offers[i] = testOffer(fmt.Sprintf("R-%d", i), fmt.Sprintf("Voyage %d", i), "Japon")
	}
	c, err := New(offers)
	require.NoError(t, err)

	var mu sync.Mutex
	embedded := map[string]bool{}

	err = c.Backfill(context.Background(), func(ctx context.Context, text string) ([]float32, error) {
		mu.Lock()
		embedded[text] = true
		mu.Unlock()
		return []float32{1, 0}, nil
	}, 3)

	require.NoError(t, err)
	assert.Len(t, embedded, 5)
	for _, o := range c.Offers() {
		assert.NotEmpty(t, o.Embedding, "offer %s should carry an embedding", o.Reference)
	}
}

func TestBackfillToleratesFailures(t *testing.T) {
	c, err := New([]*Offer{
		testOffer("OK-1", "Voyage A", "Japon"),
		testOffer("KO-1", "Voyage B", "Italie"),
	})
	require.NoError(t, err)

	err = c.Backfill(context.Background(), func(ctx context.Context, text string) ([]float32, error) {
		if c.Get("KO-1").EmbeddingText() == text {
			return nil, errors.New("embedder down")
		}
		return []float32{1, 0}, nil
	}, 2)

	require.NoError(t, err, "a single failed offer must not fail the backfill")
	assert.NotEmpty(t, c.Get("OK-1").Embedding)
	assert.Empty(t, c.Get("KO-1").Embedding, "failed offer stays keyword-only")
}
