package catalog

import (
	"fmt"
	"math"
	"slices"

	"github.com/SaiNageswarS/go-collection-boot/ds"
)

// Hit is one nearest-neighbor result.
type Hit struct {
	Offer *Offer
	Score float32 // cosine similarity in [-1, 1]
}

// Index is an exact nearest-neighbor index over offer embeddings. It is
// read-only after construction and safe for concurrent queries.
type Index struct {
	dim    int
	offers []*Offer       // only offers that carry an embedding
	pos    map[string]int // reference → catalog position, for tie-breaking
}

// NewIndex builds the index from a catalog. Offers without embeddings are
// skipped; they stay reachable through the keyword fallback.
func NewIndex(c *Catalog) (*Index, error) {
	embedded := slices.DeleteFunc(slices.Clone(c.Offers()), func(o *Offer) bool { return len(o.Embedding) == 0 })

	if len(embedded) == 0 {
		return nil, fmt.Errorf("no offers carry embeddings")
	}

	dim := len(embedded[0].Embedding)
	for _, o := range embedded {
		if len(o.Embedding) != dim {
			return nil, fmt.Errorf("offer %s has embedding dimension %d, want %d", o.Reference, len(o.Embedding), dim)
		}
	}

	pos := make(map[string]int, c.Len())
	for i, o := range c.Offers() {
		pos[o.Reference] = i
	}

	return &Index{dim: dim, offers: embedded, pos: pos}, nil
}

// Len returns the number of indexed offers.
func (idx *Index) Len() int {
	return len(idx.offers)
}

// TopK returns up to k offers most similar to the query vector, sorted by
// similarity descending. Catalog order breaks score ties so results are
// deterministic.
func (idx *Index) TopK(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	// Keep the best k with a min-heap; the worst of the kept set sits on top.
	h := ds.NewMinHeap(func(a, b Hit) bool {
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		// Ties: the later catalog position is worse, popped first.
		return idx.pos[a.Offer.Reference] > idx.pos[b.Offer.Reference]
	})

	for _, o := range idx.offers {
		h.Push(Hit{Offer: o, Score: cosine(query, o.Embedding)})
		if h.Len() > k {
			h.Pop()
		}
	}

	hits := h.ToSortedSlice()
	slices.Reverse(hits) // highest score first
	return hits, nil
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
