package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/llm"
)

// Catalog is the immutable-at-runtime collection of travel offers. It is
// loaded once at startup and read concurrently without locking afterwards.
type Catalog struct {
	offers []*Offer
	byRef  map[string]*Offer
}

// Load reads a JSON offer file and validates every entry. Offers without a
// reference or product name are rejected. An empty catalog is an error: the
// process must not serve traffic without offers to recommend.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	var offers []*Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %w", err)
	}

	return New(offers)
}

// New builds a catalog from already-decoded offers.
func New(offers []*Offer) (*Catalog, error) {
	c := &Catalog{byRef: make(map[string]*Offer, len(offers))}

	for _, o := range offers {
		if o.Reference == "" || o.ProductName == "" {
			return nil, &llm.ModelError{
				Kind:  llm.KindIndexUnavailable,
				Cause: fmt.Errorf("offer missing reference or product name"),
			}
		}
		if _, dup := c.byRef[o.Reference]; dup {
			return nil, &llm.ModelError{
				Kind:  llm.KindIndexUnavailable,
				Cause: fmt.Errorf("duplicate offer reference %s", o.Reference),
			}
		}

		c.offers = append(c.offers, o)
		c.byRef[o.Reference] = o
	}

	if len(c.offers) == 0 {
		return nil, &llm.ModelError{
			Kind:  llm.KindIndexUnavailable,
			Cause: fmt.Errorf("catalog is empty"),
		}
	}

	return c, nil
}

// Len returns the number of offers.
func (c *Catalog) Len() int {
	return len(c.offers)
}

// Get returns the offer for a reference, or nil.
func (c *Catalog) Get(reference string) *Offer {
	return c.byRef[reference]
}

// Offers returns all offers in catalog order.
func (c *Catalog) Offers() []*Offer {
	return c.offers
}

// Backfill embeds every offer that shipped without a precomputed embedding,
// fanning the embedding calls out over a bounded worker pool. Offers whose
// embedding call fails are left without a vector and only reachable through
// the keyword fallback.
func (c *Catalog) Backfill(ctx context.Context, embed func(ctx context.Context, text string) ([]float32, error), workers int) error {
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("error creating embedding pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, offer := range c.offers {
		if len(offer.Embedding) > 0 {
			continue
		}

		o := offer
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			vector, err := embed(ctx, o.EmbeddingText())
			if err != nil {
				logger.Error("failed to embed offer",
					zap.String("reference", o.Reference), zap.Error(err))
				return
			}
			o.Embedding = vector
		})
		if submitErr != nil {
			wg.Done()
			logger.Error("failed to submit embedding task",
				zap.String("reference", o.Reference), zap.Error(submitErr))
		}
	}

	wg.Wait()
	return nil
}
