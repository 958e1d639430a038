package retrieval

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

// MinSimilarityThreshold discards only catastrophically poor matches.
// Quality control belongs to the reranker, not this stage.
const MinSimilarityThreshold = -0.5

// Hit is one raw result from the semantic index: ordering is by increasing
// distance, metadata carries at least restaurant_id and restaurant_name.
type Hit struct {
	ID       string
	Distance float64
	Document string
	Metadata map[string]string
}

// BackendFilter is the single equality predicate the backend supports.
type BackendFilter struct {
	RestaurantID string
}

// SearchBackend is the semantic index the client wraps.
type SearchBackend interface {
	Query(ctx context.Context, text string, filter *BackendFilter, limit int) ([]Hit, error)
}

// SearchClient turns the backend's distance-ordered hits into similarity
// scored passages. It never returns an error: any backend failure degrades
// to an empty result so the orchestrator can fall back gracefully.
type SearchClient struct {
	backend    SearchBackend
	normalizer *Normalizer
}

func NewSearchClient(backend SearchBackend, normalizer *Normalizer) *SearchClient {
	return &SearchClient{
		backend:    backend,
		normalizer: normalizer,
	}
}

// Search retrieves scored passages for the query. With exactly one
// restaurant id the filter is pushed down to the backend; with several, the
// hits are filtered client side, since the backend predicate language only
// supports single-value equality.
func (c *SearchClient) Search(ctx context.Context, query string, restaurantIDs []string, topK int) []Passage {
	if c.backend == nil || topK <= 0 {
		return nil
	}

	searchQuery := c.normalizer.CreateSearchQuery(query)
	if searchQuery == "" {
		return nil
	}
	searchK := searchLimit(query, topK, len(restaurantIDs))

	var filter *BackendFilter
	if len(restaurantIDs) == 1 {
		filter = &BackendFilter{RestaurantID: restaurantIDs[0]}
	}

	hits, err := c.backend.Query(ctx, searchQuery, filter, searchK)
	if err != nil {
		slog.Error("vector search failed", "error", err, "query", searchQuery)
		return nil
	}

	var allowed map[string]struct{}
	if len(restaurantIDs) > 1 {
		allowed = make(map[string]struct{}, len(restaurantIDs))
		for _, id := range restaurantIDs {
			allowed[id] = struct{}{}
		}
	}

	passages := make([]Passage, 0, len(hits))
	for _, hit := range hits {
		restaurantID := metadataValue(hit.Metadata, "restaurant_id", "unknown")
		if allowed != nil {
			if _, ok := allowed[restaurantID]; !ok {
				continue
			}
		}

		similarity := l2ToSimilarity(hit.Distance)
		if similarity < MinSimilarityThreshold {
			continue
		}

		passages = append(passages, Passage{
			RestaurantID:   restaurantID,
			RestaurantName: metadataValue(hit.Metadata, "restaurant_name", "Unknown"),
			Content:        hit.Document,
			Similarity:     similarity,
			Metadata:       hit.Metadata,
		})
	}

	return passages
}

// searchLimit over-fetches ahead of reranking. Price and deal queries cast
// the widest net because price-bearing chunks are sparse among the top
// semantic matches.
func searchLimit(query string, topK, restaurantCount int) int {
	q := strings.ToLower(query)
	if containsAny(q, wideFetchKeywords) {
		return min(topK*3, 20)
	}
	if restaurantCount > 1 {
		return min(topK*2, 15)
	}
	return min(topK*2, 10)
}

// l2ToSimilarity converts an L2 distance on normalized vectors into a
// similarity in [0, 1]; a zero or negative distance maps to 1.0.
func l2ToSimilarity(distance float64) float64 {
	if distance <= 0 {
		return 1.0
	}
	return math.Max(0.0, math.Min(1.0, 1.0/(1.0+distance)))
}

func metadataValue(metadata map[string]string, key, fallback string) string {
	if v, ok := metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}
