package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/menuvoice/menuvoice-rag/models"
)

const (
	// defaultTopK is the requested passage count before over-fetch policy.
	defaultTopK = 20
	// maxContextPassages caps the global context size after reranking.
	maxContextPassages = 5
)

// Orchestrator runs the full retrieval pipeline: detect restaurants, search
// the semantic index, rerank, assemble per-restaurant context. Stages are
// owned by the orchestrator and share one registry snapshot.
type Orchestrator struct {
	registry   []models.Restaurant
	normalizer *Normalizer
	detector   *Detector
	search     *SearchClient
	reranker   *Reranker
	assembler  *Assembler
}

func NewOrchestrator(registry []models.Restaurant, backend SearchBackend, menus *MenuStore) *Orchestrator {
	normalizer := NewNormalizer(RegistryAliases(registry))
	return &Orchestrator{
		registry:   registry,
		normalizer: normalizer,
		detector:   NewDetector(registry),
		search:     NewSearchClient(backend, normalizer),
		reranker:   NewReranker(),
		assembler:  NewAssembler(menus),
	}
}

// RegistryAliases collects every keyword plus the lowercased restaurant name
// itself, the vocabulary the normalizer treats as entity terms.
func RegistryAliases(registry []models.Restaurant) []string {
	var aliases []string
	for _, r := range registry {
		if r.Name != "" {
			aliases = append(aliases, strings.ToLower(r.Name))
		}
		aliases = append(aliases, r.Keywords...)
	}
	return aliases
}

// Process answers one query. It never returns an error: every degraded path
// (no detection, backend failure, empty index) still yields a well-formed
// Result so the caller can respond with whatever context exists.
func (o *Orchestrator) Process(ctx context.Context, query string) Result {
	detected := o.detector.Detect(query)

	var candidates []Candidate
	for _, d := range detected {
		candidates = append(candidates, Candidate{ID: d.RestaurantID, Name: d.Name})
	}
	if len(candidates) == 0 {
		// Nothing detected: search across the whole registry.
		slog.Info("no restaurant detected, searching all", "query", query)
		for _, r := range o.registry {
			if r.ID == "" || r.Name == "" {
				continue
			}
			candidates = append(candidates, Candidate{ID: r.ID, Name: r.Name})
		}
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	passages := o.search.Search(ctx, query, ids, defaultTopK)

	terms := o.normalizer.ExtractKeyTerms(query)
	queryTerms := make([]string, 0, len(terms.FoodTerms)+len(terms.Restaurants))
	queryTerms = append(queryTerms, terms.FoodTerms...)
	queryTerms = append(queryTerms, terms.Restaurants...)

	ranked := o.reranker.Rerank(passages, query, queryTerms)
	if len(ranked) > maxContextPassages {
		ranked = ranked[:maxContextPassages]
	}

	focus := focusRestaurant(detected)
	bundle := o.assembler.Assemble(query, ranked, candidates, focus)

	queryType := ClassifyQueryType(query)

	return Result{
		DetectedRestaurants: detected,
		Context:             bundle.Text(),
		Suggestions:         suggestions(queryType, len(detected)),
		QueryType:           queryType,
	}
}

// focusRestaurant narrows context to a single restaurant only when the query
// names exactly one explicitly, or implies exactly one by category. Multiple
// explicit mentions mean a comparison, so no focus applies.
func focusRestaurant(detected []DetectionResult) string {
	var explicit []DetectionResult
	for _, d := range detected {
		if d.DetectionType == DetectionExplicit || d.DetectionType == DetectionExplicitAndCategory {
			explicit = append(explicit, d)
		}
	}

	switch {
	case len(explicit) == 1:
		return explicit[0].RestaurantID
	case len(explicit) > 1:
		return ""
	case len(detected) == 1:
		return detected[0].RestaurantID
	}
	return ""
}

// ClassifyQueryType buckets the query by its dominant vocabulary; the bucket
// order encodes priority, deals before pricing before location.
func ClassifyQueryType(query string) string {
	q := strings.ToLower(query)
	for _, bucket := range queryTypeBuckets {
		if containsAny(q, bucket.keywords) {
			return bucket.name
		}
	}
	return "general"
}

// suggestions picks at most three follow-up prompts. With several detected
// restaurants the comparison prompts come first.
func suggestions(queryType string, detectedCount int) []string {
	var out []string
	if detectedCount > 1 {
		out = append(out, multiRestaurantSuggestions...)
	}

	table, ok := suggestionsByType[queryType]
	if !ok {
		table = suggestionsByType["general"]
	}
	out = append(out, table...)

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
