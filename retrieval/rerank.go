package retrieval

import (
	"math"
	"sort"
	"strings"
)

// Reranker rescores retrieved passages with a weighted blend of semantic
// similarity, keyword overlap, query-type signal and metadata match. The
// weights sum to 1.0 and every sub-score is capped to [0, 1] first.
type Reranker struct{}

func NewReranker() *Reranker {
	return &Reranker{}
}

// Rerank annotates each passage with a RerankScore and a FinalScore and
// sorts by FinalScore descending, stable with respect to retrieval order.
// FinalScore re-weights the composite against raw similarity once more so
// semantic relevance keeps a floor even when keyword heuristics disagree.
func (r *Reranker) Rerank(passages []Passage, query string, queryTerms []string) []RankedPassage {
	if len(passages) == 0 {
		return nil
	}

	ranked := make([]RankedPassage, 0, len(passages))
	for _, p := range passages {
		score := r.relevanceScore(p, query, queryTerms)
		ranked = append(ranked, RankedPassage{
			Passage:     p,
			RerankScore: score,
			FinalScore:  p.Similarity*0.4 + score*0.6,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	return ranked
}

func (r *Reranker) relevanceScore(p Passage, query string, queryTerms []string) float64 {
	content := strings.ToLower(p.Content)

	total := clamp01(p.Similarity)*0.4 +
		keywordScore(content, queryTerms)*0.3 +
		queryTypeScore(content, query)*0.2 +
		metadataScore(p, queryTerms)*0.1

	return math.Min(1.0, total)
}

// keywordScore is the fraction of query terms literally present in the
// passage content.
func keywordScore(content string, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0.0
	}
	matches := 0
	for _, term := range queryTerms {
		if strings.Contains(content, strings.ToLower(term)) {
			matches++
		}
	}
	return math.Min(1.0, float64(matches)/float64(len(queryTerms)))
}

// queryTypeScore boosts passages that answer the kind of question asked:
// price queries want literal prices, deal queries want deals (ideally with
// a price attached), menu queries want item-shaped text.
func queryTypeScore(content, query string) float64 {
	q := strings.ToLower(query)
	var score float64

	if containsAny(q, priceKeywords) {
		if priceRe.MatchString(content) {
			score += 1.0
		} else if containsAny(content, priceAdjacentWords) {
			score += 0.3
		}
	}

	if containsAny(q, dealKeywords) {
		hasDealWords := containsAny(content, dealKeywords)
		hasCombo := strings.Contains(content, "combo") || strings.Contains(content, "package")
		hasPrices := priceRe.MatchString(content)

		if hasDealWords || hasCombo {
			score += 0.5
		}
		if hasPrices && (hasDealWords || hasCombo) {
			score += 0.5
		}
	}

	if containsAny(q, menuKeywords) {
		if containsAny(content, itemDescriptorWords) {
			score += 0.5
		}
	}

	return math.Min(1.0, score)
}

func metadataScore(p Passage, queryTerms []string) float64 {
	var score float64

	name := strings.ToLower(p.RestaurantName)
	for _, term := range queryTerms {
		t := strings.ToLower(term)
		if t == "" || name == "" {
			continue
		}
		if strings.Contains(name, t) || strings.Contains(t, name) {
			score += 0.5
			break
		}
	}

	chunkType := strings.ToLower(p.Metadata["type"])
	if strings.Contains(chunkType, "menu") && anyTermContains(queryTerms, "menu") {
		score += 0.3
	}
	if strings.Contains(chunkType, "deal") && anyTermContains(queryTerms, "deal") {
		score += 0.3
	}

	return math.Min(1.0, score)
}

func anyTermContains(terms []string, substr string) bool {
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), substr) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
