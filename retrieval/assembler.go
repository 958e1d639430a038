package retrieval

import (
	"log/slog"
	"sort"
	"strings"
)

const (
	maxPassagesPerRestaurant = 3
	dedupePrefixLen          = 150
	passageSeparator         = "\n\n---\n\n"
)

// Assembler groups ranked passages into per-restaurant context blocks and
// patches price gaps from the structured fallback records.
type Assembler struct {
	menus *MenuStore
}

func NewAssembler(menus *MenuStore) *Assembler {
	return &Assembler{menus: menus}
}

// Assemble builds the context bundle for a query. Every candidate appears in
// the bundle even when no passage survived for it, so downstream consumers
// can tell "searched, found nothing" apart from "never considered". When
// focusRestaurant is set and matches a candidate by id or name, the bundle
// narrows to that restaurant alone.
func (a *Assembler) Assemble(query string, ranked []RankedPassage, candidates []Candidate, focusRestaurant string) ContextBundle {
	grouped := make(map[string][]RankedPassage)
	for _, p := range ranked {
		grouped[p.RestaurantID] = append(grouped[p.RestaurantID], p)
	}

	// Narrowing to a focus restaurant that retrieved nothing would throw
	// away content that exists, so the filter only applies when the focused
	// candidate has passages.
	selected := candidates
	if focusRestaurant != "" {
		focus := strings.ToLower(focusRestaurant)
		var matched []Candidate
		hasContent := false
		for _, c := range selected {
			if strings.ToLower(c.ID) == focus || strings.ToLower(c.Name) == focus {
				matched = append(matched, c)
				if len(grouped[c.ID]) > 0 {
					hasContent = true
				}
			}
		}
		if len(matched) > 0 && hasContent {
			selected = matched
		} else {
			slog.Warn("focus restaurant yielded nothing, keeping all candidates", "focus", focusRestaurant)
		}
	}

	bundle := ContextBundle{
		Restaurants: make(map[string]*RestaurantContext, len(selected)),
	}

	for _, c := range selected {
		passages := selectPassages(grouped[c.ID])

		parts := make([]string, 0, len(passages))
		for _, p := range passages {
			parts = append(parts, p.Content)
		}
		text := strings.Join(parts, passageSeparator)

		// Repair truncation artifacts like "Rs. , 249" left by chunking.
		text = priceArtifactRe.ReplaceAllString(text, "Rs. $1")

		if !priceRe.MatchString(text) {
			if supplement := a.menus.PriceSupplement(c.ID, query); supplement != "" {
				if text != "" {
					text += passageSeparator
				}
				text += supplement
			}
		}

		bundle.Order = append(bundle.Order, c.ID)
		bundle.Restaurants[c.ID] = &RestaurantContext{
			Name:     c.Name,
			Text:     text,
			Passages: passages,
		}
	}

	return bundle
}

// selectPassages orders one restaurant's passages by score and keeps the top
// few distinct ones. Near-duplicate chunks are collapsed on a lowercased
// content prefix.
func selectPassages(passages []RankedPassage) []RankedPassage {
	if len(passages) == 0 {
		return nil
	}

	ordered := make([]RankedPassage, len(passages))
	copy(ordered, passages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return passageScore(ordered[i]) > passageScore(ordered[j])
	})

	seen := make(map[string]struct{}, len(ordered))
	var kept []RankedPassage
	for _, p := range ordered {
		key := strings.ToLower(p.Content)
		if len(key) > dedupePrefixLen {
			key = key[:dedupePrefixLen]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
		if len(kept) == maxPassagesPerRestaurant {
			break
		}
	}
	return kept
}

// passageScore prefers the reranked score but falls back to raw similarity
// for passages that bypassed reranking.
func passageScore(p RankedPassage) float64 {
	if p.FinalScore != 0 {
		return p.FinalScore
	}
	return p.Similarity
}
