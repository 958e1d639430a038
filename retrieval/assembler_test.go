package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedPassage(restaurantID, name, content string, score float64) RankedPassage {
	return RankedPassage{
		Passage: Passage{
			RestaurantID:   restaurantID,
			RestaurantName: name,
			Content:        content,
			Similarity:     score,
		},
		RerankScore: score,
		FinalScore:  score,
	}
}

func emptyMenuStore() *MenuStore {
	return NewMenuStore(nil)
}

func TestAssembleFocusNarrowsToOneRestaurant(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}, {ID: "pizza_hut", Name: "Pizza Hut"}}
	ranked := []RankedPassage{
		rankedPassage("kfc", "KFC", "zinger burger", 0.9),
		rankedPassage("pizza_hut", "Pizza Hut", "pan pizza", 0.8),
	}

	bundle := a.Assemble("kfc menu", ranked, candidates, "kfc")

	assert.Equal(t, []string{"kfc"}, bundle.Order)
	require.Contains(t, bundle.Restaurants, "kfc")
	assert.NotContains(t, bundle.Restaurants, "pizza_hut")
}

func TestAssembleUnknownFocusKeepsAll(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}, {ID: "pizza_hut", Name: "Pizza Hut"}}

	bundle := a.Assemble("menu", nil, candidates, "mcdonalds")

	assert.Equal(t, []string{"kfc", "pizza_hut"}, bundle.Order)
}

func TestAssembleFocusWithoutPassagesKeepsAll(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}, {ID: "pizza_hut", Name: "Pizza Hut"}}
	ranked := []RankedPassage{
		rankedPassage("pizza_hut", "Pizza Hut", "pan pizza", 0.8),
	}

	// KFC is the focus but retrieved nothing; dropping Pizza Hut would
	// discard the only content there is.
	bundle := a.Assemble("kfc menu", ranked, candidates, "kfc")

	assert.Equal(t, []string{"kfc", "pizza_hut"}, bundle.Order)
}

func TestAssembleEveryCandidatePresent(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}, {ID: "pizza_hut", Name: "Pizza Hut"}}
	ranked := []RankedPassage{rankedPassage("kfc", "KFC", "zinger burger", 0.9)}

	bundle := a.Assemble("menu", ranked, candidates, "")

	require.Contains(t, bundle.Restaurants, "pizza_hut")
	assert.Equal(t, "", bundle.Restaurants["pizza_hut"].Text)
	assert.Contains(t, bundle.Text(), "=== PIZZA HUT ===")
}

func TestAssembleDedupeAndCap(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}

	long := strings.Repeat("x", dedupePrefixLen)
	ranked := []RankedPassage{
		rankedPassage("kfc", "KFC", long+" tail one", 0.9),
		rankedPassage("kfc", "KFC", long+" tail two", 0.8), // same 150-char prefix
		rankedPassage("kfc", "KFC", "first distinct", 0.7),
		rankedPassage("kfc", "KFC", "second distinct", 0.6),
		rankedPassage("kfc", "KFC", "third distinct", 0.5),
	}

	bundle := a.Assemble("menu", ranked, candidates, "")

	rc := bundle.Restaurants["kfc"]
	require.NotNil(t, rc)
	assert.Len(t, rc.Passages, maxPassagesPerRestaurant)
	assert.NotContains(t, rc.Text, "tail two")
	assert.NotContains(t, rc.Text, "third distinct")

	parts := strings.Split(rc.Text, passageSeparator)
	assert.Len(t, parts, maxPassagesPerRestaurant)
}

func TestAssembleOrdersByScore(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}
	ranked := []RankedPassage{
		rankedPassage("kfc", "KFC", "weaker match", 0.3),
		rankedPassage("kfc", "KFC", "stronger match", 0.9),
	}

	bundle := a.Assemble("menu", ranked, candidates, "")

	rc := bundle.Restaurants["kfc"]
	require.Len(t, rc.Passages, 2)
	assert.Equal(t, "stronger match", rc.Passages[0].Content)
	assert.True(t, strings.HasPrefix(rc.Text, "stronger match"))
}

func TestAssemblePriceArtifactRepair(t *testing.T) {
	a := NewAssembler(emptyMenuStore())
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}
	ranked := []RankedPassage{
		rankedPassage("kfc", "KFC", "Family Festival Rs. , 249 only", 0.9),
	}

	bundle := a.Assemble("deal prices", ranked, candidates, "")

	assert.Contains(t, bundle.Restaurants["kfc"].Text, "Rs. 249")
	assert.NotContains(t, bundle.Restaurants["kfc"].Text, "Rs. , 249")
}

func TestAssemblePriceSupplement(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{
		"kfc": {
			Menu: map[string]MenuSection{
				"burgers": {Items: []MenuItem{{Name: "Zinger", Price: "Rs. 650"}}},
			},
		},
	})
	a := NewAssembler(store)
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}

	// Passage talks about prices without carrying a figure.
	ranked := []RankedPassage{rankedPassage("kfc", "KFC", "our prices are very affordable", 0.9)}
	bundle := a.Assemble("kfc burger prices", ranked, candidates, "")

	text := bundle.Restaurants["kfc"].Text
	assert.Contains(t, text, "Price Information:")
	assert.Contains(t, text, "Zinger: Rs. 650")
	assert.Contains(t, text, passageSeparator)
}

func TestAssembleNoSupplementWhenPricePresent(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{
		"kfc": {
			Menu: map[string]MenuSection{
				"burgers": {Items: []MenuItem{{Name: "Zinger", Price: "Rs. 650"}}},
			},
		},
	})
	a := NewAssembler(store)
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}

	ranked := []RankedPassage{rankedPassage("kfc", "KFC", "Zinger burger Rs. 500", 0.9)}
	bundle := a.Assemble("kfc burger prices", ranked, candidates, "")

	assert.NotContains(t, bundle.Restaurants["kfc"].Text, "Price Information:")
}

func TestAssembleSupplementForEmptyCandidate(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{
		"kfc": {
			Menu: map[string]MenuSection{
				"burgers": {Items: []MenuItem{{Name: "Zinger", Price: "Rs. 650"}}},
			},
		},
	})
	a := NewAssembler(store)
	candidates := []Candidate{{ID: "kfc", Name: "KFC"}}

	bundle := a.Assemble("kfc prices", nil, candidates, "")

	text := bundle.Restaurants["kfc"].Text
	assert.True(t, strings.HasPrefix(text, "Price Information:"))
	assert.NotContains(t, text, passageSeparator)
}
