package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankScoreBounds(t *testing.T) {
	r := NewReranker()

	passages := []Passage{
		{RestaurantID: "kfc", RestaurantName: "KFC", Content: "KFC menu deal price Rs. 1,050 combo item name description", Similarity: 1.0, Metadata: map[string]string{"type": "menu_deals"}},
		{RestaurantID: "kfc", RestaurantName: "KFC", Content: "", Similarity: 0.0},
	}
	ranked := r.Rerank(passages, "kfc menu deal price", []string{"kfc", "menu", "deal", "price"})

	require.Len(t, ranked, 2)
	for _, p := range ranked {
		assert.GreaterOrEqual(t, p.RerankScore, 0.0)
		assert.LessOrEqual(t, p.RerankScore, 1.0)
		assert.GreaterOrEqual(t, p.FinalScore, 0.0)
		assert.LessOrEqual(t, p.FinalScore, 1.0)
	}
}

func TestQueryTypeScorePricePattern(t *testing.T) {
	withPrice := queryTypeScore("family deal rs. 1,249 combo", "what is the price of the family deal")
	wordsOnly := queryTypeScore("the cost varies by branch", "what is the price of the family deal")
	neither := queryTypeScore("we serve pizza", "what is the price of the family deal")

	// A literal price figure beats price-adjacent words alone.
	assert.Greater(t, withPrice, wordsOnly)
	assert.Equal(t, 0.0, neither)
	assert.Equal(t, 1.0, withPrice)
}

func TestQueryTypeScoreDeals(t *testing.T) {
	dealWithPrice := queryTypeScore("wednesday combo deal rs. 999", "any deals today")
	dealOnly := queryTypeScore("wednesday combo deal", "any deals today")

	assert.Equal(t, 1.0, dealWithPrice)
	assert.Equal(t, 0.5, dealOnly)
}

func TestKeywordScoreFraction(t *testing.T) {
	content := "kfc zinger burger with fries"

	assert.Equal(t, 0.5, keywordScore(content, []string{"zinger", "pizza"}))
	assert.Equal(t, 1.0, keywordScore(content, []string{"kfc", "burger"}))
	assert.Equal(t, 0.0, keywordScore(content, nil))
}

func TestMetadataScore(t *testing.T) {
	p := Passage{
		RestaurantName: "KFC",
		Metadata:       map[string]string{"type": "menu_items"},
	}

	named := metadataScore(p, []string{"kfc", "menu"})
	unnamed := metadataScore(p, []string{"pizza"})

	assert.InDelta(t, 0.8, named, 1e-9)
	assert.Equal(t, 0.0, unnamed)
}

func TestRerankSortStableDescending(t *testing.T) {
	r := NewReranker()

	passages := []Passage{
		{RestaurantID: "a", Content: "plain text", Similarity: 0.2},
		{RestaurantID: "b", Content: "family deal rs. 500", Similarity: 0.9},
		{RestaurantID: "c", Content: "plain text", Similarity: 0.2},
	}
	ranked := r.Rerank(passages, "deal prices", nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].RestaurantID)
	// Identical passages keep their retrieval order.
	assert.Equal(t, "a", ranked[1].RestaurantID)
	assert.Equal(t, "c", ranked[2].RestaurantID)
	assert.GreaterOrEqual(t, ranked[0].FinalScore, ranked[1].FinalScore)
	assert.GreaterOrEqual(t, ranked[1].FinalScore, ranked[2].FinalScore)
}

func TestRerankEmpty(t *testing.T) {
	r := NewReranker()
	assert.Nil(t, r.Rerank(nil, "anything", nil))
}
