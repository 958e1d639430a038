package retrieval

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuvoice/menuvoice-rag/models"
)

func testRegistry() []models.Restaurant {
	return []models.Restaurant{
		{
			ID:             "kfc",
			Name:           "KFC",
			Keywords:       pq.StringArray{"kfc", "kentucky fried chicken", "kentucky"},
			FoodCategories: pq.StringArray{"chicken", "burger", "combo"},
		},
		{
			ID:             "pizza_hut",
			Name:           "Pizza Hut",
			Keywords:       pq.StringArray{"pizza hut", "pizzahut"},
			FoodCategories: pq.StringArray{"pizza", "pasta", "combo"},
		},
		{
			ID:             "cheezious",
			Name:           "Cheezious",
			Keywords:       pq.StringArray{"cheezious"},
			FoodCategories: pq.StringArray{"pizza", "burger", "sandwich"},
		},
	}
}

func TestDetectNothing(t *testing.T) {
	d := NewDetector(testRegistry())

	assert.Empty(t, d.Detect("what's on the menu"))
	assert.Empty(t, d.Detect(""))
}

func TestDetectExplicitAndCategory(t *testing.T) {
	d := NewDetector(testRegistry())

	results := d.Detect("KFC chicken prices")
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "kfc", r.RestaurantID)
	assert.Equal(t, DetectionExplicitAndCategory, r.DetectionType)
	// kfc alias (+2.0) plus chicken category (+1.0).
	assert.GreaterOrEqual(t, r.Confidence, 3.0)
	assert.Contains(t, r.KeywordsFound, "kfc")
	assert.Contains(t, r.Categories, "chicken")
}

func TestDetectExplicitAlias(t *testing.T) {
	d := NewDetector(testRegistry())

	results := d.Detect("is pizza hut open")
	require.NotEmpty(t, results)
	assert.Equal(t, "pizza_hut", results[0].RestaurantID)
	// "pizza" in the alias also lights up the pizza category.
	assert.Equal(t, DetectionExplicitAndCategory, results[0].DetectionType)
}

func TestDetectCategoryTieKeepsRegistryOrder(t *testing.T) {
	d := NewDetector(testRegistry())

	results := d.Detect("best pasta and pizza deals")
	require.GreaterOrEqual(t, len(results), 2)

	// Pizza Hut matches pasta, pizza and combo; it must rank first.
	assert.Equal(t, "pizza_hut", results[0].RestaurantID)
	assert.Equal(t, DetectionFoodCategory, results[0].DetectionType)

	// KFC and Cheezious both match a single category. KFC precedes
	// Cheezious in the registry, so the tie keeps that order.
	byID := make(map[string]int)
	for i, r := range results {
		byID[r.RestaurantID] = i
	}
	kfcIdx, hasKFC := byID["kfc"]
	chzIdx, hasChz := byID["cheezious"]
	require.True(t, hasKFC)
	require.True(t, hasChz)
	assert.Less(t, kfcIdx, chzIdx)
	assert.Greater(t, results[0].Confidence, results[1].Confidence)
}

func TestDetectSkipsMalformedRows(t *testing.T) {
	registry := append(testRegistry(), models.Restaurant{
		ID:       "",
		Name:     "Broken",
		Keywords: pq.StringArray{"kfc"},
	})
	d := NewDetector(registry)

	results := d.Detect("kfc deals")
	for _, r := range results {
		assert.NotEmpty(t, r.RestaurantID)
		assert.NotEmpty(t, r.Name)
	}
}
