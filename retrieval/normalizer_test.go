package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return NewNormalizer([]string{"kfc", "pizza hut", "cheezious", "kentucky fried chicken"})
}

func TestCleanStripsFiller(t *testing.T) {
	n := testNormalizer()

	assert.Equal(t, "the kfc deals", n.Clean("Can you tell me the KFC deals please"))
	assert.Equal(t, "kfc deals", n.Clean("show me kfc deals"))
}

func TestCleanShortQueryGuard(t *testing.T) {
	n := testNormalizer()

	// Full filtering would leave one word, so only greetings are dropped.
	assert.Equal(t, "pizza", n.Clean("hi pizza"))
	// A query that is pure filler comes back as-is rather than empty.
	assert.Equal(t, "please", n.Clean("please"))
}

func TestCleanEmptyAndFixedPoint(t *testing.T) {
	n := testNormalizer()

	assert.Equal(t, "", n.Clean(""))
	assert.Equal(t, "", n.Clean("   "))

	once := n.Clean("Could you show me Pizza Hut combo deals, thanks")
	assert.Equal(t, once, n.Clean(once))
}

func TestExtractKeyTerms(t *testing.T) {
	n := testNormalizer()

	terms := n.ExtractKeyTerms("I want 2 pizza hut deals under rs 1500")
	assert.Equal(t, []string{"pizza hut"}, terms.Restaurants)
	assert.Contains(t, terms.FoodTerms, "pizza")
	assert.Equal(t, []string{"2", "1500"}, terms.Numbers)
	require.NotEmpty(t, terms.Cleaned)
}

func TestCreateSearchQueryOrdering(t *testing.T) {
	n := testNormalizer()

	got := n.CreateSearchQuery("I want cheap pizza from Pizza Hut")
	// "pizza" is already claimed by the alias, so it is not repeated.
	assert.Equal(t, "pizza hut cheap from", got)

	got = n.CreateSearchQuery("how much is a chicken burger at KFC")
	assert.Equal(t, "kfc chicken burger how much is a at", got)
}

func TestCreateSearchQueryEmpty(t *testing.T) {
	n := testNormalizer()
	assert.Equal(t, "", n.CreateSearchQuery(""))
}

func TestExpandQuery(t *testing.T) {
	n := testNormalizer()

	variations := n.ExpandQuery("kfc deal price")
	require.NotEmpty(t, variations)
	assert.Equal(t, "kfc deal price", variations[0])
	assert.LessOrEqual(t, len(variations), 5)

	seen := make(map[string]struct{})
	for _, v := range variations {
		_, dup := seen[v]
		assert.False(t, dup, "duplicate variation %q", v)
		seen[v] = struct{}{}
	}
	assert.Contains(t, variations, "kfc offer price")
}

func TestNormalizeFixedPoint(t *testing.T) {
	n := testNormalizer()

	once := n.Normalize("What's KFC's price?!")
	assert.Equal(t, once, n.Normalize(once))
	assert.Equal(t, "what s kfc s price", once)
}
