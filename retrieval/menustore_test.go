package retrieval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecordJSON = `{
	"brand": {
		"name": "KFC Pakistan",
		"description": "Fried chicken chain",
		"founded": "1997",
		"country": "Pakistan",
		"usp": ["original recipe"]
	},
	"menu": {
		"burgers": [
			{"name": "Zinger", "price": "Rs. 650", "description": "Crispy chicken fillet"},
			{"name": "Mighty Zinger", "price": "Rs. 950"}
		],
		"chicken": {
			"fried": [
				{"name": "Hot Wings", "price": "Rs. 450"},
				{"name": "Drumsticks", "price": "Rs. 500"}
			]
		},
		"deals": [
			{"name": "Family Festival", "price": "Rs. 2,190", "description": "Serves 4-5"}
		]
	},
	"branches": {
		"cities": ["Karachi", "Lahore"],
		"hours": "11am - 1am",
		"total_branches": "100+"
	}
}`

func sampleRecord(t *testing.T) *MenuRecord {
	t.Helper()
	var record MenuRecord
	require.NoError(t, json.Unmarshal([]byte(sampleRecordJSON), &record))
	return &record
}

func TestMenuSectionDecodesBothShapes(t *testing.T) {
	record := sampleRecord(t)

	flat := record.Menu["burgers"]
	require.Len(t, flat.Items, 2)
	assert.Equal(t, "Zinger", flat.Items[0].Name)
	assert.Nil(t, flat.Subsections)

	nested := record.Menu["chicken"]
	assert.Empty(t, nested.Items)
	require.Contains(t, nested.Subsections, "fried")
	assert.Len(t, nested.Subsections["fried"].Items, 2)
}

func TestMenuSectionRejectsScalars(t *testing.T) {
	var section MenuSection
	err := json.Unmarshal([]byte(`"just a string"`), &section)
	assert.Error(t, err)
}

func TestMenuSectionWalk(t *testing.T) {
	record := sampleRecord(t)

	var names []string
	var paths [][]string
	record.Menu["chicken"].Walk(nil, func(path []string, item MenuItem) {
		names = append(names, item.Name)
		paths = append(paths, append([]string(nil), path...))
	})

	assert.Equal(t, []string{"Hot Wings", "Drumsticks"}, names)
	require.Len(t, paths, 2)
	assert.Equal(t, []string{"fried"}, paths[0])
}

func TestPriceSupplementDeals(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{"kfc": sampleRecord(t)})

	got := store.PriceSupplement("kfc", "any kfc deals")
	assert.Contains(t, got, "Price Information:")
	assert.Contains(t, got, "Family Festival: Rs. 2,190 - Serves 4-5")
	assert.NotContains(t, got, "Zinger")
}

func TestPriceSupplementPrices(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{"kfc": sampleRecord(t)})

	got := store.PriceSupplement("kfc", "kfc burger prices")
	assert.Contains(t, got, "Zinger: Rs. 650")
	assert.Contains(t, got, "Hot Wings: Rs. 450")
	// The deals section only answers deal-flavored questions.
	assert.NotContains(t, got, "Family Festival")
}

func TestPriceSupplementNeither(t *testing.T) {
	store := NewMenuStore(map[string]*MenuRecord{"kfc": sampleRecord(t)})

	assert.Equal(t, "", store.PriceSupplement("kfc", "where is the nearest branch"))
	assert.Equal(t, "", store.PriceSupplement("missing", "kfc prices"))
}

func TestPriceSupplementCaps(t *testing.T) {
	items := make([]MenuItem, 0, 8)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		items = append(items, MenuItem{Name: name, Price: "Rs. 100"})
	}
	store := NewMenuStore(map[string]*MenuRecord{
		"r": {Menu: map[string]MenuSection{
			"flat":   {Items: items},
			"nested": {Subsections: map[string]MenuSection{"sub": {Items: items}}},
		}},
	})

	got := store.PriceSupplement("r", "prices")
	// 5 from the flat section plus 3 from the subsection.
	assert.Contains(t, got, "E: Rs. 100")
	assert.NotContains(t, got, "F: Rs. 100")
	assert.Contains(t, got, "C: Rs. 100")
}

func TestRecordOnNilStore(t *testing.T) {
	var store *MenuStore
	assert.Nil(t, store.Record("kfc"))
	assert.Equal(t, "", store.PriceSupplement("kfc", "prices"))
}
