package retrieval

import "strings"

type DetectionType string

const (
	DetectionExplicit            DetectionType = "explicit"
	DetectionFoodCategory        DetectionType = "food_category"
	DetectionExplicitAndCategory DetectionType = "explicit_and_category"
)

// DetectionResult associates a query with one registry restaurant.
// Confidence is unbounded upward: each explicit alias match adds 2.0, each
// matching food category adds 1.0.
type DetectionResult struct {
	RestaurantID  string        `json:"id"`
	Name          string        `json:"name"`
	Confidence    float64       `json:"confidence"`
	DetectionType DetectionType `json:"detection_type"`
	KeywordsFound []string      `json:"keywords_found,omitempty"`
	Categories    []string      `json:"matching_categories,omitempty"`
}

// Passage is the unit returned by the semantic index: a bounded text span
// with a distance-converted similarity in [0, 1] and backend metadata.
// Passages are never mutated after retrieval, only copied and annotated.
type Passage struct {
	RestaurantID   string            `json:"restaurant_id"`
	RestaurantName string            `json:"restaurant_name"`
	Content        string            `json:"content"`
	Similarity     float64           `json:"similarity"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// RankedPassage annotates a Passage with reranking scores. FinalScore is
// only comparable within one query's result set.
type RankedPassage struct {
	Passage
	RerankScore float64 `json:"rerank_score"`
	FinalScore  float64 `json:"final_score"`
}

// Candidate names one restaurant the current query is being answered for.
type Candidate struct {
	ID   string
	Name string
}

// RestaurantContext is the assembled, deduplicated text for one restaurant.
// An empty Text means "restaurant was queried but yielded nothing", which
// callers must distinguish from the restaurant being absent entirely.
type RestaurantContext struct {
	Name     string          `json:"name"`
	Text     string          `json:"text"`
	Passages []RankedPassage `json:"-"`
}

// ContextBundle groups assembled context by restaurant, preserving the
// candidate order for rendering.
type ContextBundle struct {
	Order       []string
	Restaurants map[string]*RestaurantContext
}

// Text renders the bundle with a per-restaurant header so the consumer can
// attribute facts to the right entity.
func (b ContextBundle) Text() string {
	var parts []string
	for _, id := range b.Order {
		rc := b.Restaurants[id]
		if rc == nil {
			continue
		}
		parts = append(parts, "=== "+strings.ToUpper(rc.Name)+" ===")
		if rc.Text != "" {
			parts = append(parts, rc.Text)
		}
		parts = append(parts, "")
	}
	return strings.Join(parts, "\n")
}

// Result is the orchestrator's sole output contract toward the
// prompt-construction layer.
type Result struct {
	DetectedRestaurants []DetectionResult `json:"detected_restaurants"`
	Context             string            `json:"context"`
	Suggestions         []string          `json:"suggestions"`
	QueryType           string            `json:"query_type"`
}
