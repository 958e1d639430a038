package retrieval

import (
	"sort"
	"strings"

	"github.com/menuvoice/menuvoice-rag/models"
)

// Detector maps a raw query to the registry restaurants it mentions,
// explicitly by alias or implicitly by food category.
type Detector struct {
	registry []models.Restaurant
}

func NewDetector(registry []models.Restaurant) *Detector {
	return &Detector{registry: registry}
}

// Detect returns detections sorted by confidence descending; ties keep
// registry order. An empty result is valid and means "search everything".
// Registry rows missing an id or name are skipped, not fatal.
func (d *Detector) Detect(query string) []DetectionResult {
	q := strings.ToLower(query)
	merged := make(map[string]*DetectionResult)

	for _, r := range d.registry {
		if r.ID == "" || r.Name == "" {
			continue
		}

		var confidence float64
		var found []string
		for _, kw := range r.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" {
				continue
			}
			if strings.Contains(q, k) {
				confidence += 2.0
				found = append(found, k)
			}
		}
		if confidence > 0 {
			merged[r.ID] = &DetectionResult{
				RestaurantID:  r.ID,
				Name:          r.Name,
				Confidence:    confidence,
				DetectionType: DetectionExplicit,
				KeywordsFound: found,
			}
		}
	}

	mentioned := mentionedCategories(q)

	for _, r := range d.registry {
		if r.ID == "" || r.Name == "" {
			continue
		}

		declared := make(map[string]struct{}, len(r.FoodCategories))
		for _, c := range r.FoodCategories {
			declared[strings.ToLower(c)] = struct{}{}
		}

		var confidence float64
		var matching []string
		for _, cat := range mentioned {
			if _, ok := declared[cat]; ok {
				confidence += 1.0
				matching = append(matching, cat)
			}
		}
		if confidence == 0 {
			continue
		}

		if existing, ok := merged[r.ID]; ok {
			existing.Confidence += confidence
			existing.Categories = matching
			existing.DetectionType = DetectionExplicitAndCategory
			continue
		}
		merged[r.ID] = &DetectionResult{
			RestaurantID:  r.ID,
			Name:          r.Name,
			Confidence:    confidence,
			DetectionType: DetectionFoodCategory,
			Categories:    matching,
		}
	}

	// Collect in registry order so the stable sort keeps it for ties.
	var results []DetectionResult
	for _, r := range d.registry {
		if dr, ok := merged[r.ID]; ok {
			results = append(results, *dr)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results
}

func mentionedCategories(query string) []string {
	var mentioned []string
	for _, cat := range categoryOrder {
		for _, kw := range foodCategories[cat] {
			if strings.Contains(query, kw) {
				mentioned = append(mentioned, cat)
				break
			}
		}
	}
	return mentioned
}
