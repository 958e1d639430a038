package retrieval

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/menuvoice/menuvoice-rag/models"
)

// MenuItem is one priced entry of a structured fallback record. Prices stay
// strings: the source data mixes "Rs. 1,050", bare numbers and ranges.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// MenuSection is a tagged variant: either a flat item list or a mapping to
// further subsections. The two shapes coexist in the source JSON, so the
// decoder tries the list form first and falls back to the map form.
type MenuSection struct {
	Items       []MenuItem
	Subsections map[string]MenuSection
}

func (s *MenuSection) UnmarshalJSON(data []byte) error {
	var items []MenuItem
	if err := json.Unmarshal(data, &items); err == nil {
		s.Items = items
		return nil
	}

	var subsections map[string]MenuSection
	if err := json.Unmarshal(data, &subsections); err != nil {
		return fmt.Errorf("menu section is neither an item list nor a subsection map: %w", err)
	}
	s.Subsections = subsections
	return nil
}

// Walk visits every item in the section, descending into subsections in
// sorted-key order. path carries the subsection names leading to the item.
func (s MenuSection) Walk(path []string, fn func(path []string, item MenuItem)) {
	for _, item := range s.Items {
		fn(path, item)
	}
	for _, name := range sortedKeys(s.Subsections) {
		sub := s.Subsections[name]
		sub.Walk(append(path, name), fn)
	}
}

type Brand struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Founded     string   `json:"founded"`
	Country     string   `json:"country"`
	USP         []string `json:"usp"`
}

type Branches struct {
	Cities        []string `json:"cities"`
	Hours         string   `json:"hours"`
	TotalBranches string   `json:"total_branches"`
}

// MenuRecord is one restaurant's structured fallback document.
type MenuRecord struct {
	Brand    Brand                  `json:"brand"`
	Menu     map[string]MenuSection `json:"menu"`
	Branches Branches               `json:"branches"`
}

// MenuStore holds the structured fallback records in memory. All file I/O
// happens once at load time; per-request reads touch memory only.
type MenuStore struct {
	records map[string]*MenuRecord
}

// NewMenuStore wraps already-decoded records, mainly for tests.
func NewMenuStore(records map[string]*MenuRecord) *MenuStore {
	if records == nil {
		records = make(map[string]*MenuRecord)
	}
	return &MenuStore{records: records}
}

// LoadMenuStore reads the per-restaurant JSON files named by the registry.
// A missing or malformed file only loses that restaurant's fallback data;
// the store itself always loads.
func LoadMenuStore(dir string, registry []models.Restaurant) *MenuStore {
	store := &MenuStore{records: make(map[string]*MenuRecord)}

	for _, r := range registry {
		if r.ID == "" || r.DataFile == "" {
			continue
		}
		path := filepath.Join(dir, r.DataFile)

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("restaurant data file unreadable, skipping", "restaurant", r.ID, "path", path, "error", err)
			continue
		}

		var record MenuRecord
		if err := json.Unmarshal(data, &record); err != nil {
			slog.Warn("restaurant data file malformed, skipping", "restaurant", r.ID, "path", path, "error", err)
			continue
		}
		store.records[r.ID] = &record
	}

	slog.Info("loaded structured fallback records", "count", len(store.records))
	return store
}

func (s *MenuStore) Record(restaurantID string) *MenuRecord {
	if s == nil {
		return nil
	}
	return s.records[restaurantID]
}

// PriceSupplement extracts priced items from the fallback record when the
// retrieved chunks mention price concepts without capturing the numerals.
// Deal vocabulary scopes the extraction to the deals section; price
// vocabulary walks the general menu, capped at 5 items per flat section and
// 3 per subsection.
func (s *MenuStore) PriceSupplement(restaurantID, query string) string {
	record := s.Record(restaurantID)
	if record == nil {
		return ""
	}

	q := strings.ToLower(query)
	askingDeals := containsAny(q, supplementDealKeywords)
	askingPrices := containsAny(q, supplementPriceKeywords)

	var lines []string

	if askingDeals {
		if deals, ok := record.Menu["deals"]; ok {
			deals.Walk(nil, func(_ []string, item MenuItem) {
				if item.Price == "" {
					return
				}
				line := item.Name + ": " + item.Price
				if item.Description != "" {
					line += " - " + item.Description
				}
				lines = append(lines, line)
			})
		}
	}

	if askingPrices {
		for _, sectionName := range sortedKeys(record.Menu) {
			if sectionName == "deals" {
				continue
			}
			section := record.Menu[sectionName]

			for _, item := range capItems(section.Items, 5) {
				if item.Price != "" {
					lines = append(lines, item.Name+": "+item.Price)
				}
			}
			for _, subName := range sortedKeys(section.Subsections) {
				sub := section.Subsections[subName]
				for _, item := range capItems(sub.Items, 3) {
					if item.Price != "" {
						lines = append(lines, item.Name+": "+item.Price)
					}
				}
			}
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return "Price Information:\n" + strings.Join(lines, "\n")
}

func capItems(items []MenuItem, limit int) []MenuItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func sortedKeys(m map[string]MenuSection) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
