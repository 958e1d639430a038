package retrieval

import (
	"sort"
	"strings"
)

// Normalizer cleans conversational queries into search strings. Restaurant
// aliases come from the registry at construction time so the normalizer
// itself stays registry-agnostic.
type Normalizer struct {
	aliases []string
}

func NewNormalizer(aliases []string) *Normalizer {
	seen := make(map[string]struct{}, len(aliases))
	lowered := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		lowered = append(lowered, a)
	}
	// Longest first so "pizza hut" is claimed before "pizza".
	sort.SliceStable(lowered, func(i, j int) bool {
		return len(lowered[i]) > len(lowered[j])
	})

	return &Normalizer{aliases: lowered}
}

// KeyTerms are the entity and topic terms extracted from one query.
type KeyTerms struct {
	Restaurants []string `json:"restaurants"`
	FoodTerms   []string `json:"food_terms"`
	Numbers     []string `json:"numbers"`
	Cleaned     string   `json:"cleaned_query"`
}

// Clean lowercases, collapses whitespace and strips conversational filler.
// If filtering would leave fewer than two words, the original tokens are
// kept minus only trivial greetings so short queries survive. Clean is a
// fixed point: cleaning an already-clean query returns it unchanged.
func (n *Normalizer) Clean(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}
	q = spaceRe.ReplaceAllString(q, " ")
	words := strings.Fields(q)

	stripped := fillerPhraseRe.ReplaceAllString(q, " ")
	var filtered []string
	for _, w := range strings.Fields(stripped) {
		if _, ok := fillerWords[w]; ok {
			continue
		}
		filtered = append(filtered, w)
	}

	if len(filtered) < 2 {
		filtered = filtered[:0]
		for _, w := range words {
			if _, ok := trivialGreetings[w]; ok {
				continue
			}
			filtered = append(filtered, w)
		}
	}

	if len(filtered) == 0 {
		return q
	}
	return strings.Join(filtered, " ")
}

// ExtractKeyTerms pulls restaurant aliases, domain food terms and numbers
// out of the query. An empty or malformed query yields empty term lists.
func (n *Normalizer) ExtractKeyTerms(query string) KeyTerms {
	cleaned := n.Clean(query)
	terms := KeyTerms{Cleaned: cleaned}
	if cleaned == "" {
		return terms
	}

	for _, alias := range n.aliases {
		if strings.Contains(cleaned, alias) {
			terms.Restaurants = append(terms.Restaurants, alias)
		}
	}
	for _, w := range strings.Fields(cleaned) {
		if _, ok := searchFoodTerms[w]; ok {
			terms.FoodTerms = append(terms.FoodTerms, w)
		}
	}
	terms.Numbers = numberRe.FindAllString(query, -1)

	return terms
}

// CreateSearchQuery reorders the cleaned query for short-text embedding
// matching: restaurant names first, then food terms, then up to five other
// non-filler words. Many embedding backends weight leading tokens more
// heavily, so entity and topic terms go up front.
func (n *Normalizer) CreateSearchQuery(query string) string {
	cleaned := n.Clean(query)
	if cleaned == "" {
		return ""
	}
	terms := n.ExtractKeyTerms(query)

	var search []string
	seenTokens := make(map[string]struct{})
	add := func(term string) {
		search = append(search, term)
		for _, tok := range strings.Fields(term) {
			seenTokens[tok] = struct{}{}
		}
	}

	for _, r := range terms.Restaurants {
		add(r)
	}
	for _, f := range terms.FoodTerms {
		if _, ok := seenTokens[f]; ok {
			continue
		}
		add(f)
	}

	extra := 0
	for _, w := range strings.Fields(cleaned) {
		if _, ok := seenTokens[w]; ok {
			continue
		}
		if _, ok := fillerWords[w]; ok {
			continue
		}
		add(w)
		extra++
		if extra == 5 {
			break
		}
	}

	if len(search) == 0 {
		return cleaned
	}
	return strings.Join(search, " ")
}

// ExpandQuery generates up to five synonym variations of the cleaned query.
// It is only used when a caller explicitly asks for query expansion, never
// in the default hybrid-search path.
func (n *Normalizer) ExpandQuery(query string) []string {
	cleaned := n.Clean(query)
	if cleaned == "" {
		return nil
	}

	variations := []string{cleaned}
	words := strings.Fields(cleaned)
	for i, w := range words {
		synonyms, ok := foodSynonyms[w]
		if !ok {
			continue
		}
		if len(synonyms) > 2 {
			synonyms = synonyms[:2]
		}
		for _, syn := range synonyms {
			expanded := make([]string, len(words))
			copy(expanded, words)
			expanded[i] = syn
			variations = append(variations, strings.Join(expanded, " "))
		}
	}

	seen := make(map[string]struct{}, len(variations))
	unique := variations[:0]
	for _, v := range variations {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	if len(unique) > 5 {
		unique = unique[:5]
	}
	return unique
}

// Normalize folds punctuation into spaces and lowercases; a fixed point
// like Clean.
func (n *Normalizer) Normalize(query string) string {
	normalized := punctRe.ReplaceAllString(query, " ")
	normalized = spaceRe.ReplaceAllString(normalized, " ")
	return strings.ToLower(strings.TrimSpace(normalized))
}
