package retrieval

import (
	"regexp"
	"strings"
)

// The keyword tables below drive every heuristic in the pipeline. They are
// deliberately declarative and separate from the scoring code so they can be
// tuned and tested on their own.

// fillerPhrases are multi-word conversational framings stripped before
// search. Longer phrases come first so the alternation matches them first.
var fillerPhrases = []string{
	"i am looking for",
	"i would like",
	"let me know",
	"do you have",
	"thank you",
	"can you",
	"could you",
	"would you",
	"will you",
	"tell me",
	"show me",
	"give me",
	"help me",
	"i want",
	"i need",
	"is there",
	"are there",
}

var fillerWords = map[string]struct{}{
	"hi":     {},
	"hello":  {},
	"hey":    {},
	"please": {},
	"thanks": {},
}

// trivialGreetings is the minimal set still stripped when full filtering
// would leave a query too short to search.
var trivialGreetings = map[string]struct{}{
	"hi":     {},
	"hello":  {},
	"hey":    {},
	"please": {},
}

var fillerPhraseRe = regexp.MustCompile(`\b(?:` + strings.Join(fillerPhrases, "|") + `)\b`)

// foodSynonyms feeds optional query expansion only; the default hybrid-search
// path never uses it.
var foodSynonyms = map[string][]string{
	"deal":     {"offer", "promotion", "special", "combo", "package", "bundle"},
	"price":    {"cost", "pricing", "rate", "amount", "fee"},
	"menu":     {"food", "items", "dishes", "options", "selection"},
	"pizza":    {"pizzas"},
	"burger":   {"burgers", "sandwich"},
	"chicken":  {"chickens"},
	"combo":    {"deal", "meal", "package", "set"},
	"delivery": {"deliver", "delivered", "shipping"},
	"location": {"locations", "branch", "branches", "outlet", "outlets"},
	"hours":    {"timing", "time", "schedule", "opening hours"},
}

// searchFoodTerms are the domain words promoted to the front of the search
// query, right after restaurant names.
var searchFoodTerms = map[string]struct{}{
	"deal":     {},
	"price":    {},
	"menu":     {},
	"pizza":    {},
	"burger":   {},
	"chicken":  {},
	"combo":    {},
	"delivery": {},
}

// foodCategories maps a registry category tag to the query vocabulary that
// implies it. categoryOrder fixes iteration order.
var foodCategories = map[string][]string{
	"pizza":    {"pizza", "margherita", "pepperoni", "pan pizza", "stuffed crust"},
	"burger":   {"burger", "cheeseburger", "chicken burger", "beef burger"},
	"chicken":  {"chicken", "fried chicken", "grilled chicken", "chicken wings", "zinger"},
	"pasta":    {"pasta", "spaghetti", "macaroni", "penne", "fettuccine"},
	"sandwich": {"sandwich", "sub", "wrap", "panini"},
	"rice":     {"rice", "biryani", "fried rice", "pulao"},
	"dessert":  {"dessert", "ice cream", "cake", "sweet", "chocolate"},
	"drink":    {"drink", "beverage", "juice", "soda", "coffee", "tea"},
	"combo":    {"combo", "meal", "deal", "package", "set"},
}

var categoryOrder = []string{
	"pizza", "burger", "chicken", "pasta", "sandwich", "rice", "dessert", "drink", "combo",
}

// Reranker vocabulary.
var (
	priceKeywords      = []string{"price", "cost", "rs.", "rupee", "pkr", "how much"}
	dealKeywords       = []string{"deal", "offer", "promotion", "special", "combo", "package"}
	menuKeywords       = []string{"menu", "item", "dish", "food", "order"}
	priceAdjacentWords = []string{"rs.", "rupee", "price", "cost"}
	itemDescriptorWords = []string{"name", "description", "item"}
)

// wideFetchKeywords widen the candidate net: price-bearing chunks are sparse
// among top semantic matches, so these queries over-fetch before reranking.
var wideFetchKeywords = []string{"price", "prices", "cost", "how much", "deal"}

// Fallback-supplement vocabulary.
var (
	supplementDealKeywords  = []string{"deal", "offer", "combo", "special"}
	supplementPriceKeywords = []string{"price", "prices", "cost", "how much"}
)

type queryTypeBucket struct {
	name     string
	keywords []string
}

// queryTypeBuckets is a flat priority list; the first bucket whose keywords
// appear in the query wins.
var queryTypeBuckets = []queryTypeBucket{
	{"deals", []string{"deal", "offer", "combo", "special", "promotion"}},
	{"pricing", []string{"price", "cost", "how much", "expensive", "cheap"}},
	{"location", []string{"location", "where", "branch", "near me", "delivery"}},
	{"menu", []string{"menu", "what do you have", "options", "food"}},
	{"timing", []string{"time", "hours", "open", "close", "when"}},
}

var suggestionsByType = map[string][]string{
	"deals": {
		"Would you like to see more deals and offers?",
		"Are you interested in family meal deals?",
		"Would you like to know about delivery deals?",
	},
	"pricing": {
		"Would you like to see the most affordable options?",
		"Are you looking for premium items?",
		"Would you like to compare prices across restaurants?",
	},
	"location": {
		"Would you like to know about delivery options?",
		"Are you looking for the nearest branch?",
		"Would you like to know about dine-in hours?",
	},
	"general": {
		"Would you like to see more menu options?",
		"Are you interested in any specific cuisine?",
		"Would you like to know about special offers?",
	},
}

var multiRestaurantSuggestions = []string{
	"Would you like to compare prices between these restaurants?",
	"Which restaurant would you like to know more about?",
}

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	punctRe  = regexp.MustCompile(`[^\w\s]`)
	numberRe = regexp.MustCompile(`\d+`)

	// priceRe accepts thousand separators so "Rs. 1,249" captures the full
	// figure; extracted menu text is noisy, so this stays best-effort.
	priceRe = regexp.MustCompile(`(?i)rs\.?\s*\d[\d,]*`)

	// priceArtifactRe repairs a recurring PDF-extraction artifact where the
	// leading digit group is lost: "Rs. , 249" -> "Rs. 249".
	priceArtifactRe = regexp.MustCompile(`(?i)rs\.\s*,\s*(\d+)`)
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
