package outfits

import (
	"sort"
	"sync"
)

// DefaultMaxSuggestions caps the ranked output.
const DefaultMaxSuggestions = 5

// Engine ranks outfits. The caps bound how many of the best dresses, tops and
// bottoms are combined. Zero means the default, a negative cap means no limit,
// so the zero Engine behaves like NewEngine.
type Engine struct {
	MaxSuggestions int
	MaxDresses     int
	MaxTops        int
	MaxBottoms     int

	// Parallel scores candidates concurrently. Output does not change.
	Parallel bool
}

const (
	defaultMaxDresses = 2
	defaultMaxTops    = 3
	defaultMaxBottoms = 2
)

func NewEngine() *Engine {
	return &Engine{
		MaxSuggestions: DefaultMaxSuggestions,
		MaxDresses:     defaultMaxDresses,
		MaxTops:        defaultMaxTops,
		MaxBottoms:     defaultMaxBottoms,
	}
}

func capOr(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}

var defaultEngine = NewEngine()

// RankOutfits returns up to five suggestions for the wardrobe, best first.
// weather and prefs may be nil.
func RankOutfits(items []ClothingItem, weather *WeatherSnapshot, prefs *Preferences) []Suggestion {
	return defaultEngine.Rank(items, weather, prefs)
}

// Result is a ranking together with how many candidates were considered.
type Result struct {
	Suggestions []Suggestion
	Candidates  int
}

func (e *Engine) Rank(items []ClothingItem, weather *WeatherSnapshot, prefs *Preferences) []Suggestion {
	return e.Evaluate(items, weather, prefs).Suggestions
}

func (e *Engine) Evaluate(items []ClothingItem, weather *WeatherSnapshot, prefs *Preferences) Result {
	if len(items) == 0 {
		return Result{Suggestions: []Suggestion{}}
	}

	wc := newWeatherContext(weather)
	candidates := e.generate(Classify(items), wc, weather)

	var scored []Suggestion
	if e.Parallel {
		scored = scoreParallel(candidates, wc, prefs)
	} else {
		scored = make([]Suggestion, 0, len(candidates))
		for _, c := range candidates {
			scored = append(scored, scoreCandidate(c, wc, prefs))
		}
	}

	return Result{
		Suggestions: rank(scored, capOr(e.MaxSuggestions, DefaultMaxSuggestions)),
		Candidates:  len(candidates),
	}
}

func scoreParallel(candidates []candidate, wc weatherContext, prefs *Preferences) []Suggestion {
	scored := make([]Suggestion, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scored[i] = scoreCandidate(candidates[i], wc, prefs)
		}(i)
	}
	wg.Wait()
	return scored
}

// rank orders suggestions by descending score, keeping generation order on
// ties, and keeps at most limit of them.
func rank(suggestions []Suggestion, limit int) []Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if limit >= 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
