package location

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/textnorm"
)

const searchResults = 5

// minReverseMatch keeps very short inputs like "ro" from matching every key
// that happens to contain them.
const minReverseMatch = 3

// ImageSearcher finds candidate photos for a free-text query.
type ImageSearcher interface {
	Search(ctx context.Context, query string, perPage int) ([]domain.ImageCandidate, error)
}

type Resolver struct {
	searcher ImageSearcher
	keys     []string // fallback keys, longest first
}

// NewResolver builds a Resolver. A nil searcher answers from the static
// table only.
func NewResolver(searcher ImageSearcher) *Resolver {
	keys := make([]string, 0, len(fallbackImages))
	for k := range fallbackImages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &Resolver{searcher: searcher, keys: keys}
}

// Resolve returns an image URL for name. It never fails: every error path
// ends at the static table or DefaultImage.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	key := textnorm.Key(name)
	fallback, matched := r.match(key)
	if !matched {
		fallback = DefaultImage
	}
	if r.searcher == nil || key == "" {
		return fallback
	}

	query := BuildQuery(key)
	candidates, err := r.searcher.Search(ctx, query, searchResults)
	if err != nil {
		slog.Warn("image search failed", "location", key, "query", query, "err", err)
		return fallback
	}
	best, ok := Rank(candidates, textnorm.Tokens(key))
	if !ok {
		slog.Info("image search returned nothing", "location", key, "query", query)
		return fallback
	}
	return best.URL
}

// match finds the longest fallback key contained in key, or containing it.
func (r *Resolver) match(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, k := range r.keys {
		if strings.Contains(key, k) ||
			(utf8.RuneCountInString(key) >= minReverseMatch && strings.Contains(k, key)) {
			return fallbackImages[k], true
		}
	}
	return "", false
}

// BuildQuery turns a normalized location into an image search phrase.
func BuildQuery(key string) string {
	if phrase, ok := disambiguations[key]; ok {
		return phrase
	}
	if strings.Contains(key, ",") || len(strings.Fields(key)) > 2 {
		return key + " landmark travel"
	}
	return key + " city travel landmark destination"
}

// Rank picks the first candidate whose description or alt text shares a
// token with the location name, else the first candidate. ok is false only
// when there are no candidates.
func Rank(candidates []domain.ImageCandidate, tokens []string) (domain.ImageCandidate, bool) {
	if len(candidates) == 0 {
		return domain.ImageCandidate{}, false
	}
	want := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		want[t] = struct{}{}
	}
	for _, c := range candidates {
		text := textnorm.Key(c.Description + " " + c.AltDescription)
		for _, t := range textnorm.Tokens(text) {
			if _, ok := want[t]; ok {
				return c, true
			}
		}
	}
	return candidates[0], true
}
