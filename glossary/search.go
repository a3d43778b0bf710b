// Package glossary implements ranked business-term search over the
// property graph. Matching is case-insensitive substring matching in three
// priority tiers (display name, synonyms, definition), ranked within each
// tier by edit distance to the matched field.
package glossary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/c360/metaresolve/errors"
	"github.com/c360/metaresolve/graph"
)

// MatchTier identifies which field of a term matched the keyword. Lower
// tiers rank ahead of higher ones regardless of edit distance.
type MatchTier int

const (
	// TierName matched the display name
	TierName MatchTier = iota
	// TierSynonym matched one of the synonyms
	TierSynonym
	// TierDefinition matched the definition text
	TierDefinition
)

// String returns the string representation of the MatchTier.
func (t MatchTier) String() string {
	switch t {
	case TierName:
		return "name"
	case TierSynonym:
		return "synonym"
	case TierDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// Match is a single search result with its ranking inputs.
type Match struct {
	Term graph.BusinessTerm
	// Tier is the highest-priority field that contained the keyword
	Tier MatchTier
	// Distance is the edit distance between the keyword and the matched
	// field, used for within-tier ordering
	Distance int
}

// Config holds search behavior settings.
type Config struct {
	// DefaultLimit applies when the caller passes limit <= 0
	DefaultLimit int

	// MaxLimit caps any requested limit
	MaxLimit int
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.DefaultLimit == 0 {
		c.DefaultLimit = 25
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = 100
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "glossary", "Validate",
			fmt.Sprintf("default limit must be positive, got %d", c.DefaultLimit))
	}
	if c.MaxLimit < c.DefaultLimit {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "glossary", "Validate",
			fmt.Sprintf("max limit %d must be >= default limit %d", c.MaxLimit, c.DefaultLimit))
	}
	return nil
}

// Deps holds the dependencies for the searcher
type Deps struct {
	Store  graph.Reader
	Logger *slog.Logger
}

// Searcher performs glossary term search against the graph store.
type Searcher struct {
	config Config
	store  graph.Reader
	logger *slog.Logger
}

// NewSearcher creates a searcher with validated configuration.
func NewSearcher(config Config, deps Deps) (*Searcher, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "glossary", "NewSearcher",
			"store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Searcher{
		config: config,
		store:  deps.Store,
		logger: deps.Logger.With("component", "glossary"),
	}, nil
}

// SearchTerms returns glossary terms matching the keyword, best first.
// Matching is case-insensitive substring containment; a term's tier is the
// highest-priority field that contains the keyword. Results order by tier,
// then ascending edit distance to the matched field, then display name.
// Zero matches yields an empty slice, not an error. The keyword must be
// non-empty; the facade validates that before calling here.
func (s *Searcher) SearchTerms(ctx context.Context, keyword string, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "glossary", "SearchTerms", "context check")
	}

	limit = s.clampLimit(limit)
	needle := strings.ToLower(strings.TrimSpace(keyword))

	entities, err := s.store.FindEntities(graph.KindBusinessTerm, nil)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(entities))
	for _, e := range entities {
		term, err := e.AsBusinessTerm()
		if err != nil {
			continue
		}
		if m, ok := matchTerm(term, needle); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Tier != matches[j].Tier {
			return matches[i].Tier < matches[j].Tier
		}
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Term.Name < matches[j].Term.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	s.logger.Debug("glossary search complete",
		"keyword", keyword,
		"matches", len(matches),
		"limit", limit)

	return matches, nil
}

func (s *Searcher) clampLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return limit
}

// matchTerm checks a term's fields in priority order and returns the match
// for the first field containing the needle.
func matchTerm(term graph.BusinessTerm, needle string) (Match, bool) {
	if name := strings.ToLower(term.Name); strings.Contains(name, needle) {
		return Match{Term: term, Tier: TierName, Distance: levenshteinDistance(needle, name)}, true
	}

	bestSynonym := -1
	for _, syn := range term.Synonyms {
		lower := strings.ToLower(syn)
		if !strings.Contains(lower, needle) {
			continue
		}
		d := levenshteinDistance(needle, lower)
		if bestSynonym < 0 || d < bestSynonym {
			bestSynonym = d
		}
	}
	if bestSynonym >= 0 {
		return Match{Term: term, Tier: TierSynonym, Distance: bestSynonym}, true
	}

	if def := strings.ToLower(term.Definition); strings.Contains(def, needle) {
		return Match{Term: term, Tier: TierDefinition, Distance: levenshteinDistance(needle, def)}, true
	}

	return Match{}, false
}
