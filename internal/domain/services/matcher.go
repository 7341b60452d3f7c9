package services

import (
	"math"
	"sort"
	"strings"

	"github.com/ak/flavorfusion/internal/domain/models"
)

// MatchPolicy decides when a pantry ingredient counts as a recipe ingredient
type MatchPolicy string

const (
	// MatchSubstring treats two normalized names as equal when either contains
	// the other, so "tomato" matches "cherry tomatoes". It also lets "pea"
	// match "peach".
	MatchSubstring MatchPolicy = "substring"
	// MatchExact requires the normalized names to be identical
	MatchExact MatchPolicy = "exact"
)

// Matcher scores and ranks recipes against a pantry. It holds no state
// besides its policy and is safe for concurrent use.
type Matcher struct {
	policy MatchPolicy
}

// NewMatcher creates a matcher; an unknown policy falls back to substring
func NewMatcher(policy MatchPolicy) *Matcher {
	if policy != MatchExact {
		policy = MatchSubstring
	}
	return &Matcher{policy: policy}
}

// Policy returns the active matching policy
func (m *Matcher) Policy() MatchPolicy {
	return m.policy
}

// Normalize returns the canonical comparable form of an ingredient name
func Normalize(ingredient string) string {
	return strings.ToLower(strings.TrimSpace(ingredient))
}

// NormalizePantry normalizes every entry, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizePantry(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	pantry := make([]string, 0, len(items))
	for _, item := range items {
		n := Normalize(item)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		pantry = append(pantry, n)
	}
	return pantry
}

// Match filters, scores and ranks recipes. pantry must already be
// normalized. A limit of zero returns every scored recipe.
func (m *Matcher) Match(recipes []models.Recipe, pantry []string, filter models.SearchFilter, limit int) models.SearchOutcome {
	outcome := models.SearchOutcome{Results: []models.RankedRecipe{}}

	for i := range recipes {
		recipe := &recipes[i]
		if !PassesFilter(recipe, filter) {
			continue
		}
		outcome.TotalFiltered++

		result := m.Score(recipe, pantry)
		if result.MatchedCount == 0 {
			continue
		}
		outcome.Results = append(outcome.Results, models.RankedRecipe{
			Recipe:      *recipe,
			MatchResult: result,
		})
	}

	sort.Slice(outcome.Results, func(i, j int) bool {
		a, b := outcome.Results[i], outcome.Results[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.RatingCount != b.RatingCount {
			return a.RatingCount > b.RatingCount
		}
		return a.ID < b.ID
	})

	outcome.TotalScored = len(outcome.Results)
	if limit > 0 && len(outcome.Results) > limit {
		outcome.Results = outcome.Results[:limit]
	}
	return outcome
}

// Score computes the match diagnostics of one recipe. Missing ingredients
// keep the recipe's order and spelling.
func (m *Matcher) Score(recipe *models.Recipe, pantry []string) models.MatchResult {
	result := models.MatchResult{
		TotalIngredients:   len(recipe.Ingredients),
		MissingIngredients: []string{},
	}
	for _, ingredient := range recipe.Ingredients {
		if m.inPantry(Normalize(ingredient), pantry) {
			result.MatchedCount++
		} else {
			result.MissingIngredients = append(result.MissingIngredients, ingredient)
		}
	}
	if result.TotalIngredients > 0 {
		result.MatchScore = int(math.Round(100 * float64(result.MatchedCount) / float64(result.TotalIngredients)))
	}
	return result
}

func (m *Matcher) inPantry(ingredient string, pantry []string) bool {
	if ingredient == "" {
		return false
	}
	for _, have := range pantry {
		if m.equal(ingredient, have) {
			return true
		}
	}
	return false
}

func (m *Matcher) equal(a, b string) bool {
	if m.policy == MatchExact {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// PassesFilter applies the hard filters in order: dietary, difficulty, time,
// servings.
func PassesFilter(recipe *models.Recipe, filter models.SearchFilter) bool {
	if active(filter.Dietary) && recipe.Dietary != filter.Dietary {
		return false
	}
	if active(filter.Difficulty) && string(recipe.Difficulty) != filter.Difficulty {
		return false
	}
	if filter.MaxTime > 0 && recipe.CookTime > filter.MaxTime {
		return false
	}
	if filter.Servings > 0 && recipe.Servings < filter.Servings {
		return false
	}
	return true
}

func active(value string) bool {
	return value != "" && value != models.FilterAny
}
