package services

import (
	"sort"

	"github.com/ak/flavorfusion/internal/domain/models"
)

const (
	maxSuggestions        = 6
	topCuisineCount       = 3
	perCuisineSuggestions = 2
	topDifficultyCount    = 2
	highRatingThreshold   = 4.0
	highRatedSuggestions  = 2
)

// preferences summarises a rating history
type preferences struct {
	cuisines     map[string]int
	difficulties map[string]int
	avgRating    float64
}

func analyzePreferences(catalog []models.Recipe, history []models.RatingEntry) preferences {
	prefs := preferences{
		cuisines:     make(map[string]int),
		difficulties: make(map[string]int),
	}
	if len(history) == 0 {
		return prefs
	}

	byID := make(map[int64]*models.Recipe, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	sum := 0
	for _, entry := range history {
		sum += entry.Rating
		if r, ok := byID[entry.RecipeID]; ok {
			prefs.cuisines[r.Cuisine]++
			prefs.difficulties[string(r.Difficulty)]++
		}
	}
	prefs.avgRating = float64(sum) / float64(len(history))
	return prefs
}

// topKeys returns up to n keys by descending count, ties alphabetical
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Suggest recommends recipes from a session's rating history: recipes from
// the most-rated cuisines and difficulties that score at least the session's
// average rating, topped up with highly rated recipes. catalog must be in id
// order.
func Suggest(catalog []models.Recipe, history []models.RatingEntry) []models.Recipe {
	prefs := analyzePreferences(catalog, history)
	used := make(map[int64]bool)
	suggestions := make([]models.Recipe, 0, maxSuggestions)

	pick := func(r models.Recipe) {
		suggestions = append(suggestions, r)
		used[r.ID] = true
	}

	if len(history) > 0 {
		for _, cuisine := range topKeys(prefs.cuisines, topCuisineCount) {
			taken := 0
			for _, r := range catalog {
				if taken == perCuisineSuggestions {
					break
				}
				if r.Cuisine == cuisine && !used[r.ID] && r.Rating >= prefs.avgRating {
					pick(r)
					taken++
				}
			}
		}

		for _, difficulty := range topKeys(prefs.difficulties, topDifficultyCount) {
			for _, r := range catalog {
				if string(r.Difficulty) == difficulty && !used[r.ID] && r.Rating >= prefs.avgRating {
					pick(r)
					break
				}
			}
		}
	}

	taken := 0
	for _, r := range catalog {
		if taken == highRatedSuggestions {
			break
		}
		if !used[r.ID] && r.Rating >= highRatingThreshold {
			pick(r)
			taken++
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
