package services

import (
	"reflect"
	"testing"

	"github.com/ak/flavorfusion/internal/domain/models"
)

func recipe(id int64, ingredients ...string) models.Recipe {
	return models.Recipe{
		ID:          id,
		Name:        "recipe",
		Ingredients: ingredients,
		CookTime:    30,
		Difficulty:  models.DifficultyEasy,
		Dietary:     models.DietaryRegular,
		Servings:    4,
	}
}

func ids(results []models.RankedRecipe) []int64 {
	out := make([]int64, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestScore(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	r := recipe(1, "tomato", "onion", "garlic", "basil")

	got := m.Score(&r, []string{"tomato", "onion", "garlic"})

	if got.MatchedCount != 3 || got.TotalIngredients != 4 || got.MatchScore != 75 {
		t.Errorf("Score() = %+v, want 3/4/75", got)
	}
	if !reflect.DeepEqual(got.MissingIngredients, []string{"basil"}) {
		t.Errorf("MissingIngredients = %v, want [basil]", got.MissingIngredients)
	}
}

func TestScoreRounding(t *testing.T) {
	m := NewMatcher(MatchExact)
	tests := []struct {
		pantry []string
		want   int
	}{
		{[]string{"a"}, 33},
		{[]string{"a", "b"}, 67},
		{[]string{"a", "b", "c"}, 100},
	}
	r := recipe(1, "a", "b", "c")
	for _, tt := range tests {
		if got := m.Score(&r, tt.pantry).MatchScore; got != tt.want {
			t.Errorf("Score(%v) = %d, want %d", tt.pantry, got, tt.want)
		}
	}
}

func TestScoreKeepsRecipeSpelling(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	r := recipe(1, "  Olive Oil", "Salt", "Black Pepper")

	got := m.Score(&r, NormalizePantry([]string{"SALT "}))

	want := []string{"  Olive Oil", "Black Pepper"}
	if !reflect.DeepEqual(got.MissingIngredients, want) {
		t.Errorf("MissingIngredients = %q, want %q", got.MissingIngredients, want)
	}
}

func TestMatchPolicies(t *testing.T) {
	r := recipe(1, "cherry tomatoes", "peach")
	pantry := []string{"tomato", "pea"}

	sub := NewMatcher(MatchSubstring).Score(&r, pantry)
	if sub.MatchedCount != 2 {
		t.Errorf("substring matched %d, want 2", sub.MatchedCount)
	}

	exact := NewMatcher(MatchExact).Score(&r, pantry)
	if exact.MatchedCount != 0 {
		t.Errorf("exact matched %d, want 0", exact.MatchedCount)
	}
}

func TestNewMatcherUnknownPolicy(t *testing.T) {
	if got := NewMatcher("fuzzy").Policy(); got != MatchSubstring {
		t.Errorf("Policy() = %q, want %q", got, MatchSubstring)
	}
}

func TestNormalizePantry(t *testing.T) {
	got := NormalizePantry([]string{" Tomato", "", "   ", "ONION", "tomato "})
	want := []string{"tomato", "onion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizePantry() = %v, want %v", got, want)
	}
}

func TestMatchTieBreak(t *testing.T) {
	m := NewMatcher(MatchExact)
	a := recipe(3, "a", "b", "c", "d", "x")
	b := recipe(1, "a", "b", "c", "d", "y")
	c := recipe(2, "a", "b", "c", "d", "z")
	a.RatingCount = 10
	b.RatingCount = 2
	c.RatingCount = 2

	out := m.Match([]models.Recipe{b, c, a}, []string{"a", "b", "c", "d"}, models.SearchFilter{}, 0)

	for _, r := range out.Results {
		if r.MatchScore != 80 {
			t.Fatalf("recipe %d scored %d, want 80", r.ID, r.MatchScore)
		}
	}
	if got, want := ids(out.Results), []int64{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMatchSortsByScore(t *testing.T) {
	m := NewMatcher(MatchExact)
	catalog := []models.Recipe{
		recipe(1, "a", "b", "c", "d"),
		recipe(2, "a", "b"),
		recipe(3, "a", "x", "y", "z"),
	}
	out := m.Match(catalog, []string{"a", "b"}, models.SearchFilter{}, 0)
	if got, want := ids(out.Results), []int64{2, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMatchZeroMatchExclusion(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	catalog := []models.Recipe{
		recipe(1, "tomato", "basil"),
		recipe(2, "flour", "sugar"),
		recipe(3, "rice"),
	}

	out := m.Match(catalog, []string{"tomato"}, models.SearchFilter{}, 0)

	if out.TotalFiltered != 3 {
		t.Errorf("TotalFiltered = %d, want 3", out.TotalFiltered)
	}
	if got, want := ids(out.Results), []int64{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("results = %v, want %v", got, want)
	}
	for _, r := range out.Results {
		if r.MatchedCount == 0 {
			t.Errorf("recipe %d has zero matches in results", r.ID)
		}
	}
}

func TestMatchEmptyPantry(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	catalog := []models.Recipe{recipe(1, "a"), recipe(2, "b")}
	vegan := recipe(3, "c")
	vegan.Dietary = models.DietaryVegan
	catalog = append(catalog, vegan)

	out := m.Match(catalog, nil, models.SearchFilter{Dietary: models.DietaryVegan}, 0)

	if len(out.Results) != 0 {
		t.Errorf("results = %v, want none", ids(out.Results))
	}
	if out.TotalFiltered != 1 {
		t.Errorf("TotalFiltered = %d, want 1", out.TotalFiltered)
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	out := NewMatcher(MatchSubstring).Match(nil, []string{"a"}, models.SearchFilter{}, 0)
	if len(out.Results) != 0 || out.TotalFiltered != 0 || out.TotalScored != 0 {
		t.Errorf("Match(empty) = %+v", out)
	}
	if out.Results == nil {
		t.Error("Results is nil, want empty slice")
	}
}

func TestMatchFilters(t *testing.T) {
	quick := recipe(1, "egg")
	quick.CookTime = 10
	quick.Servings = 1

	slowVegan := recipe(2, "egg")
	slowVegan.CookTime = 90
	slowVegan.Dietary = models.DietaryVegan
	slowVegan.Servings = 6

	hard := recipe(3, "egg")
	hard.Difficulty = models.DifficultyHard
	hard.CookTime = 45
	hard.Servings = 4

	catalog := []models.Recipe{quick, slowVegan, hard}

	tests := []struct {
		name   string
		filter models.SearchFilter
		want   []int64
	}{
		{"unconstrained", models.SearchFilter{}, []int64{1, 2, 3}},
		{"any values", models.SearchFilter{Dietary: "any", Difficulty: "any"}, []int64{1, 2, 3}},
		{"dietary", models.SearchFilter{Dietary: models.DietaryVegan}, []int64{2}},
		{"difficulty", models.SearchFilter{Difficulty: "hard"}, []int64{3}},
		{"max time inclusive", models.SearchFilter{MaxTime: 45}, []int64{1, 3}},
		{"servings lower bound", models.SearchFilter{Servings: 4}, []int64{2, 3}},
		{"combined", models.SearchFilter{MaxTime: 60, Servings: 2}, []int64{3}},
		{"nothing passes", models.SearchFilter{Dietary: "vegan", Difficulty: "hard"}, []int64{}},
	}

	m := NewMatcher(MatchExact)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := m.Match(catalog, []string{"egg"}, tt.filter, 0)
			if got := ids(out.Results); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("results = %v, want %v", got, tt.want)
			}
			if out.TotalFiltered != len(tt.want) {
				t.Errorf("TotalFiltered = %d, want %d", out.TotalFiltered, len(tt.want))
			}
			for _, r := range out.Results {
				if tt.filter.MaxTime > 0 && r.CookTime > tt.filter.MaxTime {
					t.Errorf("recipe %d exceeds max_time", r.ID)
				}
				if r.Servings < tt.filter.Servings {
					t.Errorf("recipe %d below servings", r.ID)
				}
			}
		})
	}
}

func TestMatchLimit(t *testing.T) {
	m := NewMatcher(MatchExact)
	catalog := []models.Recipe{recipe(1, "a"), recipe(2, "a"), recipe(3, "a")}

	out := m.Match(catalog, []string{"a"}, models.SearchFilter{}, 2)

	if got, want := ids(out.Results), []int64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("results = %v, want %v", got, want)
	}
	if out.TotalScored != 3 {
		t.Errorf("TotalScored = %d, want 3", out.TotalScored)
	}
}

func TestMatchIdempotent(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	catalog := []models.Recipe{
		recipe(1, "tomato", "onion"),
		recipe(2, "onion", "garlic", "rice"),
		recipe(3, "garlic"),
		recipe(4, "tomato", "garlic"),
	}
	pantry := []string{"garlic", "tomato"}

	first := m.Match(catalog, pantry, models.SearchFilter{}, 0)
	second := m.Match(catalog, pantry, models.SearchFilter{}, 0)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Match() not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestMatchMonotonic(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	catalog := []models.Recipe{
		recipe(1, "tomato", "onion", "basil"),
		recipe(2, "rice", "egg", "soy sauce"),
		recipe(3, "flour", "egg"),
	}
	pantries := [][]string{
		{"tomato"},
		{"tomato", "egg"},
		{"tomato", "egg", "rice"},
		{"tomato", "egg", "rice", "flour", "basil"},
	}

	prev := map[int64]models.MatchResult{}
	for _, pantry := range pantries {
		for i := range catalog {
			got := m.Score(&catalog[i], pantry)
			if p, ok := prev[catalog[i].ID]; ok {
				if got.MatchedCount < p.MatchedCount || got.MatchScore < p.MatchScore {
					t.Errorf("recipe %d decreased from %+v to %+v with pantry %v", catalog[i].ID, p, got, pantry)
				}
			}
			prev[catalog[i].ID] = got
		}
	}
}

func TestMatchDoesNotMutateCatalog(t *testing.T) {
	m := NewMatcher(MatchSubstring)
	catalog := []models.Recipe{recipe(2, "a"), recipe(1, "a", "b")}

	m.Match(catalog, []string{"a", "b"}, models.SearchFilter{}, 0)

	if catalog[0].ID != 2 || catalog[1].ID != 1 {
		t.Error("Match() reordered its input")
	}
}
