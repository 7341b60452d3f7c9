package models

import (
	"math"
	"strings"
)

// Difficulty is how demanding a recipe is to cook
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Dietary tags used by the seed catalog. Any other tag is accepted and
// matched exactly.
const (
	DietaryRegular    = "regular"
	DietaryVegetarian = "vegetarian"
	DietaryVegan      = "vegan"
)

// FilterAny disables a dietary or difficulty filter
const FilterAny = "any"

const (
	MinRating = 1
	MaxRating = 5
)

// Recipe represents a catalog recipe. Only Rating and RatingCount change
// after the catalog is loaded.
type Recipe struct {
	ID            int64              `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description"`
	Cuisine       string             `bson:"cuisine,omitempty" json:"cuisine"`
	Ingredients   []string           `bson:"ingredients" json:"ingredients"`
	Instructions  []string           `bson:"instructions" json:"instructions"`
	Nutrition     map[string]float64 `bson:"nutrition,omitempty" json:"nutrition"`
	Substitutions map[string]string  `bson:"substitutions,omitempty" json:"substitutions"`
	CookTime      int                `bson:"cook_time" json:"cook_time"` // in minutes
	Difficulty    Difficulty         `bson:"difficulty" json:"difficulty"`
	Dietary       string             `bson:"dietary" json:"dietary"`
	Servings      int                `bson:"servings" json:"servings"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Rating        float64            `bson:"rating" json:"rating"`
	RatingCount   int                `bson:"rating_count" json:"rating_count"`
}

// Clone returns a deep copy so callers can hold a snapshot without sharing
// slices or maps with the catalog.
func (r *Recipe) Clone() Recipe {
	c := *r
	c.Ingredients = append([]string(nil), r.Ingredients...)
	c.Instructions = append([]string(nil), r.Instructions...)
	if r.Nutrition != nil {
		c.Nutrition = make(map[string]float64, len(r.Nutrition))
		for k, v := range r.Nutrition {
			c.Nutrition[k] = v
		}
	}
	if r.Substitutions != nil {
		c.Substitutions = make(map[string]string, len(r.Substitutions))
		for k, v := range r.Substitutions {
			c.Substitutions[k] = v
		}
	}
	return c
}

// ApplyRating folds one more rating into the running mean
func (r *Recipe) ApplyRating(value int) {
	total := r.Rating*float64(r.RatingCount) + float64(value)
	r.RatingCount++
	r.Rating = total / float64(r.RatingCount)
}

// ScaleTo returns a copy adjusted to the requested number of servings, with
// nutrition values multiplied by the serving ratio and rounded to one decimal.
func (r *Recipe) ScaleTo(servings int) (Recipe, float64) {
	c := r.Clone()
	if servings <= 0 || r.Servings <= 0 || servings == r.Servings {
		return c, 1
	}
	ratio := float64(servings) / float64(r.Servings)
	for k, v := range c.Nutrition {
		c.Nutrition[k] = math.Round(v*ratio*10) / 10
	}
	c.Servings = servings
	return c, ratio
}

// Validate checks the fields a catalog record must carry
func (r *Recipe) Validate() error {
	switch {
	case r.ID <= 0:
		return errInvalid("id must be positive")
	case strings.TrimSpace(r.Name) == "":
		return errInvalid("name is required")
	case r.CookTime <= 0:
		return errInvalid("cook_time must be positive")
	case r.Servings <= 0:
		return errInvalid("servings must be positive")
	case !r.Difficulty.Valid():
		return errInvalid("difficulty must be easy, medium or hard")
	case r.Rating < 0 || r.Rating > MaxRating:
		return errInvalid("rating must be within [0, 5]")
	case r.RatingCount < 0:
		return errInvalid("rating_count must not be negative")
	}
	return nil
}

type invalidRecipeError string

func (e invalidRecipeError) Error() string { return "invalid recipe: " + string(e) }

func errInvalid(msg string) error { return invalidRecipeError(msg) }

// SearchFilter holds the non-ingredient constraints of a search. Empty or
// "any" disables Dietary and Difficulty; zero disables MaxTime and Servings.
type SearchFilter struct {
	Dietary    string `json:"dietary"`
	Difficulty string `json:"difficulty"`
	MaxTime    int    `json:"max_time"`
	Servings   int    `json:"servings"`
}

// MatchResult is the per-recipe diagnostic of a search
type MatchResult struct {
	MatchedCount       int      `json:"matched_count"`
	TotalIngredients   int      `json:"total_ingredients"`
	MatchScore         int      `json:"match_score"`
	MissingIngredients []string `json:"missing_ingredients"`
}

// RankedRecipe is a recipe with its match diagnostics, flattened the way
// clients render search cards.
type RankedRecipe struct {
	Recipe
	MatchResult
}

// SearchOutcome is the ranked list plus summary counts
type SearchOutcome struct {
	Results       []RankedRecipe `json:"results"`
	TotalFiltered int            `json:"total_filtered"`
	TotalScored   int            `json:"total_scored"`
}
