// Package seed carries the built-in recipe catalog.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ak/flavorfusion/internal/domain/models"
)

//go:embed recipes.json
var recipesJSON []byte

// Recipes returns a fresh copy of the built-in catalog in id order
func Recipes() ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	if err := json.Unmarshal(recipesJSON, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode seed recipes: %w", err)
	}
	return recipes, nil
}
