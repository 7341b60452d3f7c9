package services

import (
	"context"
	"strings"

	"github.com/ak/flavorfusion/internal/pkg/logger"
	"go.uber.org/zap"
)

// LabelDetector is the external image label service. Implementations return
// raw labels; they do not filter or fall back.
type LabelDetector interface {
	DetectLabels(ctx context.Context, image []byte) ([]string, error)
}

// DefaultFallbackIngredients is returned when detection produces nothing usable
var DefaultFallbackIngredients = []string{"tomato", "onion", "garlic", "bell pepper"}

const maxDetectedIngredients = 8

var foodKeywords = []string{
	"food", "fruit", "vegetable", "meat", "fish", "chicken", "beef", "pork", "tomato", "onion",
	"garlic", "potato", "carrot", "rice", "pasta", "bread", "cheese", "milk", "egg", "butter", "oil",
	"salt", "pepper", "herb", "spice", "flour", "sugar", "lemon", "apple", "banana", "orange", "grape",
}

// Detection is the outcome of an ingredient detection request
type Detection struct {
	Ingredients []string `json:"ingredients"`
	Fallback    bool     `json:"fallback"`
	Reason      string   `json:"reason,omitempty"`
}

// IngredientDetector turns images into pantry entries. Upstream failures never
// reach the caller: they resolve to the fallback list with Fallback set.
type IngredientDetector struct {
	detector LabelDetector
	fallback []string
	logger   *logger.Logger
}

// NewIngredientDetector creates a detector. A nil LabelDetector means
// detection is disabled and every call returns the fallback.
func NewIngredientDetector(detector LabelDetector, fallback []string, log *logger.Logger) *IngredientDetector {
	if len(fallback) == 0 {
		fallback = DefaultFallbackIngredients
	}
	return &IngredientDetector{
		detector: detector,
		fallback: append([]string(nil), fallback...),
		logger:   log.WithComponent("ingredient-detector"),
	}
}

func (d *IngredientDetector) fallbackResult(reason string) Detection {
	return Detection{
		Ingredients: append([]string(nil), d.fallback...),
		Fallback:    true,
		Reason:      reason,
	}
}

// Detect returns food ingredients found in image
func (d *IngredientDetector) Detect(ctx context.Context, image []byte) Detection {
	if d.detector == nil {
		return d.fallbackResult("detection disabled")
	}

	labels, err := d.detector.DetectLabels(ctx, image)
	if err != nil {
		d.logger.Warn("Label detection failed, using fallback ingredients", zap.Error(err))
		return d.fallbackResult("detection failed")
	}

	ingredients := FilterFoodLabels(labels)
	if len(ingredients) == 0 {
		d.logger.Debug("No food labels detected", zap.Strings("labels", labels))
		return d.fallbackResult("no food labels detected")
	}
	return Detection{Ingredients: ingredients}
}

// FilterFoodLabels keeps labels related to a food keyword, normalized and
// capped at eight entries.
func FilterFoodLabels(labels []string) []string {
	out := make([]string, 0, maxDetectedIngredients)
	seen := make(map[string]bool)
	for _, label := range labels {
		l := Normalize(label)
		if l == "" || seen[l] || !isFoodLabel(l) {
			continue
		}
		seen[l] = true
		out = append(out, l)
		if len(out) == maxDetectedIngredients {
			break
		}
	}
	return out
}

func isFoodLabel(label string) bool {
	for _, kw := range foodKeywords {
		if strings.Contains(label, kw) || strings.Contains(kw, label) {
			return true
		}
	}
	return false
}
