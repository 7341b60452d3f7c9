package app

import (
	"math"
	"strconv"

	"github.com/ak/flavorfusion/internal/app/middleware"
	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/services"
	"github.com/ak/flavorfusion/internal/infrastructure/metrics"
	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ==================== Recipe handlers ====================

type SearchRequest struct {
	Ingredients []string `json:"ingredients"`
	Dietary     string   `json:"dietary"`
	Difficulty  string   `json:"difficulty"`
	MaxTime     int      `json:"max_time"`
	Servings    int      `json:"servings"`
	Limit       int      `json:"limit"`
}

// RateRequest carries the rating as a number so that fractional values are
// reported as invalid ratings rather than malformed bodies.
type RateRequest struct {
	RecipeID int64    `json:"recipe_id" binding:"required"`
	Rating   *float64 `json:"rating"`
}

// RecipeDetail is a recipe, possibly scaled to a requested serving count
type RecipeDetail struct {
	models.Recipe
	OriginalServings int     `json:"original_servings,omitempty"`
	ScaleRatio       float64 `json:"scale_ratio,omitempty"`
}

type SubstitutionsResponse struct {
	RecipeID      int64             `json:"recipe_id"`
	Substitutions map[string]string `json:"substitutions"`
}

func (a *Application) listRecipes(c *gin.Context) {
	recipes := a.catalog.List()
	listResponse(c, recipes, len(recipes))
}

func (a *Application) getRecipe(c *gin.Context) {
	id, ok := a.recipeID(c, "id")
	if !ok {
		return
	}

	raw := c.Query("servings")
	if raw == "" {
		recipe, err := a.catalog.Get(id)
		if err != nil {
			a.respondError(c, err)
			return
		}
		successResponse(c, RecipeDetail{Recipe: recipe})
		return
	}

	servings, err := strconv.Atoi(raw)
	if err != nil {
		a.respondError(c, apperrors.InvalidInput("servings must be an integer"))
		return
	}
	original, err := a.catalog.Get(id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	scaled, ratio, err := a.catalog.Scaled(id, servings)
	if err != nil {
		a.respondError(c, err)
		return
	}
	successResponse(c, RecipeDetail{
		Recipe:           scaled,
		OriginalServings: original.Servings,
		ScaleRatio:       ratio,
	})
}

func (a *Application) quickSearch(c *gin.Context) {
	recipes, err := a.catalog.QuickSearch(c.Query("q"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	listResponse(c, recipes, len(recipes))
}

func (a *Application) searchRecipes(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("invalid search request").WithDetails(err.Error()))
		return
	}

	outcome, err := a.catalog.Search(services.SearchRequest{
		Ingredients: req.Ingredients,
		Filter: models.SearchFilter{
			Dietary:    req.Dietary,
			Difficulty: req.Difficulty,
			MaxTime:    req.MaxTime,
			Servings:   req.Servings,
		},
		Limit: req.Limit,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}

	metrics.RecordSearch(len(outcome.Results))
	successResponse(c, outcome)
}

func (a *Application) rateRecipe(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("invalid rating request").WithDetails(err.Error()))
		return
	}
	if req.Rating == nil {
		metrics.RecordRating(false)
		a.respondError(c, apperrors.InvalidRating(nil))
		return
	}
	value := *req.Rating
	if value != math.Trunc(value) || value < models.MinRating || value > models.MaxRating {
		metrics.RecordRating(false)
		a.respondError(c, apperrors.InvalidRating(value))
		return
	}

	result, err := a.catalog.SubmitRating(c.Request.Context(), req.RecipeID, int(value))
	if err != nil {
		metrics.RecordRating(false)
		a.respondError(c, err)
		return
	}
	metrics.RecordRating(true)

	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		if err := a.sessions.RecordRating(c.Request.Context(), sessionID, req.RecipeID, int(value)); err != nil {
			a.logger.WithSession(sessionID).Warn("Failed to record rating in session history",
				zap.Int64("recipe_id", req.RecipeID), zap.Error(err))
		}
	}

	successResponse(c, result)
}

func (a *Application) getSubstitutions(c *gin.Context) {
	id, ok := a.recipeID(c, "id")
	if !ok {
		return
	}
	subs, err := a.catalog.GetSubstitutions(id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	successResponse(c, SubstitutionsResponse{RecipeID: id, Substitutions: subs})
}
