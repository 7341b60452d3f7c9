package app

import (
	"time"

	"github.com/ak/flavorfusion/internal/app/middleware"
	"github.com/gin-gonic/gin"
)

// ==================== Session handlers ====================

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *Application) createSession(c *gin.Context) {
	session, err := a.sessions.Create(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken(a.tokenConfig, session.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}

	createdResponse(c, SessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	})
}

func (a *Application) listFavorites(c *gin.Context) {
	recipes, err := a.sessions.Favorites(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	listResponse(c, recipes, len(recipes))
}

func (a *Application) addFavorite(c *gin.Context) {
	id, ok := a.recipeID(c, "id")
	if !ok {
		return
	}
	recipes, err := a.sessions.AddFavorite(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	listResponse(c, recipes, len(recipes))
}

func (a *Application) removeFavorite(c *gin.Context) {
	id, ok := a.recipeID(c, "id")
	if !ok {
		return
	}
	recipes, err := a.sessions.RemoveFavorite(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	listResponse(c, recipes, len(recipes))
}

func (a *Application) getSuggestions(c *gin.Context) {
	recipes, err := a.sessions.Suggestions(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	listResponse(c, recipes, len(recipes))
}
