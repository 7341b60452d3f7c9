package app

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiVersion = "0.1.0"

// APIResponse is the standard API response format
type APIResponse struct {
	Success   bool                `json:"success"`
	Data      interface{}         `json:"data,omitempty"`
	Error     *apperrors.APIError `json:"error,omitempty"`
	Meta      *APIMeta            `json:"meta,omitempty"`
	Timestamp string              `json:"timestamp"`
}

type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func listResponse(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Meta:      &APIMeta{Total: total},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError writes err as an error envelope. Errors that are not
// *APIError become INTERNAL_ERROR and are logged with their cause.
func (a *Application) respondError(c *gin.Context, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		a.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(apiErr.HTTPStatus, APIResponse{
		Success:   false,
		Error:     apiErr,
		Meta:      &APIMeta{RequestID: requestid.Get(c)},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Application) recipeID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		a.respondError(c, apperrors.InvalidInput("recipe id must be a positive integer").
			WithDetails(map[string]string{param: c.Param(param)}))
		return 0, false
	}
	return id, true
}

// Health and info endpoints

func (a *Application) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"recipes":   a.catalog.Size(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true
	if a.health != nil {
		for name, err := range a.health(c.Request.Context()) {
			if err != nil {
				ready = false
				checks[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"checks":    checks,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *Application) apiInfo(c *gin.Context) {
	successResponse(c, gin.H{
		"name":           "FlavorFusion",
		"version":        apiVersion,
		"description":    "Recipe discovery by pantry ingredients",
		"matching":       a.config.Matching.Policy,
		"vision_enabled": a.config.Vision.Enabled,
	})
}
