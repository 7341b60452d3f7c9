package app

import (
	"io"

	"github.com/ak/flavorfusion/internal/infrastructure/metrics"
	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ==================== Ingredient detection handlers ====================

func (a *Application) detectIngredients(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		a.respondError(c, apperrors.Validation("multipart field \"image\" is required"))
		return
	}
	if a.config.Server.MaxUploadBytes > 0 && file.Size > a.config.Server.MaxUploadBytes {
		a.respondError(c, apperrors.Validation("image is too large").
			WithDetails(map[string]int64{"max_bytes": a.config.Server.MaxUploadBytes}))
		return
	}

	f, err := file.Open()
	if err != nil {
		a.respondError(c, apperrors.Validation("unable to read image"))
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		a.respondError(c, apperrors.Validation("unable to read image"))
		return
	}
	if len(image) == 0 {
		a.respondError(c, apperrors.Validation("image is empty"))
		return
	}

	detection := a.detector.Detect(c.Request.Context(), image)
	metrics.RecordDetection(detection.Fallback)
	successResponse(c, detection)
}
