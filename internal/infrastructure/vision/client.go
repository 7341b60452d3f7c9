// Package vision talks to the Google Cloud Vision REST API.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
)

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
	Model      string `json:"model,omitempty"`
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image struct {
		Content string `json:"content"`
	} `json:"image"`
	Features []feature `json:"features"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []struct {
			Description string  `json:"description"`
			Score       float64 `json:"score"`
		} `json:"labelAnnotations"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	} `json:"responses"`
}

// Client detects image labels. It satisfies services.LabelDetector.
type Client struct {
	client     *resty.Client
	endpoint   string
	maxResults int
}

// NewClient creates a Vision client from configuration
func NewClient(cfg config.VisionConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetQueryParam("key", cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	return &Client{
		client:     client,
		endpoint:   cfg.Endpoint,
		maxResults: maxResults,
	}
}

// DetectLabels runs label detection on an encoded image
func (c *Client) DetectLabels(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	req := imageRequest{
		Features: []feature{{Type: "LABEL_DETECTION", MaxResults: c.maxResults, Model: "builtin/latest"}},
	}
	req.Image.Content = base64.StdEncoding.EncodeToString(image)

	var result annotateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(annotateRequest{Requests: []imageRequest{req}}).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Vision API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("Vision API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(result.Responses) == 0 {
		return nil, fmt.Errorf("no responses in Vision API result")
	}
	first := result.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("Vision API error %d: %s", first.Error.Code, first.Error.Message)
	}

	labels := make([]string, 0, len(first.LabelAnnotations))
	for _, a := range first.LabelAnnotations {
		labels = append(labels, a.Description)
	}
	return labels, nil
}
