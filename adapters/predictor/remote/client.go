// Package remote calls an HTTP inference service for predictions.
//
// Request:  POST <url> {"rows": [{"date": "...", "zipcode": "...", ...}, ...]}
// Response: {"predictions": [412000.5, ...]} with one number per row.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"housecast/domain/dataset"
	"housecast/internal/errors"

	"github.com/tidwall/gjson"
)

// PredictionColumn is appended to the input rows
const PredictionColumn = "predicted_price"

// Config holds connection settings for the inference service
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client implements ports.Predictor over HTTP
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout defaults to 30 seconds.
func NewClient(config Config) (*Client, error) {
	url := strings.TrimSpace(config.URL)
	if url == "" {
		return nil, errors.ConfigInvalid("missing predictor URL")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}}, nil
}

type predictRequest struct {
	Rows []dataset.Row `json:"rows"`
}

// Predict posts the rows and returns them with a predicted_price column
func (c *Client) Predict(ctx context.Context, rows *dataset.Frame) (*dataset.Frame, error) {
	raw, err := json.Marshal(predictRequest{Rows: rows.Rows})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.ExternalServiceError("predictor", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("predictor", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ExternalServiceError("predictor",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	predictions := gjson.GetBytes(body, "predictions")
	if !predictions.IsArray() {
		return nil, errors.ExternalServiceError("predictor", fmt.Errorf("response has no predictions array"))
	}
	items := predictions.Array()
	if len(items) != rows.Len() {
		return nil, errors.ExternalServiceError("predictor",
			fmt.Errorf("got %d predictions for %d rows", len(items), rows.Len()))
	}

	values := make([]string, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, errors.ExternalServiceError("predictor",
				fmt.Errorf("prediction %d is not a number: %s", i, item.Raw))
		}
		values[i] = strconv.FormatFloat(item.Float(), 'f', -1, 64)
	}
	return rows.WithColumn(PredictionColumn, values)
}
