// Package ocr is the client for the external receipt-parsing service. The
// service is a black box: it takes an image and returns roughly-shaped
// JSON whose numeric fields may arrive as strings. Cleaning that output
// into usable line items is the calculator package's job; this package
// only moves bytes and tolerates the loose encoding.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client calls the receipt parse service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a parse client for the given base URL. Requests are
// bounded by the timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Parse uploads a receipt image and returns the service's raw parse
// result. Upstream failures (transport errors, non-200 statuses,
// undecodable bodies) are returned as errors; no partial result is
// produced.
func (c *Client) Parse(ctx context.Context, filename, contentType string, image io.Reader) (*Receipt, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload form: %w", err)
	}

	url := c.baseURL + "/api/parse-receipt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parse service returned status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode parse response: %w", err)
	}
	return &receipt, nil
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
