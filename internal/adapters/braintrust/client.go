// Package braintrust contains the HTTP client for the Braintrust trace
// source and feedback sink.
package braintrust

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// DefaultBaseURL is the public Braintrust API endpoint.
const DefaultBaseURL = "https://api.braintrust.dev"

const requestTimeout = 30 * time.Second

// Client implements secondary.TraceSource and secondary.FeedbackSink
// against the Braintrust experiment API.
type Client struct {
	baseURL      string
	apiKey       string
	experimentID string
	httpClient   *http.Client
}

// NewClient creates a Braintrust client for one experiment. An empty baseURL
// falls back to the public API.
func NewClient(baseURL, apiKey, experimentID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		experimentID: experimentID,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// fetchResponse mirrors the experiment fetch payload. Objects stay loosely
// typed; translation to internal traces happens in the application layer.
type fetchResponse struct {
	Objects []map[string]any `json:"objects"`
	Cursor  string           `json:"cursor"`
}

// FetchPage retrieves one page of experiment records.
func (c *Client) FetchPage(ctx context.Context, cursor string, limit int) (*secondary.ExternalTracePage, error) {
	endpoint := fmt.Sprintf("%s/v1/experiment/%s/fetch", c.baseURL, c.experimentID)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &review.ExternalDependencyError{System: "braintrust", Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &review.ExternalDependencyError{
			System: "braintrust",
			Op:     "fetch",
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body)),
		}
	}

	var decoded fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &review.ExternalDependencyError{System: "braintrust", Op: "fetch", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	page := &secondary.ExternalTracePage{NextCursor: decoded.Cursor}
	for _, object := range decoded.Objects {
		page.Records = append(page.Records, toExternalRecord(object))
	}
	return page, nil
}

// SubmitFeedback sends a batch of feedback items to the experiment.
func (c *Client) SubmitFeedback(ctx context.Context, items []secondary.FeedbackItem) error {
	endpoint := fmt.Sprintf("%s/v1/experiment/%s/feedback", c.baseURL, c.experimentID)

	payload, err := json.Marshal(map[string]any{"feedback": items})
	if err != nil {
		return fmt.Errorf("failed to encode feedback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build feedback request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &review.ExternalDependencyError{System: "braintrust", Op: "feedback", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &review.ExternalDependencyError{
			System: "braintrust",
			Op:     "feedback",
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body)),
		}
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// toExternalRecord lifts the known fields out of a raw experiment object.
// Unrecognized top-level fields land in Extra untouched.
func toExternalRecord(object map[string]any) secondary.ExternalTraceRecord {
	record := secondary.ExternalTraceRecord{
		Input:  object["input"],
		Output: object["output"],
	}

	if id, ok := object["id"].(string); ok {
		record.ID = id
	}
	if created, ok := object["created"].(string); ok {
		record.Created = created
	}
	if metadata, ok := object["metadata"].(map[string]any); ok {
		record.Metadata = metadata
	}
	if scores, ok := object["scores"].(map[string]any); ok {
		record.Scores = make(map[string]float64, len(scores))
		for name, value := range scores {
			if score, ok := value.(float64); ok {
				record.Scores[name] = score
			}
		}
	}

	for key, value := range object {
		switch key {
		case "id", "input", "output", "created", "metadata", "scores":
		default:
			if record.Extra == nil {
				record.Extra = make(map[string]any)
			}
			record.Extra[key] = value
		}
	}

	return record
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(b)
}

// Ensure Client implements both ports.
var (
	_ secondary.TraceSource  = (*Client)(nil)
	_ secondary.FeedbackSink = (*Client)(nil)
)
