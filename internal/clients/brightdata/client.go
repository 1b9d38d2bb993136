package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/smartcv/searchpanel/internal/entities"
	"golang.org/x/time/rate"
)

var (
	// ErrTransport marks network failures, timeouts and non-2xx replies.
	ErrTransport = errors.New("collector request failed")
	// ErrProtocol marks well-formed replies missing a required field.
	ErrProtocol = errors.New("unexpected collector response")
)

const defaultRequestTimeout = 30 * time.Second

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the two dataset API calls this panel needs: triggering a
// collection and checking a snapshot's progress.
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	apiURL      string
	apiKey      string
	datasetID   string
	webhookURL  string
}

func NewClient(apiURL, apiKey, datasetID, webhookURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		apiURL:     apiURL,
		apiKey:     apiKey,
		datasetID:  datasetID,
		webhookURL: webhookURL,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetTimeout(timeout time.Duration) {
	if httpClient, ok := c.httpClient.(*http.Client); ok {
		httpClient.Timeout = timeout
	}
}

// Submit triggers a new collection and returns the snapshot identifier the
// remote system assigned to it.
func (c *Client) Submit(ctx context.Context, parameters entities.SearchParameters) (string, error) {

	if err := parameters.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal([]searchRequest{searchRequestFrom(parameters)})
	if err != nil {
		return "", fmt.Errorf("error encoding search request: %v", err)
	}

	requestURL := c.apiURL + "/trigger?" + triggerParams(c.datasetID, c.webhookURL).Encode()

	body, err := c.sendRequest(ctx, "POST", requestURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var response triggerResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: malformed trigger response: %v", ErrProtocol, err)
	}

	if response.SnapshotID == "" {
		return "", fmt.Errorf("%w: trigger response misses snapshot_id", ErrProtocol)
	}

	return response.SnapshotID, nil
}

// Poll returns the raw status payload of a snapshot. A malformed payload
// degrades to status "unknown" instead of an error; only transport-level
// failures are reported.
func (c *Client) Poll(ctx context.Context, snapshotID string) (*SnapshotStatus, error) {

	requestURL := c.apiURL + "/progress/" + snapshotID

	body, err := c.sendRequest(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	var status SnapshotStatus
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&status); err != nil {
		return &SnapshotStatus{Status: StatusUnknown}, nil
	}

	if status.Status == "" {
		status.Status = StatusUnknown
	}

	return &status, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response body: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %v, body: %v", ErrTransport, resp.StatusCode, string(body))
	}

	return body, nil
}
