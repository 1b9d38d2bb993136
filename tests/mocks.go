package tests

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// scriptedHTTPClient replays canned collector API responses in order.
type scriptedHTTPClient struct {
	mu        sync.Mutex
	responses []*http.Response
	requests  []*http.Request
}

func respondWith(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func (c *scriptedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)

	if len(c.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}

	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}
