package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is the payload sent to the remote responder.
type Request struct {
	Message   string `json:"message"`
	Mood      string `json:"mood"`
	SessionID string `json:"sessionId"`
}

// Response is the remote responder's reply. The responder runs its own
// keyword scan server-side; InCrisis reflects that independent verdict.
type Response struct {
	Response      string `json:"response"`
	InCrisis      bool   `json:"inCrisis"`
	UsingFallback bool   `json:"usingFallback,omitempty"`
}

// Client calls the remote responder over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a responder client for the given endpoint URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Respond posts the request and decodes the reply. Any non-2xx status or
// malformed body is an error; the caller decides how to degrade.
func (c *Client) Respond(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode responder request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build responder request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("responder returned status %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode responder response: %w", err)
	}
	if out.Response == "" {
		return Response{}, fmt.Errorf("responder returned empty response body")
	}
	return out, nil
}
