package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/oauth2"

	"portfolio-backend/internal/types"
)

// DefaultEndpoint is the chat route of a locally running assistant-server.
const DefaultEndpoint = "http://localhost:7860/api/chat"

// StatusError is returned for non-2xx responses from the assistant endpoint.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("assistant returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("assistant returned %d %s", e.Code, e.Status)
}

// Client posts chat messages to the assistant endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a client for endpoint. When token is set every request
// carries it as a bearer token. Requests have no timeout; callers bound them
// through the context.
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar}
	if token != "" {
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}
	return &Client{endpoint: endpoint, httpClient: hc}
}

// Send posts message and returns the reply field, which may be empty.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(types.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e types.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return "", &StatusError{
			Code:    resp.StatusCode,
			Status:  http.StatusText(resp.StatusCode),
			Message: e.Error,
		}
	}

	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	return out.Reply, nil
}
