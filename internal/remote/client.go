package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alexanderramin/skiff/internal/repository"
)

// Client implements repository.RemoteRepo over the HTTP task collection
// protocol served by Server. It accepts any *http.Client, so the caller
// decides authentication: the composition root hands it an
// oauth2-authenticated client when a token is configured.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a remote client against baseURL. A nil httpClient
// falls back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

var _ repository.RemoteRepo = (*Client)(nil)

func (c *Client) ListAll(ctx context.Context) ([]*repository.RemoteTask, error) {
	var wire []wireTask
	if err := c.call(ctx, http.MethodGet, "/tasks", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]*repository.RemoteTask, 0, len(wire))
	for _, w := range wire {
		out = append(out, fromWire(w))
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, t *repository.RemoteTask) (*repository.RemoteTask, error) {
	var created wireTask
	if err := c.call(ctx, http.MethodPost, "/tasks", toWire(t), &created); err != nil {
		return nil, err
	}
	return fromWire(created), nil
}

func (c *Client) Update(ctx context.Context, t *repository.RemoteTask) error {
	return c.call(ctx, http.MethodPut, "/tasks/"+t.ID, toWire(t), nil)
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.call(ctx, http.MethodDelete, "/tasks/"+key, nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrRemoteGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: remote returned status %d: %s",
			method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
