package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// FirebaseClient talks to the Realtime Database REST API: every path maps to
// "{base}/{path}.json".
type FirebaseClient struct {
	baseURL    string
	auth       string
	httpClient *http.Client
}

// HTTPStatusError is returned when the database answers with a non-2xx status.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("firebase: status %d: %s", e.Status, e.Body)
}

func NewFirebaseClient(baseURL, auth string, httpClient *http.Client) *FirebaseClient {
	return &FirebaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: httpClient,
	}
}

// Put replaces the value at path with body (no merge) and returns the stored
// value echoed by the database.
func (c *FirebaseClient) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("firebase: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("firebase: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// Get returns the raw JSON at path. An absent node is the literal "null".
func (c *FirebaseClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("firebase: create request: %w", err)
	}
	return c.do(req)
}

func (c *FirebaseClient) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase: unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("firebase: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

func (c *FirebaseClient) url(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := c.baseURL + "/" + strings.Join(segs, "/") + ".json"
	if c.auth != "" {
		u += "?auth=" + url.QueryEscape(c.auth)
	}
	return u
}
