package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var serverURL string

func defaultServerURL() string {
	if v := os.Getenv("PORTFOLIO_URL"); v != "" {
		return v
	}
	return "http://localhost:8345"
}

// apiError is a failed call decoded from the server's error body
type apiError struct {
	Status  int
	Name    string
	Message string
}

func (e *apiError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// call sends in as JSON, when non-nil, and decodes the response into out, when non-nil
func (c *apiClient) call(ctx context.Context, method, p string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/api"+p, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &apiError{
			Status:  resp.StatusCode,
			Name:    gjson.GetBytes(data, "errorName").String(),
			Message: gjson.GetBytes(data, "message").String(),
		}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func escape(s string) string {
	return url.PathEscape(s)
}
