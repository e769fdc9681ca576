package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// apiClient is the small JSON-over-HTTP helper shared by every external
// recommendation source.
type apiClient struct {
	baseURL string
	headers map[string]string
	http    *http.Client
}

func newAPIClient(baseURL string, headers map[string]string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		headers: headers,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type requestOption struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends one request and decodes a 200 response into out.
func (c *apiClient) do(ctx context.Context, opt requestOption, out any) error {
	var body io.Reader
	if opt.body != nil {
		data, err := json.Marshal(opt.body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + opt.path
	if len(opt.query) > 0 {
		reqURL += "?" + opt.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, opt.method, reqURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(string(respBody), 200))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
