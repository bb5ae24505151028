// Package backend is the HTTP/JSON client for the webhook stats backend.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wonny/dealfunnel/pkg/httputil"
	"github.com/wonny/dealfunnel/pkg/logger"
)

// maxBodyBytes bounds how much of a response is read
const maxBodyBytes = 8 << 20

// Client handles communication with the stats backend
// ⭐ SSOT: backend API calls happen in this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a backend client rooted at baseURL (e.g. "http://127.0.0.1:8000")
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// getJSON issues a GET to path (already escaped) with params and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return networkFailure(err, "GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return networkFailure(errors.Newf("unexpected status code: %d", resp.StatusCode), "GET %s", path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return networkFailure(err, "read body of %s", path)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return malformed(err, "decode %s", path)
	}

	return nil
}
