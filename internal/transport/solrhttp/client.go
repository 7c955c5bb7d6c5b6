// Package solrhttp is the HTTP client for Solr's JSON API.
package solrhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/metrics"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10

	jsonContent = "application/json"
	formContent = "application/x-www-form-urlencoded"
)

// Client talks to one Solr installation over HTTP.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	password string
	logger   *zap.Logger
}

// Config holds the Solr connection settings.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewClient creates a Solr client. BaseURL points at the Solr root, e.g. http://localhost:8983/solr.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}
}

// Update posts an update command to its core.
func (c *Client) Update(ctx context.Context, req *solr.UpdateRequest) (solr.UpdateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return solr.UpdateResult{}, fmt.Errorf("encode update: %w", err)
	}

	var resp struct {
		Header solr.ResponseHeader `json:"responseHeader"`
	}
	params := url.Values{"wt": {"json"}}
	path := "/" + req.Core + "/update"
	if err := c.do(ctx, "update", req.Core, http.MethodPost, path, params, jsonContent, body, &resp); err != nil {
		return solr.UpdateResult{}, err
	}
	return solr.UpdateResult{Status: resp.Header.Status, QTime: resp.Header.QTime}, nil
}

// Select runs a compiled query. Parameters travel form-encoded in the body so
// long filter lists are not bounded by URL length.
func (c *Client) Select(ctx context.Context, q *solr.SelectQuery) (*solr.Response, error) {
	var resp solr.Response
	body := []byte(q.Params().Encode())
	path := "/" + q.Core + "/select"
	if err := c.do(ctx, "select", q.Core, http.MethodPost, path, nil, formContent, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that a core answers its admin ping handler.
func (c *Client) Ping(ctx context.Context, core string) error {
	var resp struct {
		Status string `json:"status"`
	}
	params := url.Values{"wt": {"json"}}
	if err := c.do(ctx, "ping", core, http.MethodGet, "/"+core+"/admin/ping", params, "", nil, &resp); err != nil {
		return err
	}
	if !strings.EqualFold(resp.Status, "OK") {
		return fmt.Errorf("ping %s: status %q", core, resp.Status)
	}
	return nil
}

// Version returns the Solr specification version from the system info handler.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp struct {
		Lucene struct {
			SolrSpecVersion string `json:"solr-spec-version"`
		} `json:"lucene"`
	}
	params := url.Values{"wt": {"json"}}
	if err := c.do(ctx, "version", "", http.MethodGet, "/admin/info/system", params, "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Lucene.SolrSpecVersion, nil
}

func (c *Client) do(
	ctx context.Context, op, core, method, path string,
	params url.Values, contentType string, body []byte, out any,
) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.SolrRequestsTotal.WithLabelValues(op, core, "error").Inc()
		c.logger.Debug("solr request failed",
			zap.String("op", op), zap.String("core", core), zap.Error(err))
		return fmt.Errorf("solr %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.SolrRequestDuration.WithLabelValues(op, core).Observe(duration.Seconds())

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.SolrRequestsTotal.WithLabelValues(op, core, "error").Inc()
		return parseError(resp)
	}
	metrics.SolrRequestsTotal.WithLabelValues(op, core, "success").Inc()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// parseError extracts Solr's error message from a rejected response.
func parseError(resp *http.Response) error {
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body solr.ErrorBody
	if readErr == nil && json.Unmarshal(raw, &body) == nil && body.Error.Msg != "" {
		return &solr.Error{Status: resp.StatusCode, Message: body.Error.Msg}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if readErr != nil {
		msg += " (read body: " + readErr.Error() + ")"
	}
	return &solr.Error{Status: resp.StatusCode, Message: msg}
}
