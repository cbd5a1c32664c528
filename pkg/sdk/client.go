package searchgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/searchgate/internal/version"
)

const apiPrefix = "/elasticpress/v1"

// Client is the searchgate SDK entry point.
type Client struct {
	baseURL   string
	http      *http.Client
	apiKey    string
	userAgent string
	obs       *observer
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("searchgate: base URL must be absolute, got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	ua := cfg.userAgent
	if ua == "" {
		ua = version.UserAgent()
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      hc,
		apiKey:    cfg.apiKey,
		userAgent: ua,
		obs:       obs,
	}, nil
}

// Weighting fetches the stored weighting settings and the weightable fields.
func (c *Client) Weighting(ctx context.Context) (state WeightingState, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_weighting", start, err) }()

	var resp struct {
		Data             Settings `json:"data"`
		WeightableFields Catalog  `json:"weightable_fields"`
	}
	if err = c.do(ctx, http.MethodGet, apiPrefix+"/weighting", nil, nil, &resp); err != nil {
		return WeightingState{}, err
	}
	return WeightingState{Settings: resp.Data, Catalog: resp.WeightableFields}, nil
}

// SaveWeighting replaces the weighting settings. The service validates the
// whole document; on success the stored form is returned.
func (c *Client) SaveWeighting(ctx context.Context, s Settings) (saved Settings, err error) {
	start := time.Now()
	defer func() { c.obs.observe("save_weighting", start, err) }()

	var resp struct {
		Success bool     `json:"success"`
		Data    Settings `json:"data"`
	}
	if err = c.do(ctx, http.MethodPost, apiPrefix+"/weighting", nil, s, &resp); err != nil {
		return Settings{}, err
	}
	if !resp.Success {
		err = errors.New("searchgate: save weighting: service reported failure")
		return Settings{}, err
	}
	return resp.Data, nil
}

// SearchComments runs a comment search. Results are keyed by comment ID.
func (c *Client) SearchComments(ctx context.Context, term string, opts ...SearchOption) (hits map[string]CommentHit, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_comments", start, err) }()

	sc := &searchConfig{}
	for _, o := range opts {
		o(sc)
	}

	q := url.Values{"s": {term}}
	if sc.integrate != nil {
		if *sc.integrate {
			q.Set("ep_integrate", "true")
		} else {
			q.Set("ep_integrate", "false")
		}
	}
	h := http.Header{}
	if sc.admin {
		h.Set("X-EP-Origin", "admin")
	}
	if sc.ajax {
		h.Set("X-Requested-With", "XMLHttpRequest")
	}

	hits = map[string]CommentHit{}
	if err = c.do(ctx, http.MethodGet, apiPrefix+"/comments?"+q.Encode(), h, nil, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// IngestComments stores comments and syncs them to the search index.
func (c *Client) IngestComments(ctx context.Context, comments ...Comment) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest_comments", start, err) }()

	body := map[string][]Comment{"comments": comments}
	if err = c.do(ctx, http.MethodPost, apiPrefix+"/comments", nil, body, &res); err != nil {
		return IngestResult{}, err
	}
	return res, nil
}

// Features lists every feature toggle.
func (c *Client) Features(ctx context.Context) (list []Feature, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_features", start, err) }()

	var resp struct {
		Features []Feature `json:"features"`
	}
	if err = c.do(ctx, http.MethodGet, apiPrefix+"/features", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Features, nil
}

// SetFeature switches a feature on or off.
func (c *Client) SetFeature(ctx context.Context, slug string, active bool) (act FeatureActivation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("set_feature", start, err) }()

	body := map[string]bool{"active": active}
	if err = c.do(ctx, http.MethodPost, apiPrefix+"/features/"+url.PathEscape(slug), nil, body, &act); err != nil {
		return FeatureActivation{}, err
	}
	return act, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("searchgate: encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("searchgate: build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("searchgate: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("searchgate: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && (body.Code != "" || body.Message != "") {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
