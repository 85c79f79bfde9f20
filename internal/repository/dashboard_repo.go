package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dashboard/internal/model"

	"golang.org/x/oauth2"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Endpoints locates the two resources of the data service.
type Endpoints struct {
	BaseURL      string
	ChartsPath   string
	TopUsersPath string
}

// DashboardRepository talks to the remote data service over HTTP.
type DashboardRepository struct {
	client      *http.Client
	chartsURL   string
	topUsersURL string
}

// NewDashboardRepository creates a repository. A nil client means
// http.DefaultClient.
func NewDashboardRepository(endpoints Endpoints, client *http.Client) (*DashboardRepository, error) {
	if client == nil {
		client = http.DefaultClient
	}
	chartsURL, err := joinURL(endpoints.BaseURL, endpoints.ChartsPath)
	if err != nil {
		return nil, err
	}
	topUsersURL, err := joinURL(endpoints.BaseURL, endpoints.TopUsersPath)
	if err != nil {
		return nil, err
	}
	return &DashboardRepository{
		client:      client,
		chartsURL:   chartsURL,
		topUsersURL: topUsersURL,
	}, nil
}

// NewAuthorizedClient returns an http.Client that sends token as a bearer
// token. An empty token yields a plain client.
func NewAuthorizedClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts)
}

func joinURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", base)
	}
	return u.String() + "/" + strings.TrimLeft(path, "/"), nil
}

// ChartsURL returns the catalog endpoint.
func (r *DashboardRepository) ChartsURL() string { return r.chartsURL }

// TopUsersURL returns the ranked-user endpoint.
func (r *DashboardRepository) TopUsersURL() string { return r.topUsersURL }

// FetchCharts loads the chart catalog from GET /charts.
func (r *DashboardRepository) FetchCharts(ctx context.Context) ([]model.ChartCatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.chartsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var entries []model.ChartCatalogEntry
	if err := r.do(req, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.ChartCatalogEntry{}
	}
	return entries, nil
}

// FetchTopUsers loads the top n users from POST /top-users.
func (r *DashboardRepository) FetchTopUsers(ctx context.Context, n model.TopN) ([]model.DataPoint, error) {
	body, err := json.Marshal(model.TopUsersRequest{TopN: n})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.topUsersURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var data []model.DataPoint
	if err := r.do(req, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = []model.DataPoint{}
	}
	return data, nil
}

func (r *DashboardRepository) do(req *http.Request, out interface{}) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
