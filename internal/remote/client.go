// Package remote consumes the job catalog API: the full listing and single
// records by id, as JSON over HTTPS.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/offlinekit/jobsync/internal/models"
)

// ErrFetchFailed covers every remote failure: transport errors, non-2xx
// statuses and malformed payloads. Callers treat them all identically.
var ErrFetchFailed = errors.New("catalog fetch failed")

const requestTimeoutSeconds = 30

// Client fetches the job catalog from the remote API.
type Client struct {
	http    tls_client.HttpClient
	baseURL string
}

func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(requestTimeoutSeconds),
	)
	if err != nil {
		return nil, err
	}

	return &Client{http: client, baseURL: baseURL}, nil
}

type catalogResponse struct {
	Jobs  []models.JobRecord `json:"jobs"`
	Total int                `json:"total"`
}

// FetchAll retrieves the full job catalog.
func (c *Client) FetchAll(ctx context.Context) ([]models.JobRecord, int, error) {
	var payload catalogResponse
	if err := c.getJSON(ctx, c.baseURL+"/jobs", &payload); err != nil {
		return nil, 0, err
	}
	return payload.Jobs, payload.Total, nil
}

// FetchByID retrieves one job in detailed form.
func (c *Client) FetchByID(ctx context.Context, id string) (models.JobRecord, error) {
	if strings.TrimSpace(id) == "" {
		return models.JobRecord{}, fmt.Errorf("%w: empty job id", ErrFetchFailed)
	}

	var record models.JobRecord
	if err := c.getJSON(ctx, c.baseURL+"/jobs/"+url.PathEscape(id), &record); err != nil {
		return models.JobRecord{}, err
	}
	if record.ID == "" {
		record.ID = id
	}
	return record, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrFetchFailed, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	return nil
}
