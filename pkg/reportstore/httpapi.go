package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mangrove-watch/pkg/middleware"
)

// apiEnvelope mirrors pkg/response.APIResponse.
type apiEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func decodeEnvelope(resp *http.Response, out interface{}) error {
	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || env.Status != "success" {
		msg := env.Message
		if env.Error != "" {
			msg = fmt.Sprintf("%s: %s", env.Message, env.Error)
		}
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, msg)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

// Client implements Persistence over the platform REST APIs: the report
// service for report rows and the auth service for profile lookups. The
// reporter identity travels in the bearer token supplied by the token func.
type Client struct {
	reportBase string
	authBase   string
	http       *http.Client
	token      func() string
	traceID    string
}

var _ Persistence = (*Client)(nil)

func NewClient(reportBase, authBase string, token func() string) *Client {
	return &Client{
		reportBase: strings.TrimRight(reportBase, "/"),
		authBase:   strings.TrimRight(authBase, "/"),
		http:       &http.Client{},
		token:      token,
	}
}

// SetTraceID stamps outgoing requests with an X-Trace-Id for cross-service
// correlation.
func (c *Client) SetTraceID(id string) {
	c.traceID = id
}

func (c *Client) do(ctx context.Context, method, rawURL string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	middleware.PropagateTraceID(req, c.traceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) ListReports(ctx context.Context) ([]Row, error) {
	var rows []Row
	if err := c.do(ctx, http.MethodGet, c.reportBase+"/api/reports", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) InsertReport(ctx context.Context, _ string, draft Draft) (Row, error) {
	var row Row
	if err := c.do(ctx, http.MethodPost, c.reportBase+"/api/reports", draft, &row); err != nil {
		return Row{}, err
	}
	return row, nil
}

func (c *Client) ProfilesByUserIDs(ctx context.Context, userIDs []string) ([]Profile, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(userIDs, ","))

	var profiles []Profile
	if err := c.do(ctx, http.MethodGet, c.authBase+"/api/profiles?"+q.Encode(), nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
