package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lurixo/reF1nd-releases/internal/config"
)

const (
	// acceptHeader is the media type the release store serves.
	acceptHeader = "application/vnd.github+json"

	// userAgent identifies the installer to the release store.
	userAgent = "sing-box-installer"

	// maxResponseSize bounds metadata responses; release records are small.
	maxResponseSize = 1 << 20
)

// Release is a single release record as returned by the store.
type Release struct {
	// TagName is the release tag, e.g. "v1.13.0".
	TagName string `json:"tag_name"`
	// Name is the human-readable release title.
	Name string `json:"name"`
	// PreRelease marks releases the "latest" endpoint does not serve.
	PreRelease bool `json:"prerelease"`
}

// Client queries the release store's metadata endpoints. The auth token,
// when present, is attached to every query identically; its absence only
// lowers the store's rate limit.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
}

// NewClient builds a store client from installer configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		token:      cfg.AuthToken,
	}
}

// Latest fetches the newest stable release record. The raw response body is
// returned alongside for diagnostics; a store without stable releases
// yields a nil record, not an error.
func (c *Client) Latest(ctx context.Context) (*Release, string, error) {
	body, err := c.get(ctx, "releases/latest")
	if err != nil {
		return nil, body, err
	}

	var rel Release
	if err := json.Unmarshal([]byte(body), &rel); err != nil {
		return nil, body, fmt.Errorf("decode latest release: %w", err)
	}

	if rel.TagName == "" {
		return nil, body, nil
	}

	return &rel, body, nil
}

// All fetches release records of any kind, ordered newest-first.
func (c *Client) All(ctx context.Context) ([]Release, string, error) {
	body, err := c.get(ctx, "releases")
	if err != nil {
		return nil, body, err
	}

	var releases []Release
	if err := json.Unmarshal([]byte(body), &releases); err != nil {
		return nil, body, fmt.Errorf("decode release list: %w", err)
	}

	return releases, body, nil
}

// get performs one metadata query and returns the response body. A non-2xx
// status is reported as an error with the body preserved for diagnostics.
func (c *Client) get(ctx context.Context, endpoint string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/%s", c.baseURL, c.owner, c.repo, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", url, err)
	}

	body := string(data)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return body, fmt.Errorf("query %s: %s", url, resp.Status)
	}

	return body, nil
}
