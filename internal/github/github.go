package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kevinmichaelchen/folio/internal/models"
	"golang.org/x/text/encoding/unicode"
)

const (
	perPage = 100
	// maxRepoPages bounds listing against hosts that never return a short page.
	maxRepoPages = 50
)

// Client is a thin wrapper around the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. An empty token sends
// unauthenticated requests; a nil httpClient uses http.DefaultClient.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// StatusError is returned when GitHub answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GitHub API returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// FetchProfile returns the user's profile. Callers decide how to degrade.
func (c *Client) FetchProfile(ctx context.Context, handle string) (models.Profile, error) {
	var p models.Profile
	if err := c.getJSON(ctx, "fetching profile", "/users/"+url.PathEscape(handle), &p); err != nil {
		return models.Profile{}, err
	}
	if p.Login == "" {
		p.Login = handle
	}
	return p, nil
}

// FetchRepositories lists the public repositories owned by handle, in the
// order GitHub returns them. Listing stops at a short page, at a page that
// repeats the previous one (a host ignoring the page parameter), or after
// maxRepoPages pages.
func (c *Client) FetchRepositories(ctx context.Context, handle string) ([]models.Repository, error) {
	var all []models.Repository
	var prevFirst string
	for page := 1; page <= maxRepoPages; page++ {
		path := fmt.Sprintf("/users/%s/repos?per_page=%d&page=%d", url.PathEscape(handle), perPage, page)

		var batch []models.Repository
		if err := c.getJSON(ctx, "fetching repositories", path, &batch); err != nil {
			return nil, err
		}
		if len(batch) > 0 && page > 1 && batch[0].Name == prevFirst {
			break
		}
		all = append(all, batch...)

		if len(batch) < perPage {
			break
		}
		prevFirst = batch[0].Name
	}
	return all, nil
}

type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchReadme returns the decoded README of handle/repo. A repository
// without a README (or any other non-2xx answer) yields "" and no error.
func (c *Client) FetchReadme(ctx context.Context, handle, repo string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(handle), url.PathEscape(repo))

	var resp readmeResponse
	err := c.getJSON(ctx, "fetching README for "+repo, path, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "", nil
		}
		return "", err
	}

	if resp.Encoding != "" && resp.Encoding != "base64" {
		return decodeText([]byte(resp.Content)), nil
	}

	// The API wraps base64 at 60 columns; the decoder skips the newlines.
	raw, err := base64.StdEncoding.DecodeString(resp.Content)
	if err != nil {
		return "", fmt.Errorf("decoding README for %s: %w", repo, err)
	}
	return decodeText(raw), nil
}

// decodeText converts b to UTF-8, replacing invalid sequences with U+FFFD.
func decodeText(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

// --- internal ---

func (c *Client) getJSON(ctx context.Context, op, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: executing request: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: parsing response: %w", op, err)
	}
	return nil
}
