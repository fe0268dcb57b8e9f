// Package client is a Go client for the gamer-boy HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxIDsPerRequest mirrors the server bound on /games/by-ids; larger lookups are split.
const MaxIDsPerRequest = 100

type Category struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

type Game struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	Thumbnail        string     `json:"thumbnail"`
	ExternalPlayerID string     `json:"externalPlayerId"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Categories       []Category `json:"categories"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

type GameList struct {
	Games      []Game     `json:"games"`
	Pagination Pagination `json:"pagination"`
}

// Rating is the aggregate of a game. UserRating is nil when the fingerprint has not
// rated the game.
type Rating struct {
	GameID        uint    `json:"gameId"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
	UserRating    *int    `json:"userRating"`
}

// ListOptions filters ListGames. Zero values use the server defaults.
type ListOptions struct {
	Search     string
	Categories []string
	Page       int
	Limit      int
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status     int
	Code       string
	Message    string
	Details    json.RawMessage
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("gamer-boy api: status %d", e.Status)
	}
	return fmt.Sprintf("gamer-boy api: %s: %s", e.Code, e.Message)
}

// RetryAfter returns the server-provided wait in seconds when err is a rate-limit
// rejection.
func RetryAfter(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g. "https://host/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListGames(ctx context.Context, opts ListOptions) (*GameList, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("q", opts.Search)
	}
	if len(opts.Categories) > 0 {
		q.Set("categories", strings.Join(opts.Categories, ","))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var out GameList
	if err := c.do(ctx, http.MethodGet, "/games", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GamesByIDs returns the games for ids in the order of ids, skipping unknown ids.
func (c *Client) GamesByIDs(ctx context.Context, ids []uint) ([]Game, error) {
	games := make([]Game, 0, len(ids))
	for start := 0; start < len(ids); start += MaxIDsPerRequest {
		end := min(start+MaxIDsPerRequest, len(ids))
		parts := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			parts = append(parts, strconv.FormatUint(uint64(id), 10))
		}

		var out struct {
			Games []Game `json:"games"`
		}
		q := url.Values{"ids": {strings.Join(parts, ",")}}
		if err := c.do(ctx, http.MethodGet, "/games/by-ids", q, nil, &out); err != nil {
			return nil, err
		}
		games = append(games, out.Games...)
	}
	return games, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Rating(ctx context.Context, gameID uint, fingerprint string) (*Rating, error) {
	q := url.Values{}
	if fingerprint != "" {
		q.Set("fingerprint", fingerprint)
	}
	var out Rating
	if err := c.do(ctx, http.MethodGet, ratingPath(gameID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRating stores stars for fingerprint and returns the new aggregate.
func (c *Client) SubmitRating(ctx context.Context, gameID uint, stars int, fingerprint string) (*Rating, error) {
	body := map[string]any{"rating": stars, "fingerprint": fingerprint}
	var out Rating
	if err := c.do(ctx, http.MethodPost, ratingPath(gameID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func ratingPath(gameID uint) string {
	return "/ratings/" + strconv.FormatUint(uint64(gameID), 10)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var env struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
		apiErr.Details = env.Details
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = secs
		} else {
			var d struct {
				RetryAfter int `json:"retryAfter"`
			}
			if json.Unmarshal(apiErr.Details, &d) == nil {
				apiErr.RetryAfter = d.RetryAfter
			}
		}
	}
	return apiErr
}
