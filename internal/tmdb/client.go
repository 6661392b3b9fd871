package tmdb

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

	"github.com/SAP-F-2025/cinema-service/internal/cache"
)

var (
	ErrNotConfigured = errors.New("tmdb is not configured")
	ErrNotFound      = errors.New("tmdb resource not found")
	ErrUpstream      = errors.New("tmdb request failed")
)

type Config struct {
	BaseURL   string
	APIKey    string
	ReadToken string
	Language  string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type MovieResult struct {
	TMDBID      int64   `json:"tmdb_id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Rating      float64 `json:"rating"`
	GenreIDs    []int   `json:"genre_ids"`
}

type SearchResult struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []MovieResult `json:"results"`
}

type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Client talks to the TMDB v3 REST API and caches responses in Redis.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *cache.CacheHelper
}

func New(cfg Config, helper *cache.CacheHelper) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.TMDBCacheConfig.TTL
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if helper == nil {
		helper = cache.NewCacheHelper(nil, "")
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      helper,
	}
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" || c.cfg.ReadToken != ""
}

// Search looks up movies by title.
func (c *Client) Search(ctx context.Context, query string, page int, language string) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	language = c.language(language)

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("language", language)
	params.Set("include_adult", "false")

	key := fmt.Sprintf("search:%s:%d:%s", language, page, strings.ToLower(query))

	var result SearchResult
	err := c.cache.CacheOrExecute(ctx, key, &result, c.cfg.CacheTTL, func() (interface{}, error) {
		var raw searchResponse
		if err := c.get(ctx, "/search/movie", params, &raw); err != nil {
			return nil, err
		}
		out := SearchResult{
			Page:         raw.Page,
			TotalPages:   raw.TotalPages,
			TotalResults: raw.TotalResults,
			Results:      make([]MovieResult, 0, len(raw.Results)),
		}
		for _, m := range raw.Results {
			out.Results = append(out.Results, m.toResult())
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Videos returns the YouTube trailers of a movie.
func (c *Client) Videos(ctx context.Context, tmdbID int64, language string) ([]Video, error) {
	language = c.language(language)
	params := url.Values{}
	params.Set("language", language)

	key := fmt.Sprintf("videos:%d:%s", tmdbID, language)

	var videos []Video
	err := c.cache.CacheOrExecute(ctx, key, &videos, c.cfg.CacheTTL, func() (interface{}, error) {
		var raw videosResponse
		if err := c.get(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10)+"/videos", params, &raw); err != nil {
			return nil, err
		}
		out := make([]Video, 0, len(raw.Results))
		for _, v := range raw.Results {
			if strings.EqualFold(v.Site, "YouTube") && strings.EqualFold(v.Type, "Trailer") {
				out = append(out, v)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// Details fetches a single movie by TMDB id.
func (c *Client) Details(ctx context.Context, tmdbID int64, language string) (*MovieResult, error) {
	language = c.language(language)
	params := url.Values{}
	params.Set("language", language)

	key := fmt.Sprintf("details:%d:%s", tmdbID, language)

	var result MovieResult
	err := c.cache.CacheOrExecute(ctx, key, &result, c.cfg.CacheTTL, func() (interface{}, error) {
		var raw detailsResponse
		if err := c.get(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10), params, &raw); err != nil {
			return nil, err
		}
		return raw.toResult(), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) language(lang string) string {
	if lang == "" {
		return c.cfg.Language
	}
	return lang
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	if c.cfg.ReadToken == "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.ReadToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ReadToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, upstreamMessage(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}

func upstreamMessage(body []byte) string {
	var e struct {
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(body, &e) == nil && e.StatusMessage != "" {
		return e.StatusMessage
	}
	return strings.TrimSpace(string(body))
}
