package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/cache"
)

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Query().Get("api_key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status_message":"Invalid API key"}`))
			return
		}
		w.Write([]byte(`{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":862,"title":"Toy Story","overview":"Toys.","poster_path":"/toy.jpg","release_date":"1995-10-30","vote_average":8.0,"genre_ids":[16,35]}
		]}`))
	})
	mux.HandleFunc("/movie/862/videos", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Write([]byte(`{"id":862,"results":[
			{"key":"abc","site":"YouTube","type":"Trailer","name":"Official Trailer"},
			{"key":"def","site":"YouTube","type":"Featurette","name":"Behind"},
			{"key":"ghi","site":"Vimeo","type":"Trailer","name":"Vimeo"}
		]}`))
	})
	mux.HandleFunc("/movie/862", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"id":862,"title":"Toy Story","vote_average":8.3,"poster_path":"/new.jpg","genres":[{"id":16,"name":"Animation"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newCache(t *testing.T) *cache.CacheHelper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewCacheManager(client).TMDB
}

func TestSearchCaches(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := New(Config{BaseURL: srv.URL, APIKey: "k"}, newCache(t))
	ctx := context.Background()

	res, err := c.Search(ctx, "Toy Story", 1, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].TMDBID != 862 || res.Results[0].Rating != 8.0 {
		t.Fatalf("unexpected results %+v", res.Results)
	}
	if len(res.Results[0].GenreIDs) != 2 {
		t.Fatalf("expected genre ids, got %v", res.Results[0].GenreIDs)
	}

	if _, err := c.Search(ctx, "toy story", 1, ""); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected cached second search, got %d upstream hits", got)
	}
}

func TestVideosFiltersTrailers(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := New(Config{BaseURL: srv.URL, APIKey: "k"}, nil)

	videos, err := c.Videos(context.Background(), 862, "")
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	if len(videos) != 1 || videos[0].Key != "abc" {
		t.Fatalf("expected only the YouTube trailer, got %+v", videos)
	}
}

func TestDetailsUsesGenresFallback(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	c := New(Config{BaseURL: srv.URL, APIKey: "k"}, nil)

	d, err := c.Details(context.Background(), 862, "en-US")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if d.PosterPath != "/new.jpg" || len(d.GenreIDs) != 1 || d.GenreIDs[0] != 16 {
		t.Fatalf("unexpected details %+v", d)
	}

	if _, err := c.Details(context.Background(), 1, "en-US"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestErrors(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)

	bad := New(Config{BaseURL: srv.URL, APIKey: "wrong"}, nil)
	_, err := bad.Search(context.Background(), "x", 1, "")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	none := New(Config{BaseURL: srv.URL}, nil)
	if _, err := none.Search(context.Background(), "x", 1, ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}
