package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

type sseEvent struct {
	name string
	data string
}

// readEvent returns the next named event, skipping heartbeat comments.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var evt sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			evt.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			evt.data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "" && evt.name != "":
			return evt
		}
	}
}

func TestStream_SnapshotAfterChange(t *testing.T) {
	api := newTestAPI(t)
	_, teacher := api.login(t, models.RoleTeacher)

	srv := httptest.NewServer(api.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream/movies?access_token="+teacher, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	if first.name != "snapshot" {
		t.Fatalf("first event = %q", first.name)
	}
	var movies []models.Movie
	if err := json.Unmarshal([]byte(first.data), &movies); err != nil {
		t.Fatalf("decode snapshot %q: %v", first.data, err)
	}
	if len(movies) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(movies))
	}

	expectStatus(t, api.do(t, http.MethodPost, "/api/v1/movies", teacher, obj{"title": "Paddington"}), http.StatusCreated)

	second := readEvent(t, reader)
	if second.name != "snapshot" {
		t.Fatalf("second event = %q", second.name)
	}
	if err := json.Unmarshal([]byte(second.data), &movies); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Paddington" {
		t.Errorf("snapshot = %+v", movies)
	}
}

func TestStream_Rejections(t *testing.T) {
	api := newTestAPI(t)
	_, teacher := api.login(t, models.RoleTeacher)
	_, student := api.login(t, models.RoleStudent)

	expectStatus(t, api.do(t, http.MethodGet, "/api/v1/stream/users", teacher, nil), http.StatusForbidden)
	expectStatus(t, api.do(t, http.MethodGet, "/api/v1/stream/nothing", student, nil), http.StatusNotFound)
	expectStatus(t, api.do(t, http.MethodGet, "/api/v1/stream/movies", "", nil), http.StatusUnauthorized)
}
