package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/cinema-service/internal/services"
)

type fakeRefresher struct {
	calls   int32
	updated int
	err     error
}

func (f *fakeRefresher) RefreshMovies(context.Context) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.updated, f.err
}

func TestRunMetadataRefreshLogs(t *testing.T) {
	tests := []struct {
		name      string
		refresher *fakeRefresher
		want      string
	}{
		{name: "success", refresher: &fakeRefresher{updated: 3}, want: "updated=3"},
		{name: "not configured", refresher: &fakeRefresher{err: services.ErrUnavailable}, want: "provider not configured"},
		{name: "failure", refresher: &fakeRefresher{err: errors.New("boom")}, want: "error=boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewScheduler(slog.New(slog.NewTextHandler(&buf, nil)), time.Second)

			s.RunMetadataRefresh(context.Background(), tt.refresher)

			if tt.refresher.calls != 1 {
				t.Errorf("calls = %d, want 1", tt.refresher.calls)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestAddMetadataRefresh(t *testing.T) {
	s := NewScheduler(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), time.Second)

	if err := s.AddMetadataRefresh("not a spec", &fakeRefresher{}); err == nil {
		t.Fatal("expected an error for an invalid spec")
	}
	if err := s.AddMetadataRefresh("0 3 * * *", &fakeRefresher{}); err != nil {
		t.Fatalf("AddMetadataRefresh() error = %v", err)
	}
	if s.Jobs() != 1 {
		t.Errorf("jobs = %d, want 1", s.Jobs())
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
