package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestBusPublishSubscribe(t *testing.T) {
	bus, err := NewBus(BusConfig{Backend: "memory"}, newTestLogger())
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, ChangeTopic(CollectionMovies))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := PublishChange(ctx, bus, CollectionMovies, OpCreated, "m1"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case evt := <-ch:
		var change ChangeEvent
		if err := evt.Decode(&change); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if change.Collection != CollectionMovies || change.Op != OpCreated || change.ID != "m1" {
			t.Fatalf("unexpected change %+v", change)
		}
		if evt.Source != EventSource || evt.Version != EventVersion {
			t.Fatalf("unexpected envelope %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusTopicsAreIsolated(t *testing.T) {
	bus, err := NewBus(BusConfig{Backend: "memory"}, newTestLogger())
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, ChangeTopic(CollectionClasses))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = PublishChange(ctx, bus, CollectionMovies, OpDeleted, "m1")

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event on classes topic: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := NewBus(BusConfig{Backend: "nats"}, newTestLogger()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(newTestLogger())
	ctx := context.Background()

	_ = PublishChange(ctx, mock, CollectionMovies, OpCreated, "a")
	_ = PublishChange(ctx, mock, CollectionSchedule, OpDeleted, "b")

	if got := len(mock.GetPublishedEvents()); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
	movies := mock.EventsOnTopic(ChangeTopic(CollectionMovies))
	if len(movies) != 1 || movies[0].Type != "changes.movies.created" {
		t.Fatalf("unexpected movie events %+v", movies)
	}
	if movies[0].ID == "" || movies[0].Timestamp.IsZero() {
		t.Fatalf("expected envelope id and timestamp")
	}

	mock.ClearEvents()
	if len(mock.GetPublishedEvents()) != 0 {
		t.Fatal("expected events cleared")
	}
}
