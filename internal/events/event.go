package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "cinema-service"
	EventVersion = "1.0"

	TopicSignInLink = "auth.sign_in_link"
)

// Collections that publish change events.
const (
	CollectionMovies      = "movies"
	CollectionSchedule    = "schedule"
	CollectionClasses     = "classes"
	CollectionSuggestions = "suggestions"
	CollectionUsers       = "users"
	CollectionAttendance  = "attendance"
	CollectionGrades      = "grades"
	CollectionPreRegister = "pre_registered_emails"
)

type ChangeOp string

const (
	OpCreated  ChangeOp = "created"
	OpUpdated  ChangeOp = "updated"
	OpDeleted  ChangeOp = "deleted"
	OpReplaced ChangeOp = "replaced"
)

// Event is the envelope carried on every topic.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// ChangeEvent announces a write to a collection.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Op         ChangeOp  `json:"op"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

// SignInLinkEvent asks the mailer to deliver a passwordless sign-in link.
type SignInLinkEvent struct {
	Email     string    `json:"email"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Publisher publishes events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// Subscriber streams decoded events from a topic until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *Event, error)
}

// ChangeTopic returns the topic carrying changes of a collection.
func ChangeTopic(collection string) string {
	return "changes." + collection
}

func NewEvent(eventType string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Decode unmarshals the event data into dest.
func (e *Event) Decode(dest interface{}) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("decode %s event: %w", e.Type, err)
	}
	return nil
}

// PublishChange builds and publishes a ChangeEvent for a collection.
func PublishChange(ctx context.Context, p Publisher, collection string, op ChangeOp, id string) error {
	if p == nil {
		return nil
	}
	evt, err := NewEvent(ChangeTopic(collection)+"."+string(op), ChangeEvent{
		Collection: collection,
		Op:         op,
		ID:         id,
		At:         time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.Publish(ctx, ChangeTopic(collection), evt)
}
