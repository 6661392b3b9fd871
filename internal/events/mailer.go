package events

import (
	"context"
	"log/slog"
)

// RunLogMailer consumes sign-in link events and logs the link. It stands in
// for an outbound mailer in development and returns when ctx is done.
func RunLogMailer(ctx context.Context, sub Subscriber, logger *slog.Logger) error {
	ch, err := sub.Subscribe(ctx, TopicSignInLink)
	if err != nil {
		return err
	}

	go func() {
		for evt := range ch {
			var payload SignInLinkEvent
			if err := evt.Decode(&payload); err != nil {
				logger.Warn("Malformed sign-in link event", "event_id", evt.ID, "error", err)
				continue
			}
			logger.Info("Sign-in link issued",
				"email", payload.Email,
				"link", payload.Link,
				"expires_at", payload.ExpiresAt)
		}
	}()
	return nil
}
