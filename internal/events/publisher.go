// Package events publishes dashboard activity to NATS JetStream so other
// services (analytics, notifications) can react to storefront changes.
// Publishing is optional and best effort: the dashboard never fails a
// request because an event could not be delivered.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	log "github.com/sirupsen/logrus"
)

const (
	streamName    = "LOOKBOOK"
	subjectPrefix = "lookbook"
)

// Event types published by the dashboard
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventProfileUpdated = "profile.updated"
)

// ActivityEvent is one dashboard mutation
type ActivityEvent struct {
	EventType string    `json:"eventType"`
	UserID    string    `json:"userId"`
	Handle    string    `json:"handle,omitempty"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends activity events to JetStream. The zero value (or a nil
// pointer) is a disabled publisher that drops everything.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects to NATS and ensures the activity stream exists.
// An empty natsURL returns a disabled publisher.
func NewPublisher(natsURL string) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("lookbook-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure activity stream: %w", err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends one event asynchronously. Failures are logged, never
// returned.
func (p *Publisher) Publish(eventType, userID, handle, entityID string) {
	if p == nil || p.js == nil {
		return
	}

	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Handle:    handle,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		subject := fmt.Sprintf("%s.%s", subjectPrefix, eventType)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := p.js.Publish(ctx, subject, payload); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"subject": subject,
				"entity":  entityID,
			}).Warn("failed to publish activity event")
		}
	}()
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
