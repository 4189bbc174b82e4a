package relay

import (
	"context"
	"encoding/json"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/store"
	"support-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
)

// SnapshotPublisher is the hub surface the relay needs.
type SnapshotPublisher interface {
	Publish(topic string, envelope websocket.Envelope)
}

// Relay turns store change events into full-snapshot fan-out. Every
// mutation causes a reload of the affected session's ordered message log
// (and the session index) and a push to all current hub subscribers;
// observers re-render from the snapshot rather than applying deltas.
type Relay struct {
	subscriber message.Subscriber
	sessions   store.SessionStore
	hub        SnapshotPublisher
	logger     logger.ILogger
}

func New(subscriber message.Subscriber, sessions store.SessionStore, hub SnapshotPublisher, log logger.ILogger) *Relay {
	return &Relay{
		subscriber: subscriber,
		sessions:   sessions,
		hub:        hub,
		logger:     log,
	}
}

// Run consumes change events until ctx is cancelled. A dropped
// subscription is resubscribed rather than left stale: a silently frozen
// transcript would be a correctness bug, not a cosmetic one.
func (r *Relay) Run(ctx context.Context) error {
	for {
		messages, err := r.subscriber.Subscribe(ctx, store.TopicStoreEvents)
		if err != nil {
			return err
		}

		r.consume(ctx, messages)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			r.logger.Warn("Relay", "Event subscription dropped, resubscribing", nil)
		}
	}
}

func (r *Relay) consume(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		r.handle(ctx, msg)
		msg.Ack()
	}
}

func (r *Relay) handle(ctx context.Context, msg *message.Message) {
	var event store.ChangeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.logger.Warn("Relay", "Bad change event payload", map[string]interface{}{"error": err.Error()})
		return
	}

	switch event.Kind {
	case store.ChangeMessages:
		r.pushTranscript(ctx, event.SessionId)
		r.pushIndex(ctx)
	case store.ChangeTouch:
		// lastActive/status only; the transcript is unchanged but the
		// admin list order and presence badge depend on it.
		r.pushIndex(ctx)
	case store.ChangeDeleted:
		r.hub.Publish(sessionTopic(event.SessionId), websocket.Envelope{
			Type: constant.EnvelopeSessionGone,
			Data: event.SessionId,
		})
		r.pushIndex(ctx)
	default:
		r.logger.Warn("Relay", "Unknown change kind", map[string]interface{}{"kind": event.Kind})
	}
}

func (r *Relay) pushTranscript(ctx context.Context, sessionId string) {
	messages, err := r.sessions.GetMessages(ctx, sessionId)
	if err != nil {
		if err == store.ErrSessionNotFound {
			// Record vanished between event and reload; the deleted event
			// will follow (or already did).
			return
		}
		r.logger.Error("Relay", "Failed to load transcript", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
		return
	}

	r.hub.Publish(sessionTopic(sessionId), websocket.Envelope{
		Type: constant.EnvelopeTranscript,
		Data: messages,
	})
}

func (r *Relay) pushIndex(ctx context.Context) {
	sessions, err := r.sessions.ListSessions(ctx)
	if err != nil {
		r.logger.Error("Relay", "Failed to load session index", map[string]interface{}{"error": err.Error()})
		return
	}

	r.hub.Publish(websocket.TopicIndex, websocket.Envelope{
		Type: constant.EnvelopeSessions,
		Data: sessions,
	})
}

func sessionTopic(id string) string {
	return websocket.TopicSessionPrefix + id
}
