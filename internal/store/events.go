package store

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicStoreEvents carries one ChangeEvent per store mutation. The relay
// subscribes here and reloads full snapshots; subscribers never receive
// deltas.
const TopicStoreEvents = "chat.store.events"

const (
	ChangeMessages = "messages" // log mutated (append, merge seed, mark read)
	ChangeTouch    = "touch"    // lastActive/status partial update
	ChangeDeleted  = "deleted"  // record removed by the admin console
)

type ChangeEvent struct {
	SessionId string `json:"session_id"`
	Kind      string `json:"kind"`
}

// notifier publishes change events after mutations. Publish failures are
// swallowed by callers: the write already succeeded, and the relay's
// resubscribe path covers missed notifications.
type notifier struct {
	publisher message.Publisher
}

func (n *notifier) notify(sessionId, kind string) error {
	if n.publisher == nil {
		return nil
	}
	payload, err := json.Marshal(ChangeEvent{SessionId: sessionId, Kind: kind})
	if err != nil {
		return err
	}
	return n.publisher.Publish(TopicStoreEvents, message.NewMessage(watermill.NewUUID(), payload))
}
