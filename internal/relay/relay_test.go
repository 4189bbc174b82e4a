package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/store"
	"support-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPush struct {
	Topic    string
	Envelope websocket.Envelope
}

// recordingPublisher captures hub pushes for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	pushes []recordedPush
	signal chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{signal: make(chan struct{}, 64)}
}

func (p *recordingPublisher) Publish(topic string, envelope websocket.Envelope) {
	p.mu.Lock()
	p.pushes = append(p.pushes, recordedPush{Topic: topic, Envelope: envelope})
	p.mu.Unlock()
	p.signal <- struct{}{}
}

func (p *recordingPublisher) waitForPushes(t *testing.T, n int) []recordedPush {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		p.mu.Lock()
		if len(p.pushes) >= n {
			out := make([]recordedPush, len(p.pushes))
			copy(out, p.pushes)
			p.mu.Unlock()
			return out
		}
		p.mu.Unlock()

		select {
		case <-p.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d pushes", n)
		}
	}
}

func newRelayFixture(t *testing.T) (*store.MemoryStore, *recordingPublisher, context.CancelFunc) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	memStore := store.NewMemoryStore(pubSub)
	hub := newRecordingPublisher()

	r := New(pubSub, memStore, hub, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	// Let the subscription attach before mutating the store.
	time.Sleep(50 * time.Millisecond)

	return memStore, hub, cancel
}

func TestAppendFansOutTranscriptAndIndex(t *testing.T) {
	memStore, hub, cancel := newRelayFixture(t)
	defer cancel()

	err := memStore.CreateOrMergeSession(context.Background(), "9876543210", &entity.ChatSession{
		User:       entity.UserDetails{Name: "Asha", Phone: "9876543210"},
		Status:     entity.SessionStatusActive,
		LastActive: 100,
		Messages: []entity.Message{
			{Text: "hello", Sender: entity.SenderUser, Timestamp: 100},
		},
	})
	require.NoError(t, err)

	pushes := hub.waitForPushes(t, 2)

	var sawTranscript, sawIndex bool
	for _, push := range pushes {
		switch push.Topic {
		case "session:9876543210":
			sawTranscript = true
			assert.Equal(t, constant.EnvelopeTranscript, push.Envelope.Type)
			messages, ok := push.Envelope.Data.([]entity.Message)
			require.True(t, ok)
			require.Len(t, messages, 1)
			assert.Equal(t, "hello", messages[0].Text)
		case websocket.TopicIndex:
			sawIndex = true
			assert.Equal(t, constant.EnvelopeSessions, push.Envelope.Type)
		}
	}
	assert.True(t, sawTranscript)
	assert.True(t, sawIndex)
}

func TestTouchPushesIndexOnly(t *testing.T) {
	memStore, hub, cancel := newRelayFixture(t)
	defer cancel()

	require.NoError(t, memStore.CreateOrMergeSession(context.Background(), "9876543210", &entity.ChatSession{
		Status:     entity.SessionStatusActive,
		LastActive: 100,
	}))
	hub.waitForPushes(t, 2)

	now := int64(200)
	require.NoError(t, memStore.TouchSession(context.Background(), "9876543210", store.TouchFields{LastActive: &now}))

	pushes := hub.waitForPushes(t, 3)
	last := pushes[len(pushes)-1]
	assert.Equal(t, websocket.TopicIndex, last.Topic)
	assert.Equal(t, constant.EnvelopeSessions, last.Envelope.Type)
}

func TestDeleteAnnouncesSessionGone(t *testing.T) {
	memStore, hub, cancel := newRelayFixture(t)
	defer cancel()

	require.NoError(t, memStore.CreateOrMergeSession(context.Background(), "9876543210", &entity.ChatSession{
		Status:     entity.SessionStatusActive,
		LastActive: 100,
	}))
	initial := hub.waitForPushes(t, 2)

	require.NoError(t, memStore.DeleteSession(context.Background(), "9876543210"))

	pushes := hub.waitForPushes(t, len(initial)+2)

	var sawGone bool
	for _, push := range pushes[len(initial):] {
		if push.Envelope.Type == constant.EnvelopeSessionGone {
			sawGone = true
			assert.Equal(t, "session:9876543210", push.Topic)
			assert.Equal(t, "9876543210", push.Envelope.Data)
		}
	}
	assert.True(t, sawGone)
}
