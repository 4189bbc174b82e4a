package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/dialogue"
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/moderation"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/session"
	"support-chat-be/internal/store"
	"support-chat-be/internal/websocket"
	"support-chat-be/pkg/events"
	"support-chat-be/pkg/nats"

	"github.com/google/uuid"
)

var nonDigits = regexp.MustCompile(`\D`)

type IChatService interface {
	Start(ctx context.Context, req *dto.StartChatRequest) (*dto.ChatStateResponse, error)
	Message(ctx context.Context, req *dto.SendMessageRequest) (*dto.ChatStateResponse, error)
	SubmitHandoff(ctx context.Context, req *dto.HandoffRequest) (*dto.ChatStateResponse, error)
	CancelHandoff(clientId string) (*dto.ChatStateResponse, error)
	EndSession(ctx context.Context, clientId string) (*dto.ChatStateResponse, error)

	// Topics lists the hub topics a websocket for this client observes.
	Topics(clientId string) []string

	// Suspend/Resume implement the global enable switch: suspended, the
	// service refuses visitor traffic but never writes to session records.
	Suspend()
	Resume()
	Suspended() bool
}

// clientState is one widget's dialogue state. The bot-mode transcript is
// ephemeral and lives only here until handoff seeds it into the store.
type clientState struct {
	mode       entity.ChatMode
	sessionId  string
	transcript []entity.Message
}

type chatService struct {
	sessions store.SessionStore
	pointers *session.PointerRepository
	engine   *dialogue.Engine
	filter   *moderation.Filter
	hub      *websocket.Hub
	mail     mailer.IEmailService
	alertTo  string
	natsPub  *nats.Publisher
	logger   logger.ILogger

	typingDelay  time.Duration
	handoffDelay time.Duration

	mu      sync.Mutex
	clients map[string]*clientState

	suspended atomic.Bool

	// injected for tests
	now      func() int64
	schedule func(time.Duration, func())
}

func NewChatService(
	sessions store.SessionStore,
	pointers *session.PointerRepository,
	engine *dialogue.Engine,
	filter *moderation.Filter,
	hub *websocket.Hub,
	mail mailer.IEmailService,
	alertTo string,
	natsPub *nats.Publisher,
	log logger.ILogger,
	typingDelay, handoffDelay time.Duration,
) IChatService {
	return &chatService{
		sessions:     sessions,
		pointers:     pointers,
		engine:       engine,
		filter:       filter,
		hub:          hub,
		mail:         mail,
		alertTo:      alertTo,
		natsPub:      natsPub,
		logger:       log,
		typingDelay:  typingDelay,
		handoffDelay: handoffDelay,
		clients:      make(map[string]*clientState),
		now:          func() int64 { return time.Now().UnixMilli() },
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Start resolves the client's state: resume a live session if a valid
// pointer exists, otherwise open a fresh bot dialogue.
func (s *chatService) Start(ctx context.Context, req *dto.StartChatRequest) (*dto.ChatStateResponse, error) {
	if s.suspended.Load() {
		return nil, serverutils.NewForbiddenError("The chat widget is currently disabled")
	}

	clientId := req.ClientId
	if clientId == "" {
		clientId = uuid.NewString()
	}

	pointer, ok := s.pointers.Get(clientId)
	if ok {
		return s.resume(ctx, clientId, pointer)
	}
	return s.freshBot(clientId, constant.GreetingText), nil
}

func (s *chatService) resume(ctx context.Context, clientId string, pointer entity.SessionPointer) (*dto.ChatStateResponse, error) {
	messages, err := s.sessions.GetMessages(ctx, pointer.Id)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			// Record deleted while we were away; equivalent to no session.
			s.pointers.Delete(clientId)
			return s.freshBot(clientId, constant.GreetingText), nil
		}
		// Transient store failure: keep pointer and mode untouched so the
		// widget can retry the same resume.
		return nil, serverutils.NewRetryableError("Could not reach the chat service, please retry")
	}

	// Entering live touches status and lastActive even before any message
	// is sent; this is the "visitor is online" signal for the console.
	now := s.now()
	active := entity.SessionStatusActive
	if err := s.sessions.TouchSession(ctx, pointer.Id, store.TouchFields{LastActive: &now, Status: &active}); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		s.logger.Warn("ChatService", "Presence touch failed on resume", map[string]interface{}{
			"session_id": pointer.Id, "error": err.Error(),
		})
	}

	s.mu.Lock()
	s.clients[clientId] = &clientState{mode: entity.ModeLive, sessionId: pointer.Id}
	s.mu.Unlock()

	return &dto.ChatStateResponse{
		ClientId:  clientId,
		Mode:      string(entity.ModeLive),
		SessionId: pointer.Id,
		Messages:  dto.ToMessageResponses(messages),
	}, nil
}

func (s *chatService) freshBot(clientId, greeting string) *dto.ChatStateResponse {
	state := &clientState{
		mode: entity.ModeBot,
		transcript: []entity.Message{
			{Text: greeting, Sender: entity.SenderBot, Timestamp: s.now()},
		},
	}
	s.mu.Lock()
	s.clients[clientId] = state
	s.mu.Unlock()

	return s.snapshot(clientId, state)
}

func (s *chatService) Message(ctx context.Context, req *dto.SendMessageRequest) (*dto.ChatStateResponse, error) {
	if s.suspended.Load() {
		return nil, serverutils.NewForbiddenError("The chat widget is currently disabled")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, serverutils.NewValidationError("text", "Message text must not be empty")
	}

	state, err := s.state(req.ClientId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	mode, sessionId := state.mode, state.sessionId
	s.mu.Unlock()

	switch mode {
	case entity.ModeBot:
		return s.botMessage(req.ClientId, state, text)
	case entity.ModeLive:
		return s.liveMessage(ctx, req.ClientId, sessionId, text)
	default:
		return nil, serverutils.NewConflictError("Finish or cancel the connect form first")
	}
}

// botMessage appends the visitor's message and schedules the bot's reply.
// The reply is delayed to emulate typing; a handoff outcome additionally
// schedules the mode transition after its own delay.
func (s *chatService) botMessage(clientId string, state *clientState, text string) (*dto.ChatStateResponse, error) {
	s.mu.Lock()
	state.transcript = append(state.transcript, entity.Message{
		Text:      text,
		Sender:    entity.SenderUser,
		Timestamp: s.now(),
	})
	s.mu.Unlock()

	var replyText string
	handoff := false

	if s.filter.Check(text) == moderation.Blocked {
		replyText = constant.ModerationText
	} else {
		outcome := s.engine.Respond(text)
		replyText = outcome.Text
		handoff = outcome.Kind == dialogue.Handoff
	}

	s.schedule(s.typingDelay, func() {
		s.appendBotReply(clientId, replyText)
		if handoff {
			s.schedule(s.handoffDelay, func() {
				s.transitionToHandoff(clientId)
			})
		}
	})

	return s.snapshotLocked(clientId), nil
}

func (s *chatService) appendBotReply(clientId, text string) {
	s.mu.Lock()
	state, ok := s.clients[clientId]
	if !ok || state.mode != entity.ModeBot {
		// Client ended or moved on before the "typing" finished.
		s.mu.Unlock()
		return
	}
	state.transcript = append(state.transcript, entity.Message{
		Text:      text,
		Sender:    entity.SenderBot,
		Timestamp: s.now(),
	})
	snapshot := dto.ToMessageResponses(state.transcript)
	s.mu.Unlock()

	s.hub.Publish(websocket.TopicClientPrefix+clientId, websocket.Envelope{
		Type: constant.EnvelopeTranscript,
		Data: snapshot,
	})
}

func (s *chatService) transitionToHandoff(clientId string) {
	s.mu.Lock()
	state, ok := s.clients[clientId]
	if !ok || state.mode != entity.ModeBot {
		s.mu.Unlock()
		return
	}
	state.mode = entity.ModeHandoff
	s.mu.Unlock()

	s.hub.Publish(websocket.TopicClientPrefix+clientId, websocket.Envelope{
		Type: constant.EnvelopeMode,
		Data: string(entity.ModeHandoff),
	})
}

// liveMessage is append + lastActive touch. Both writes are required for
// every send; the touch keeps the admin list's freshness ordering.
func (s *chatService) liveMessage(ctx context.Context, clientId, sessionId string, text string) (*dto.ChatStateResponse, error) {
	msg := entity.Message{
		Text:      text,
		Sender:    entity.SenderUser,
		Timestamp: s.now(),
	}

	if _, err := s.sessions.AppendMessage(ctx, sessionId, msg); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, serverutils.NewNotFoundError("This chat session no longer exists")
		}
		// Local mode and pointer stay as they were; the widget keeps the
		// compose input populated and the user retries.
		return nil, serverutils.NewRetryableError("Message could not be sent, please retry")
	}

	now := s.now()
	if err := s.sessions.TouchSession(ctx, sessionId, store.TouchFields{LastActive: &now}); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		s.logger.Warn("ChatService", "lastActive touch failed after send", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
	}

	return s.snapshotLocked(clientId), nil
}

// SubmitHandoff validates the connect form, derives the session id from
// the phone number, and seeds the store with the bot-mode transcript.
func (s *chatService) SubmitHandoff(ctx context.Context, req *dto.HandoffRequest) (*dto.ChatStateResponse, error) {
	if s.suspended.Load() {
		return nil, serverutils.NewForbiddenError("The chat widget is currently disabled")
	}

	state, err := s.state(req.ClientId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pending := state.mode == entity.ModeHandoff
	s.mu.Unlock()
	if !pending {
		return nil, serverutils.NewConflictError("No connect request is pending")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, serverutils.NewValidationError("name", "Please enter your name")
	}

	phone := nonDigits.ReplaceAllString(req.Phone, "")
	if len(phone) != 10 {
		return nil, serverutils.NewValidationError("phone", "Please enter a valid 10-digit mobile number")
	}

	now := s.now()
	sessionId := phone

	s.mu.Lock()
	seed := make([]entity.Message, len(state.transcript))
	copy(seed, state.transcript)
	s.mu.Unlock()
	seed = append(seed, entity.Message{
		Text:      fmt.Sprintf(constant.JoinedNoticeFormat, name),
		Sender:    entity.SenderBot,
		Timestamp: now,
	})

	err = s.sessions.CreateOrMergeSession(ctx, sessionId, &entity.ChatSession{
		User:       entity.UserDetails{Name: name, Phone: phone},
		Status:     entity.SessionStatusActive,
		LastActive: now,
		Messages:   seed,
	})
	if err != nil {
		// Form stays open; nothing local changed, so retry is safe.
		return nil, serverutils.NewRetryableError("Failed to connect, please try again")
	}

	s.pointers.Save(req.ClientId, entity.SessionPointer{Id: sessionId, CreatedAt: now})

	s.mu.Lock()
	state.mode = entity.ModeLive
	state.sessionId = sessionId
	state.transcript = nil
	s.mu.Unlock()

	s.hub.Publish(websocket.TopicClientPrefix+req.ClientId, websocket.Envelope{
		Type: constant.EnvelopeMode,
		Data: string(entity.ModeLive),
	})

	s.notifyHandoff(name, phone, sessionId)

	messages, err := s.sessions.GetMessages(ctx, sessionId)
	if err != nil {
		messages = nil
	}
	return &dto.ChatStateResponse{
		ClientId:  req.ClientId,
		Mode:      string(entity.ModeLive),
		SessionId: sessionId,
		Messages:  dto.ToMessageResponses(messages),
	}, nil
}

// notifyHandoff fans the new-handoff signal out to staff channels. All of
// this is best effort; the session is already live either way.
func (s *chatService) notifyHandoff(name, phone, sessionId string) {
	if s.natsPub != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, eventType := range []string{events.TypeHandoffRequested, events.TypeSessionStarted} {
				evt := events.BaseEvent{
					Type: eventType,
					Data: map[string]interface{}{
						"session_id": sessionId,
						"name":       name,
						"phone":      phone,
					},
					OccurredAt: time.Now(),
				}
				if err := s.natsPub.Publish(ctx, evt); err != nil {
					s.logger.Warn("ChatService", "Event publish failed", map[string]interface{}{
						"type": eventType, "error": err.Error(),
					})
				}
			}
		}()
	}

	if s.mail != nil && s.alertTo != "" {
		go func() {
			if err := s.mail.SendHandoffAlert(s.alertTo, name, phone, sessionId); err != nil {
				s.logger.Warn("ChatService", "Handoff alert email failed", map[string]interface{}{
					"session_id": sessionId, "error": err.Error(),
				})
			}
		}()
	}
}

func (s *chatService) CancelHandoff(clientId string) (*dto.ChatStateResponse, error) {
	state, err := s.state(clientId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if state.mode == entity.ModeHandoff {
		state.mode = entity.ModeBot
	}
	s.mu.Unlock()

	return s.snapshotLocked(clientId), nil
}

// EndSession marks the store record ended, clears the local pointer, and
// collapses the widget back to a one-greeting bot transcript.
func (s *chatService) EndSession(ctx context.Context, clientId string) (*dto.ChatStateResponse, error) {
	state, err := s.state(clientId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	mode, sessionId := state.mode, state.sessionId
	s.mu.Unlock()

	if mode == entity.ModeLive {
		ended := entity.SessionStatusEnded
		err := s.sessions.TouchSession(ctx, sessionId, store.TouchFields{Status: &ended})
		if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			// Pointer and mode unchanged so the user can retry the end.
			return nil, serverutils.NewRetryableError("Could not end the session, please retry")
		}
		s.publishSessionEnded(sessionId)
	}

	s.pointers.Delete(clientId)
	return s.freshBot(clientId, constant.SessionEndedText), nil
}

func (s *chatService) publishSessionEnded(sessionId string) {
	if s.natsPub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		evt := events.BaseEvent{
			Type:       events.TypeSessionEnded,
			Data:       map[string]interface{}{"session_id": sessionId},
			OccurredAt: time.Now(),
		}
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Event publish failed", map[string]interface{}{
				"type": events.TypeSessionEnded, "error": err.Error(),
			})
		}
	}()
}

func (s *chatService) Topics(clientId string) []string {
	topics := []string{websocket.TopicClientPrefix + clientId}

	s.mu.Lock()
	state, ok := s.clients[clientId]
	if ok && state.mode == entity.ModeLive {
		topics = append(topics, websocket.TopicSessionPrefix+state.sessionId)
	}
	s.mu.Unlock()

	return topics
}

func (s *chatService) Suspend()        { s.suspended.Store(true) }
func (s *chatService) Resume()         { s.suspended.Store(false) }
func (s *chatService) Suspended() bool { return s.suspended.Load() }

func (s *chatService) state(clientId string) (*clientState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.clients[clientId]
	if !ok {
		return nil, serverutils.NewNotFoundError("Unknown chat client, call start first")
	}
	return state, nil
}

// snapshot renders a state already safe to read; snapshotLocked takes the
// lock itself.
func (s *chatService) snapshot(clientId string, state *clientState) *dto.ChatStateResponse {
	return &dto.ChatStateResponse{
		ClientId:  clientId,
		Mode:      string(state.mode),
		SessionId: state.sessionId,
		Messages:  dto.ToMessageResponses(state.transcript),
	}
}

func (s *chatService) snapshotLocked(clientId string) *dto.ChatStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.clients[clientId]
	if !ok {
		return &dto.ChatStateResponse{ClientId: clientId, Mode: string(entity.ModeBot)}
	}
	return s.snapshot(clientId, state)
}
