package dto

import "support-chat-be/internal/entity"

type MessageResponse struct {
	Id        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read,omitempty"`
}

func ToMessageResponse(msg entity.Message) MessageResponse {
	return MessageResponse{
		Id:        msg.Id,
		Text:      msg.Text,
		Sender:    string(msg.Sender),
		Timestamp: msg.Timestamp,
		Read:      msg.Read,
	}
}

func ToMessageResponses(messages []entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, ToMessageResponse(msg))
	}
	return out
}

type StartChatRequest struct {
	ClientId string `json:"client_id"`
}

// ChatStateResponse is the visitor widget's full view: mode, session id
// when live, and the transcript to render.
type ChatStateResponse struct {
	ClientId  string            `json:"client_id"`
	Mode      string            `json:"mode"`
	SessionId string            `json:"session_id,omitempty"`
	Messages  []MessageResponse `json:"messages"`
}

type SendMessageRequest struct {
	ClientId string `json:"client_id" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

type HandoffRequest struct {
	ClientId string `json:"client_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

type ClientRequest struct {
	ClientId string `json:"client_id" validate:"required"`
}
