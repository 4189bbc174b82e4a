package dto

import "support-chat-be/internal/entity"

type AdminSessionResponse struct {
	Id         string             `json:"id"`
	User       entity.UserDetails `json:"user"`
	Status     string             `json:"status"`
	LastActive int64              `json:"lastActive"`
	Messages   []MessageResponse  `json:"messages"`
}

func ToAdminSessionResponse(session *entity.ChatSession) *AdminSessionResponse {
	return &AdminSessionResponse{
		Id:         session.Id,
		User:       session.User,
		Status:     string(session.Status),
		LastActive: session.LastActive,
		Messages:   ToMessageResponses(session.Messages),
	}
}

type AdminSendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type WidgetSettingsRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type WidgetSettingsResponse struct {
	Enabled bool `json:"enabled"`
}
