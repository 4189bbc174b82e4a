package controller

import (
	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
	internalWS "support-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IAdminChatController interface {
	RegisterRoutes(r fiber.Router)
	ListSessions(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetSettings(ctx *fiber.Ctx) error
	UpdateSettings(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type adminChatController struct {
	service  service.IAdminChatService
	settings service.ISettingsService
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewAdminChatController(admin service.IAdminChatService, settings service.ISettingsService, hub *internalWS.Hub, log logger.ILogger) IAdminChatController {
	return &adminChatController{service: admin, settings: settings, hub: hub, logger: log}
}

func (c *adminChatController) RegisterRoutes(r fiber.Router) {
	// The websocket handshake carries its token as a query param, so it
	// authenticates inside ServeWs instead of the middleware chain.
	h := r.Group("/admin/chat/v1")
	h.Get("/ws", c.ServeWs)

	h.Use(serverutils.JwtMiddleware, serverutils.AdminOnly)
	h.Get("/sessions", c.ListSessions)
	h.Post("/sessions/:id/messages", c.SendMessage)
	h.Patch("/sessions/:id/read", c.MarkRead)
	h.Patch("/sessions/:id/end", c.End)
	h.Delete("/sessions/:id", c.Delete)
	h.Get("/settings", c.GetSettings)
	h.Put("/settings", c.UpdateSettings)
}

func (c *adminChatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *adminChatController) SendMessage(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	var req dto.AdminSendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SendMessage(ctx.Context(), sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Message sent", nil))
}

func (c *adminChatController) MarkRead(ctx *fiber.Ctx) error {
	if err := c.service.MarkRead(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Messages marked read", nil))
}

func (c *adminChatController) End(ctx *fiber.Ctx) error {
	if err := c.service.EndSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session ended", nil))
}

func (c *adminChatController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *adminChatController) GetSettings(ctx *fiber.Ctx) error {
	enabled, err := c.settings.Enabled(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Widget settings", dto.WidgetSettingsResponse{Enabled: enabled}))
}

func (c *adminChatController) UpdateSettings(ctx *fiber.Ctx) error {
	var req dto.WidgetSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.settings.SetEnabled(ctx.Context(), *req.Enabled); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Widget settings updated", dto.WidgetSettingsResponse{Enabled: *req.Enabled}))
}

// ServeWs subscribes the console to the session index, plus one session's
// transcript when the operator has a conversation open.
func (c *adminChatController) ServeWs(ctx *fiber.Ctx) error {
	claims, err := serverutils.ParseWsToken(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
	}

	topics := []string{internalWS.TopicIndex}
	if sessionId := ctx.Query("session"); sessionId != "" {
		topics = append(topics, internalWS.TopicSessionPrefix+sessionId)
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("AdminChatController", "Console websocket opened", map[string]interface{}{"topics": topics})
			internalWS.ServeWs(c.hub, conn, topics)
			c.logger.Info("AdminChatController", "Console websocket closed", map[string]interface{}{"topics": topics})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
