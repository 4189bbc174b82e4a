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

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Message(ctx *fiber.Ctx) error
	SubmitHandoff(ctx *fiber.Ctx) error
	CancelHandoff(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	Settings(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service  service.IChatService
	settings service.ISettingsService
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewChatController(chat service.IChatService, settings service.ISettingsService, hub *internalWS.Hub, log logger.ILogger) IChatController {
	return &chatController{service: chat, settings: settings, hub: hub, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/start", c.Start)
	h.Post("/message", c.Message)
	h.Post("/handoff", c.SubmitHandoff)
	h.Post("/handoff/cancel", c.CancelHandoff)
	h.Post("/end", c.End)
	h.Get("/settings", c.Settings)
	h.Get("/ws", c.ServeWs)
}

func (c *chatController) Start(ctx *fiber.Ctx) error {
	var req dto.StartChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat started", res))
}

func (c *chatController) Message(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Message(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) SubmitHandoff(ctx *fiber.Ctx) error {
	var req dto.HandoffRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SubmitHandoff(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Connected to support", res))
}

func (c *chatController) CancelHandoff(ctx *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CancelHandoff(req.ClientId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Connect request cancelled", res))
}

func (c *chatController) End(ctx *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.EndSession(ctx.Context(), req.ClientId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session ended", res))
}

// Settings is the widget bootstrap check: a disabled widget renders nothing.
func (c *chatController) Settings(ctx *fiber.Ctx) error {
	enabled, err := c.settings.Enabled(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Widget settings", dto.WidgetSettingsResponse{Enabled: enabled}))
}

// ServeWs subscribes the visitor widget to its own topics. Topics are fixed
// for the connection lifetime; after a mode change the widget reconnects,
// which is what discards pushes for a session it left.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	clientId := ctx.Query("client_id")
	if clientId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "client_id query parameter required"})
	}

	topics := c.service.Topics(clientId)

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "Widget websocket opened", map[string]interface{}{"client_id": clientId, "topics": topics})
			internalWS.ServeWs(c.hub, conn, topics)
			c.logger.Info("ChatController", "Widget websocket closed", map[string]interface{}{"client_id": clientId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
