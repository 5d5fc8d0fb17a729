package controller

import (
	"strings"

	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/service"
	"support-assistant-be/internal/transport"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	HandleUpdate(ctx *fiber.Ctx) error
}

// webhookUpdate mirrors the gateway's update envelope. Exactly one of
// Message or CallbackQuery is set.
type webhookUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Message struct {
			MessageID int64 `json:"message_id"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

type webhookController struct {
	conversationService service.IConversationService
	logger              logger.ILogger
}

func NewWebhookController(conversationService service.IConversationService, sysLogger logger.ILogger) IWebhookController {
	return &webhookController{
		conversationService: conversationService,
		logger:              sysLogger,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Post("updates", c.HandleUpdate)
}

// HandleUpdate always answers 200 so the gateway does not redeliver.
// Handler errors are logged, not surfaced.
func (c *webhookController) HandleUpdate(ctx *fiber.Ctx) error {
	var update webhookUpdate
	if err := ctx.BodyParser(&update); err != nil {
		c.logger.Warn("webhook", "unparseable update", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusOK)
	}

	switch {
	case update.CallbackQuery != nil:
		cb := transport.Callback{
			ChatID:     update.CallbackQuery.Message.Chat.ID,
			UserID:     update.CallbackQuery.From.ID,
			MessageID:  update.CallbackQuery.Message.MessageID,
			CallbackID: update.CallbackQuery.ID,
			Data:       update.CallbackQuery.Data,
		}
		if err := c.conversationService.HandleCallback(ctx.Context(), cb); err != nil {
			c.logger.Error("webhook", "callback handling failed", map[string]interface{}{
				"update_id": update.UpdateID,
				"error":     err.Error(),
			})
		}

	case update.Message != nil:
		msg := transport.Update{
			ChatID:    update.Message.Chat.ID,
			UserID:    update.Message.From.ID,
			MessageID: update.Message.MessageID,
			Text:      update.Message.Text,
		}
		var err error
		if strings.TrimSpace(msg.Text) == "/start" {
			err = c.conversationService.HandleStart(ctx.Context(), msg)
		} else {
			err = c.conversationService.HandleMessage(ctx.Context(), msg)
		}
		if err != nil {
			c.logger.Error("webhook", "message handling failed", map[string]interface{}{
				"update_id": update.UpdateID,
				"error":     err.Error(),
			})
		}

	default:
		c.logger.Debug("webhook", "update without message or callback", map[string]interface{}{
			"update_id": update.UpdateID,
		})
	}

	return ctx.SendStatus(fiber.StatusOK)
}
