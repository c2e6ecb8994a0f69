package notification

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	hub        *EventHub
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, hub *EventHub, config *config.Config) *NotificationApi {
	return &NotificationApi{
		controller: controller,
		hub:        hub,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	notifications := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))
	notifications.Get("/", h.controller.ListMine)
	notifications.Post("/:id/read", h.controller.MarkRead)

	app.Get("/ws/events", websocket.New(h.hub.HandleConnection))
}
