package auth

import (
	"go-hrm/internal/config"
	"go-hrm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", h.controller.Login)
	app.Post("/api/auth/change-password", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.ChangePassword)
}
