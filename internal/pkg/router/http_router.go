package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trendscouthq/trendscout/app/controllers"
	"github.com/trendscouthq/trendscout/internal/pkg/middleware"
	"github.com/trendscouthq/trendscout/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get("/login", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "sign in via your identity provider"})
	})
	app.Post("/auth/session", controllers.HandleSessionLogin)
	app.Get("/logout", controllers.HandleLogout)

	// Checkout return target; consumes and strips the payment markers.
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
