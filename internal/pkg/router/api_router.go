package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/trendscouthq/trendscout/app/controllers"
	"github.com/trendscouthq/trendscout/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/stats", controllers.HandleStats)

	payments := v1.Group("/payments", middleware.RequireAPIAuth)
	payments.Post("/check", controllers.HandleCheckPayment)
	payments.Post("/checkout", controllers.HandleCreateCheckout)

	searches := v1.Group("/searches", middleware.RequireAPIAuth)
	searches.Post("/", controllers.HandleCreateSearch)
	searches.Get("/:uuid", controllers.HandleGetSearch)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
