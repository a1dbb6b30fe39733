package http

import (
	"github.com/Belkadi-Amine23/mystore/pkg/config"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *AuthHandler
	Product  *ProductHandler
	Purchase *PurchaseHandler
	Stats    *StatsHandler
	Home     *HomeHandler
}

func NewValidator() *validator.Validate {
	return validator.New()
}

// NewApp wires the fiber application. The storefront routes are public, the
// admin group sits behind the auth and role middlewares.
func NewApp(cfg *config.Config, handlers *Handlers, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	})

	app.Use(otelfiber.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Auth.Register)
	auth.Post("/login", handlers.Auth.Login)
	auth.Post("/logout", handlers.Auth.Logout)

	api.Get("/home", handlers.Home.Home)

	products := api.Group("/products")
	products.Get("/", handlers.Product.List)
	products.Get("/categories", handlers.Product.Categories)
	products.Get("/:id", handlers.Product.GetByID)

	api.Post("/purchases", handlers.Purchase.Create)

	admin := api.Group("/admin", AuthRequired(), AdminOnly())
	admin.Post("/products", handlers.Product.Create)
	admin.Put("/products/:id", handlers.Product.Update)
	admin.Patch("/products/:id/discount", handlers.Product.UpdateDiscount)
	admin.Delete("/products/:id", handlers.Product.Delete)
	admin.Get("/purchases", handlers.Purchase.ListPending)
	admin.Patch("/purchases/:id", handlers.Purchase.Resolve)
	admin.Get("/statistics", handlers.Stats.Report)

	return app
}
