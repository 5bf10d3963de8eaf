package main

import (
	"productapi/internal/config"
	"productapi/internal/docs"
	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// dependencies are the collaborators the HTTP app is built from.
// publisher and tokens are optional.
type dependencies struct {
	repo      repositories.ProductRepository
	publisher services.EventPublisher
	tokens    *services.TokenService
}

// newApp wires middleware, handlers and routes into a Fiber app.
func newApp(cfg config.Config, deps dependencies) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "productapi"})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	service := services.NewProductService(deps.repo, deps.publisher)
	productHandler := handlers.NewProductHandler(service, validation.New())
	if deps.tokens != nil {
		productHandler.WithWriteGuard(middleware.AuthRequired(deps.tokens))
	}

	productHandler.RegisterRoutes(app)
	handlers.NewHealthHandler(service).RegisterRoutes(app)
	docs.RegisterRoutes(app)

	return app
}
