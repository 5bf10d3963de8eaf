// Package docs serves the OpenAPI description of the products API.
package docs

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed openapi.json
var openAPI []byte

// RegisterRoutes exposes the document at GET /docs.
func RegisterRoutes(router fiber.Router) {
	router.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(openAPI)
	})
}
