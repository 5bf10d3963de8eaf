package middleware

import (
	"productapi/internal/models"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	localProductID    = "product_id"
	localProductInput = "product_input"
)

// ValidateBody checks the product fields of the request body. On failure it
// answers 400 with every accumulated error and stops the chain.
func ValidateBody(v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := validation.ParseBody(c.Body())
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("Malformed request body")
			return rejectInvalid(c, validation.InvalidBody())
		}

		input, errs := v.ValidateProduct(body)
		if len(errs) > 0 {
			return rejectInvalid(c, errs)
		}

		c.Locals(localProductInput, input)
		return c.Next()
	}
}

// ValidateID checks that the id path parameter is an integer.
func ValidateID(v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := v.ValidateID(c.Params("id"))
		if len(errs) > 0 {
			return rejectInvalid(c, errs)
		}

		c.Locals(localProductID, id)
		return c.Next()
	}
}

// ProductID returns the id stored by ValidateID.
func ProductID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(localProductID).(int64)
	return id, ok
}

// ProductInput returns the fields stored by ValidateBody.
func ProductInput(c *fiber.Ctx) (models.ProductInput, bool) {
	input, ok := c.Locals(localProductInput).(models.ProductInput)
	return input, ok
}

func rejectInvalid(c *fiber.Ctx, errs validation.Errors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": errs,
	})
}
