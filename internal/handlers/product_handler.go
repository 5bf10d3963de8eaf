package handlers

import (
	"errors"

	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgProductNotFound = "Product Not Found"
	msgProductDeleted  = "Product has been successfully deleted"

	msgFetchProductsFailed = "An error occurred while fetching the products"
	msgFetchProductFailed  = "An error occurred while fetching the product"
	msgCreateFailed        = "An error occurred while creating the product"
	msgUpdateFailed        = "An error occurred while updating the product"
	msgToggleFailed        = "An error occurred while updating the product's availability"
	msgDeleteFailed        = "An error occurred while deleting the product"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service    *services.ProductService
	validator  *validation.Validator
	writeGuard fiber.Handler
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validator *validation.Validator) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
	}
}

// WithWriteGuard puts guard in front of every mutating route.
func (h *ProductHandler) WithWriteGuard(guard fiber.Handler) *ProductHandler {
	h.writeGuard = guard
	return h
}

// RegisterRoutes registers the product routes. Each route runs its
// validation steps in order before the handler; the first failing step
// answers the request.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	validateID := middleware.ValidateID(h.validator)
	validateBody := middleware.ValidateBody(h.validator)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.write(validateBody, h.HandleCreateProduct)...)
	productRoutes.Get("/:id", validateID, h.HandleGetProductByID)
	productRoutes.Put("/:id", h.write(validateID, validateBody, h.HandleUpdateProduct)...)
	productRoutes.Patch("/:id", h.write(validateID, h.HandleToggleAvailability)...)
	productRoutes.Delete("/:id", h.write(validateID, h.HandleDeleteProduct)...)
}

func (h *ProductHandler) write(chain ...fiber.Handler) []fiber.Handler {
	if h.writeGuard == nil {
		return chain
	}
	return append([]fiber.Handler{h.writeGuard}, chain...)
}

// HandleGetProducts lists every product, newest first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("Error fetching products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": msgFetchProductsFailed,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": products})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := middleware.ProductID(c)
	if !ok {
		return fiber.ErrBadRequest
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return failure(c, err, id, "Error fetching product by ID", msgFetchProductFailed)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleCreateProduct creates a new product from a validated body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, ok := middleware.ProductInput(c)
	if !ok {
		return fiber.ErrBadRequest
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		log.Error().Err(err).Str("name", input.Name).Msg("Error creating product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": msgCreateFailed,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// HandleUpdateProduct replaces the name and price of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := middleware.ProductID(c)
	if !ok {
		return fiber.ErrBadRequest
	}
	input, ok := middleware.ProductInput(c)
	if !ok {
		return fiber.ErrBadRequest
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		return failure(c, err, id, "Error updating product", msgUpdateFailed)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleToggleAvailability flips the availability of a product.
func (h *ProductHandler) HandleToggleAvailability(c *fiber.Ctx) error {
	id, ok := middleware.ProductID(c)
	if !ok {
		return fiber.ErrBadRequest
	}

	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	if err != nil {
		return failure(c, err, id, "Error updating availability", msgToggleFailed)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": product})
}

// HandleDeleteProduct permanently removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := middleware.ProductID(c)
	if !ok {
		return fiber.ErrBadRequest
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return failure(c, err, id, "Error deleting product", msgDeleteFailed)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": msgProductDeleted})
}

// failure maps a missing product to 404 and anything else to a logged 500.
func failure(c *fiber.Ctx, err error, id int64, logMsg, message string) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": msgProductNotFound,
		})
	}

	log.Error().Err(err).Int64("product_id", id).Msg(logMsg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}
