package handler

import (
	"go-blindbox-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": view})
}

// AddItem mirrors "add to cart" on the product page
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in service.AddToCartInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	view, err := h.service.AddItem(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	msg := "Added to cart"
	if view.Clamped {
		msg = "Quantity limited to available stock"
	}
	return c.JSON(fiber.Map{"message": msg, "data": view})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity sets a line quantity; zero or less removes it
// PATCH /api/v1/cart/items/:key
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	view, err := h.service.SetQuantity(c.UserContext(), c.Params("key"), req.Quantity, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": view})
}

// DELETE /api/v1/cart/items/:key
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(c.UserContext(), c.Params("key"), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": view})
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
