package handler

import (
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GetProducts lists the catalog, newest first
// GET /api/v1/products?search=&flag=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Search: c.Query("search"),
		Flag:   model.ProductFlag(c.Query("flag")),
	}
	products, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": products})
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	product, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": product})
}

// POST /api/v1/admin/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.Create(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.Update(c.UserContext(), id, in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	if err := h.service.Delete(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// POST /api/v1/admin/products/:id/options
func (h *ProductHandler) AddOption(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	var in service.OptionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	option, err := h.service.AddOption(c.UserContext(), productID, in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Option created", "data": option})
}

// PUT /api/v1/admin/products/:id/options/:optionId
func (h *ProductHandler) UpdateOption(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	optionID, err := paramUUID(c, "optionId")
	if err != nil {
		return invalidID(c, "option")
	}
	var in service.OptionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	option, err := h.service.UpdateOption(c.UserContext(), productID, optionID, in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Option updated", "data": option})
}

// DELETE /api/v1/admin/products/:id/options/:optionId
func (h *ProductHandler) DeleteOption(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "product")
	}
	optionID, err := paramUUID(c, "optionId")
	if err != nil {
		return invalidID(c, "option")
	}
	if err := h.service.DeleteOption(c.UserContext(), productID, optionID, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Option deleted"})
}
