package handler

import (
	"go-blindbox-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ScanHandler serves the admin scanner: resolve a scanned code, bind it to
// a product or option, or create a product straight from it.
type ScanHandler struct {
	resolver service.CodeResolver
}

func NewScanHandler(resolver service.CodeResolver) *ScanHandler {
	return &ScanHandler{resolver: resolver}
}

type resolveRequest struct {
	Code string `json:"code"`
}

// POST /api/v1/admin/scan/resolve
func (h *ScanHandler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	res, err := h.resolver.Resolve(c.UserContext(), req.Code)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			// the scanner offers bind / create on a miss
			return c.Status(404).JSON(fiber.Map{
				"error": err.Error(),
				"kind":  service.Classify(req.Code),
				"code":  req.Code,
			})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": res})
}

// POST /api/v1/admin/scan/bind
func (h *ScanHandler) Bind(c *fiber.Ctx) error {
	var in service.BindInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	res, err := h.resolver.Bind(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Code bound", "data": res})
}

// POST /api/v1/admin/scan/create-product
func (h *ScanHandler) CreateProduct(c *fiber.Ctx) error {
	var in service.CreateFromCodeInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	res, err := h.resolver.CreateProductFromCode(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": res})
}
