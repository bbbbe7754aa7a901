package handler

import (
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	ledger service.StockLedger
}

func NewStockHandler(ledger service.StockLedger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// targetFromQuery reads product_id and the optional option_id.
func targetFromQuery(c *fiber.Ctx) (service.StockTarget, error) {
	var target service.StockTarget
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		return target, err
	}
	target.ProductID = productID
	if raw := c.Query("option_id"); raw != "" {
		optionID, err := uuid.Parse(raw)
		if err != nil {
			return target, err
		}
		target.OptionID = &optionID
	}
	return target, nil
}

// GET /api/v1/admin/stock?product_id=&option_id=
func (h *StockHandler) GetCurrent(c *fiber.Ctx) error {
	target, err := targetFromQuery(c)
	if err != nil {
		return invalidID(c, "product or option")
	}
	qty, err := h.ledger.Current(c.UserContext(), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"product_id":     target.ProductID,
		"option_id":      target.OptionID,
		"stock_quantity": qty,
	}})
}

// Adjust sets an absolute quantity from the scanner or stock form
// POST /api/v1/admin/stock/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in service.AdjustInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	movement, err := h.ledger.Adjust(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	if movement == nil {
		return c.JSON(fiber.Map{"message": "Stock unchanged", "data": nil})
	}
	return c.JSON(fiber.Map{"message": "Stock updated", "data": movement})
}

type decrementRequest struct {
	Target   service.StockTarget `json:"target"`
	Quantity int                 `json:"quantity"`
	Note     string              `json:"note"`
}

// Decrement removes units scanned out of the stockroom
// POST /api/v1/admin/stock/decrement
func (h *StockHandler) Decrement(c *fiber.Ctx) error {
	var req decrementRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	movement, err := h.ledger.Decrement(c.UserContext(), req.Target, req.Quantity, model.ReasonScanOut, req.Note, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock updated", "data": movement})
}

// GET /api/v1/admin/stock/movements?product_id=&option_id=&reason=&limit=&offset=
func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		Reason: model.MovementReason(c.Query("reason")),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return invalidID(c, "product")
		}
		filter.ProductID = &id
	}
	if raw := c.Query("option_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return invalidID(c, "option")
		}
		filter.OptionID = &id
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	movements, total, err := h.ledger.Movements(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": movements, "total": total})
}
