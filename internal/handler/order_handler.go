package handler

import (
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	checkout service.CheckoutService
	orders   service.OrderService
}

func NewOrderHandler(checkout service.CheckoutService, orders service.OrderService) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

// Checkout submits the caller's stored cart as a pending order
// POST /api/v1/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var customer service.CustomerInfo
	if err := c.BodyParser(&customer); err != nil {
		return invalidJSON(c)
	}
	order, err := h.checkout.CheckoutStoredCart(c.UserContext(), actorFrom(c), customer)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message":  "Order placed",
		"order_id": order.ID,
		"data":     order,
	})
}

// GET /api/v1/orders/mine
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListForUser(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GET /api/v1/admin/orders?status=&limit=&offset=
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	orders, err := h.orders.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GET /api/v1/admin/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	order, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var in service.UpdateStatusInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), id, in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

type trackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// PUT /api/v1/admin/orders/:id/tracking
func (h *OrderHandler) SetTracking(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return invalidID(c, "order")
	}
	var req trackingRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.orders.SetTracking(c.UserContext(), id, req.TrackingNumber, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tracking updated", "data": order})
}
