package handler

import (
	"go-blindbox-store/internal/middleware"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Role      *RoleHandler
	Dashboard *DashboardHandler
	Product   *ProductHandler
	Scan      *ScanHandler
	Stock     *StockHandler
	Cart      *CartHandler
	Order     *OrderHandler
}

// RegisterRoutes mounts the API under api. requireAuth resolves the caller
// and sets the user locals every protected handler reads. The back office
// group is registered before the shopper group so its routes authenticate once.
func RegisterRoutes(api fiber.Router, h *Handlers, requireAuth fiber.Handler) {
	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)
	auth.Get("/me", requireAuth, h.Auth.Me)

	api.Get("/products", h.Product.GetProducts)
	api.Get("/products/:id", h.Product.GetProduct)

	// ============ BACK OFFICE ROUTES ============
	admin := api.Group("/admin", requireAuth, middleware.RequireRole(model.StaffRoles...))

	admin.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), h.Dashboard.GetDashboardStats)
	admin.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), h.Dashboard.GetStockMovement)
	admin.Get("/dashboard/low-stock", middleware.RequirePrivilege("dashboard:view"), h.Dashboard.GetLowStock)

	admin.Post("/products", middleware.RequirePrivilege("product:create"), h.Product.CreateProduct)
	admin.Put("/products/:id", middleware.RequirePrivilege("product:update"), h.Product.UpdateProduct)
	admin.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), h.Product.DeleteProduct)
	admin.Post("/products/:id/options", middleware.RequirePrivilege("product:update"), h.Product.AddOption)
	admin.Put("/products/:id/options/:optionId", middleware.RequirePrivilege("product:update"), h.Product.UpdateOption)
	admin.Delete("/products/:id/options/:optionId", middleware.RequirePrivilege("product:update"), h.Product.DeleteOption)

	admin.Post("/scan/resolve", middleware.RequirePrivilege("code:resolve"), h.Scan.Resolve)
	admin.Post("/scan/bind", middleware.RequirePrivilege("code:bind"), h.Scan.Bind)
	admin.Post("/scan/create-product", middleware.RequirePrivilege("product:create"), h.Scan.CreateProduct)

	admin.Get("/stock", middleware.RequirePrivilege("stock:view"), h.Stock.GetCurrent)
	admin.Get("/stock/movements", middleware.RequirePrivilege("stock:view"), h.Stock.GetMovements)
	admin.Post("/stock/adjust", middleware.RequirePrivilege("stock:adjust"), h.Stock.Adjust)
	admin.Post("/stock/decrement", middleware.RequirePrivilege("stock:adjust"), h.Stock.Decrement)

	admin.Get("/orders", middleware.RequirePrivilege("order:view"), h.Order.GetOrders)
	admin.Get("/orders/:id", middleware.RequirePrivilege("order:view"), h.Order.GetOrder)
	admin.Put("/orders/:id/status", middleware.RequirePrivilege("order:update"), h.Order.UpdateStatus)
	admin.Put("/orders/:id/tracking", middleware.RequirePrivilege("order:update"), h.Order.SetTracking)

	// User management is admin only
	users := admin.Group("/users", middleware.RequireRole(model.RoleAdmin))
	users.Get("", middleware.RequirePrivilege("user:view"), h.User.GetUsers)
	users.Get("/:id", middleware.RequirePrivilege("user:view"), h.User.GetUser)
	users.Post("", middleware.RequirePrivilege("user:create"), h.User.CreateUser)
	users.Put("/:id", middleware.RequirePrivilege("user:update"), h.User.UpdateUser)
	users.Delete("/:id", middleware.RequirePrivilege("user:delete"), h.User.DeleteUser)
	users.Put("/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), h.User.UpdateUserPrivileges)

	admin.Get("/roles", h.Role.GetRoles)
	admin.Get("/privileges", h.Role.GetPrivileges)

	// ============ SHOPPER ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/cart", h.Cart.GetCart)
	protected.Post("/cart/items", h.Cart.AddItem)
	protected.Patch("/cart/items/:key", h.Cart.SetQuantity)
	protected.Delete("/cart/items/:key", h.Cart.RemoveItem)
	protected.Delete("/cart", h.Cart.ClearCart)

	protected.Post("/checkout", h.Order.Checkout)
	protected.Get("/orders/mine", h.Order.MyOrders)
}

// RegisterWebSocket mounts the live update feed at /ws.
func RegisterWebSocket(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			return
		}
		defer hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
