package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StockMovementData is one day of ledger activity for charts.
type StockMovementData struct {
	Date     string `db:"date" json:"date"`
	Inbound  int    `db:"inbound" json:"inbound"`
	Outbound int    `db:"outbound" json:"outbound"`
	Sold     int    `db:"sold" json:"sold"`
}

type DashboardStats struct {
	TotalProducts  int64           `db:"total_products" json:"total_products"`
	LowStockCount  int64           `db:"low_stock_count" json:"low_stock_count"`
	TotalValuation decimal.Decimal `db:"total_valuation" json:"total_valuation"`
	PendingOrders  int64           `db:"pending_orders" json:"pending_orders"`
	Revenue        decimal.Decimal `db:"revenue" json:"revenue"`
}

// LowStockItem is a product or option at or under the threshold.
type LowStockItem struct {
	ProductID   string  `db:"product_id" json:"product_id"`
	OptionID    *string `db:"option_id" json:"option_id,omitempty"`
	Name        string  `db:"name" json:"name"`
	OptionLabel *string `db:"option_label" json:"option_label,omitempty"`
	Stock       int     `db:"stock" json:"stock"`
}

type ReportRepository interface {
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
	GetLowStock(ctx context.Context, threshold int) ([]LowStockItem, error)
}

type reportRepo struct {
	db *sqlx.DB
}

func NewReportRepo(db *sqlx.DB) ReportRepository {
	return &reportRepo{db}
}

const stockMovementQuery = `
SELECT
	to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS date,
	COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) AS inbound,
	COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) AS outbound,
	COALESCE(SUM(CASE WHEN reason = 'sale' THEN -delta ELSE 0 END), 0) AS sold
FROM stock_movements
WHERE created_at BETWEEN $1 AND $2
GROUP BY 1
ORDER BY 1 ASC`

func (r *reportRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	results := []StockMovementData{}
	if err := r.db.SelectContext(ctx, &results, stockMovementQuery, startDate, endDate); err != nil {
		return nil, err
	}
	return results, nil
}

const dashboardStatsQuery = `
SELECT
	(SELECT COUNT(*) FROM products WHERE deleted_at IS NULL) AS total_products,
	(SELECT COUNT(*) FROM products
		WHERE deleted_at IS NULL
		AND (CASE WHEN has_options THEN options_stock_total ELSE stock_quantity END) < $1) AS low_stock_count,
	(SELECT COALESCE(SUM(stock_quantity * price), 0) FROM products
		WHERE deleted_at IS NULL AND NOT has_options)
	+ (SELECT COALESCE(SUM(o.stock_quantity * COALESCE(o.discount_price, p.base_price + o.price_delta)), 0)
		FROM product_options o JOIN products p ON p.id = o.product_id
		WHERE o.deleted_at IS NULL AND p.deleted_at IS NULL) AS total_valuation,
	(SELECT COUNT(*) FROM orders WHERE deleted_at IS NULL AND status = 'pending') AS pending_orders,
	(SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE deleted_at IS NULL AND status <> 'cancelled') AS revenue`

func (r *reportRepo) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	if err := r.db.GetContext(ctx, &stats, dashboardStatsQuery, lowStockThreshold); err != nil {
		return nil, err
	}
	return &stats, nil
}

const lowStockQuery = `
SELECT p.id::text AS product_id, NULL::text AS option_id, p.name, NULL::text AS option_label, p.stock_quantity AS stock
FROM products p
WHERE p.deleted_at IS NULL AND NOT p.has_options AND p.stock_quantity <= $1
UNION ALL
SELECT p.id::text, o.id::text, p.name, o.label, o.stock_quantity
FROM product_options o JOIN products p ON p.id = o.product_id
WHERE o.deleted_at IS NULL AND p.deleted_at IS NULL AND o.stock_quantity <= $1
ORDER BY stock ASC, name ASC`

func (r *reportRepo) GetLowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	items := []LowStockItem{}
	if err := r.db.SelectContext(ctx, &items, lowStockQuery, threshold); err != nil {
		return nil, err
	}
	return items, nil
}
