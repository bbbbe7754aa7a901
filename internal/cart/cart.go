// Package cart holds a shopper's pending lines. Each line snapshots price
// and stock at add time; checkout re-validates against the ledger.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrSoldOut         = errors.New("line has no stock")
)

type Line struct {
	ProductID    uuid.UUID       `json:"id"`
	OptionID     *uuid.UUID      `json:"option_id,omitempty"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stock_quantity"`
	ImageURL     string          `json:"image_url,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	OptionLabel  string          `json:"option_label,omitempty"`
	OptionSKU    string          `json:"option_sku,omitempty"`
	OptionImage  string          `json:"option_image,omitempty"`
}

// Key is "<product>" or "<product>-<option>".
func Key(productID uuid.UUID, optionID *uuid.UUID) string {
	if optionID == nil {
		return productID.String()
	}
	return productID.String() + "-" + optionID.String()
}

func (l Line) Key() string {
	return Key(l.ProductID, l.OptionID)
}

func (l Line) DisplayName() string {
	if l.OptionLabel == "" {
		return l.Name
	}
	return l.Name + " - " + l.OptionLabel
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []Line `json:"items"`
}

func New(lines ...Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		c.Add(l)
	}
	return c
}

func (c *Cart) index(key string) int {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) Find(key string) (Line, bool) {
	if i := c.index(key); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Add merges line into the cart. The resulting quantity is capped at the
// stock ceiling of the line already held (or of line when new); clamped
// reports whether part of the requested quantity was dropped.
func (c *Cart) Add(line Line) (clamped bool, err error) {
	if line.Quantity < 1 {
		return false, ErrInvalidQuantity
	}

	if i := c.index(line.Key()); i >= 0 {
		existing := &c.Lines[i]
		want := existing.Quantity + line.Quantity
		existing.Quantity = min(want, existing.StockCeiling)
		return existing.Quantity < want, nil
	}

	if line.StockCeiling < 1 {
		return false, ErrSoldOut
	}
	want := line.Quantity
	line.Quantity = min(want, line.StockCeiling)
	c.Lines = append(c.Lines, line)
	return line.Quantity < want, nil
}

// SetQuantity clamps qty to [1, ceiling]; qty <= 0 removes the line.
// It reports false when no line has the key.
func (c *Cart) SetQuantity(key string, qty int) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.removeAt(i)
		return true
	}
	c.Lines[i].Quantity = min(max(1, qty), c.Lines[i].StockCeiling)
	return true
}

func (c *Cart) Remove(key string) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
