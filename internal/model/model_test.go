package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderConfirmed, OrderShipped, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderShipped, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderConfirmed, OrderPending, false},
		{OrderShipped, OrderShipped, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestReasonForDelta(t *testing.T) {
	assert.Equal(t, ReasonScanIn, ReasonForDelta(4))
	assert.Equal(t, ReasonScanOut, ReasonForDelta(-3))
	assert.Equal(t, ReasonAdjust, ReasonForDelta(0))
}

func TestOptionUnitPrice(t *testing.T) {
	base := decimal.RequireFromString("100")
	opt := ProductOption{PriceDelta: decimal.RequireFromString("15.50")}
	assert.True(t, opt.UnitPrice(base).Equal(decimal.RequireFromString("115.50")))

	opt.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("90"))
	assert.True(t, opt.UnitPrice(base).Equal(decimal.RequireFromString("90")))
}

func TestProductAvailableStock(t *testing.T) {
	p := Product{StockQuantity: 5, OptionsStockTotal: 12}
	assert.Equal(t, 5, p.AvailableStock())
	p.HasOptions = true
	assert.Equal(t, 12, p.AvailableStock())
}

func TestProductFlag(t *testing.T) {
	assert.True(t, FlagPresale.NeedsETA())
	assert.True(t, FlagPreorder.NeedsETA())
	assert.False(t, FlagInStock.NeedsETA())
	assert.False(t, ProductFlag("sold-out").Valid())
}

func TestUserRoles(t *testing.T) {
	u := User{Role: &Role{Code: RoleEditor}}
	assert.True(t, u.HasRole(RoleEditor))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.True(t, u.HasAnyRole(StaffRoles...))
	assert.False(t, (&User{}).HasAnyRole(StaffRoles...))
}

func TestUserPasswordAndView(t *testing.T) {
	u := User{Email: "fan@example.com", Role: &Role{Code: RoleUser}}
	assert.NoError(t, u.SetPassword("secret1"))
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, u.PasswordMatches("secret1"))
	assert.False(t, u.PasswordMatches("secret2"))

	v := u.View()
	assert.False(t, v.Staff)
	assert.NotNil(t, v.Privileges)

	u.Role = &Role{Code: RoleAdmin}
	u.Privileges = []Privilege{{Code: "stock:view"}, {Code: "code:bind"}}
	assert.True(t, u.View().Staff)
	assert.Equal(t, []string{"code:bind", "stock:view"}, u.PrivilegeCodes())
	assert.True(t, u.HasPrivilege("code:bind"))
}

func TestPrivilegesForRole(t *testing.T) {
	editor := PrivilegesForRole(RoleEditor, DefaultPrivileges)
	for _, p := range editor {
		assert.NotContains(t, p.Code, "user:")
		assert.NotEqual(t, "order:update", p.Code)
	}
	assert.Len(t, PrivilegesForRole(RoleAdmin, DefaultPrivileges), len(DefaultPrivileges))
	assert.Empty(t, PrivilegesForRole(RoleUser, DefaultPrivileges))
}

func TestMovementIsImmutable(t *testing.T) {
	m := &StockMovement{ProductID: uuid.New()}
	assert.ErrorIs(t, m.BeforeUpdate(nil), ErrMovementImmutable)
	assert.ErrorIs(t, m.BeforeDelete(nil), ErrMovementImmutable)
}
