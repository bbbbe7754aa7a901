package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID uuid.UUID, optionID *uuid.UUID, qty, ceiling int, price string) Line {
	return Line{
		ProductID:    productID,
		OptionID:     optionID,
		Name:         "Labubu Series 3",
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		StockCeiling: ceiling,
	}
}

func TestKey(t *testing.T) {
	pid := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	oid := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, pid.String(), Key(pid, nil))
	assert.Equal(t, pid.String()+"-"+oid.String(), Key(pid, &oid))
}

func TestAddMergesAndClamps(t *testing.T) {
	pid := uuid.New()
	cases := []struct {
		name        string
		a, b        int
		ceiling     int
		wantQty     int
		wantClamped bool
	}{
		{"under ceiling", 1, 2, 5, 3, false},
		{"exactly ceiling", 2, 3, 5, 5, false},
		{"over ceiling", 3, 4, 5, 5, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			_, err := c.Add(line(pid, nil, tc.a, tc.ceiling, "10"))
			require.NoError(t, err)
			clamped, err := c.Add(line(pid, nil, tc.b, tc.ceiling, "10"))
			require.NoError(t, err)

			require.Len(t, c.Lines, 1)
			assert.Equal(t, tc.wantQty, c.Lines[0].Quantity)
			assert.Equal(t, tc.wantClamped, clamped)
		})
	}
}

func TestAddKeepsOptionsApart(t *testing.T) {
	pid := uuid.New()
	o1, o2 := uuid.New(), uuid.New()
	c := New()

	_, _ = c.Add(line(pid, &o1, 1, 3, "10"))
	_, _ = c.Add(line(pid, &o2, 2, 3, "12"))
	_, _ = c.Add(line(pid, nil, 1, 3, "9"))

	assert.Len(t, c.Lines, 3)
	assert.Equal(t, 4, c.TotalItems())
	assert.True(t, c.TotalPrice().Equal(decimal.RequireFromString("43")))
}

func TestAddUsesHeldCeiling(t *testing.T) {
	pid := uuid.New()
	c := New()
	_, _ = c.Add(line(pid, nil, 1, 2, "10"))

	clamped, err := c.Add(line(pid, nil, 5, 50, "10"))
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddRejectsInvalidLines(t *testing.T) {
	c := New()
	_, err := c.Add(line(uuid.New(), nil, 0, 5, "10"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = c.Add(line(uuid.New(), nil, 1, 0, "10"))
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.True(t, c.IsEmpty())
}

func TestAddClampsNewLine(t *testing.T) {
	c := New()
	clamped, err := c.Add(line(uuid.New(), nil, 9, 4, "10"))
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.Equal(t, 4, c.Lines[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	pid := uuid.New()
	c := New(line(pid, nil, 2, 5, "10"))
	key := Key(pid, nil)

	assert.True(t, c.SetQuantity(key, 9))
	assert.Equal(t, 5, c.Lines[0].Quantity)

	assert.True(t, c.SetQuantity(key, 3))
	assert.Equal(t, 3, c.Lines[0].Quantity)

	assert.True(t, c.SetQuantity(key, 0))
	assert.True(t, c.IsEmpty())

	assert.False(t, c.SetQuantity(key, 1))
}

func TestSetQuantityNegativeRemoves(t *testing.T) {
	pid := uuid.New()
	c := New(line(pid, nil, 2, 5, "10"))
	c.SetQuantity(Key(pid, nil), -1)
	assert.True(t, c.IsEmpty())
}

func TestRemoveAndClear(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	c := New(line(p1, nil, 1, 5, "10"), line(p2, nil, 1, 5, "10"))

	assert.True(t, c.Remove(Key(p1, nil)))
	assert.False(t, c.Remove(Key(p1, nil)))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, p2, c.Lines[0].ProductID)

	c.Clear()
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestDisplayName(t *testing.T) {
	l := Line{Name: "Hirono"}
	assert.Equal(t, "Hirono", l.DisplayName())
	l.OptionLabel = "Secret"
	assert.Equal(t, "Hirono - Secret", l.DisplayName())
}

func TestSnapshotVersioning(t *testing.T) {
	pid := uuid.New()
	c := New(line(pid, nil, 2, 5, "10"))

	restored, ok := FromSnapshot(c.Snapshot())
	require.True(t, ok)
	assert.Equal(t, c.Lines, restored.Lines)

	stale := c.Snapshot()
	stale.Version = SnapshotVersion + 1
	restored, ok = FromSnapshot(stale)
	assert.False(t, ok)
	assert.True(t, restored.IsEmpty())
}
