package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-blindbox-store/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct {
	start, end time.Time
	threshold  int
	err        error
}

func (s *stubReports) GetStockMovement(_ context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	s.start, s.end = start, end
	return []repository.StockMovementData{{Date: "2026-01-01", Inbound: 3}}, s.err
}

func (s *stubReports) GetDashboardStats(_ context.Context, threshold int) (*repository.DashboardStats, error) {
	s.threshold = threshold
	if s.err != nil {
		return nil, s.err
	}
	return &repository.DashboardStats{TotalProducts: 2, Revenue: decimal.NewFromInt(40)}, nil
}

func (s *stubReports) GetLowStock(_ context.Context, threshold int) ([]repository.LowStockItem, error) {
	s.threshold = threshold
	return nil, s.err
}

func TestDashboardWindowAndThreshold(t *testing.T) {
	reports := &stubReports{}
	svc := NewDashboardService(reports, 10)
	ctx := context.Background()

	_, err := svc.GetStockMovement(ctx, 0)
	require.NoError(t, err)
	assert.InDelta(t, (7 * 24 * time.Hour).Hours(), reports.end.Sub(reports.start).Hours(), 1)

	_, err = svc.GetStockMovement(ctx, 5000)
	require.NoError(t, err)
	assert.InDelta(t, float64(maxReportDays*24), reports.end.Sub(reports.start).Hours(), 25)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.Equal(t, 10, reports.threshold)
}

func TestDashboardStoreFailure(t *testing.T) {
	svc := NewDashboardService(&stubReports{err: errors.New("connection refused")}, 10)

	_, err := svc.GetDashboardStats(context.Background())
	assert.ErrorIs(t, err, ErrStore)
	_, err = svc.GetLowStock(context.Background())
	assert.ErrorIs(t, err, ErrStore)
}
