package service

import (
	"context"
	"time"

	"go-blindbox-store/internal/repository"
)

const maxReportDays = 365

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetLowStock(ctx context.Context) ([]repository.LowStockItem, error)
}

type dashboardService struct {
	reportRepo        repository.ReportRepository
	lowStockThreshold int
}

func NewDashboardService(reportRepo repository.ReportRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{reportRepo: reportRepo, lowStockThreshold: lowStockThreshold}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	if days > maxReportDays {
		days = maxReportDays
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.reportRepo.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, storeErr("stock movement report", err)
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.reportRepo.GetDashboardStats(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, storeErr("dashboard stats", err)
	}
	return stats, nil
}

func (s *dashboardService) GetLowStock(ctx context.Context) ([]repository.LowStockItem, error) {
	items, err := s.reportRepo.GetLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, storeErr("low stock report", err)
	}
	return items, nil
}
