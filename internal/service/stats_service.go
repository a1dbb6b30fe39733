package service

import (
	"context"
	"fmt"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// topProductsLimit caps the top and least selling listings in the report.
const topProductsLimit = 5

type StatsService interface {
	Report(ctx context.Context) (*domain.StatsReport, error)
}

type statsService struct {
	logger      *zap.Logger
	statsRepo   repository.StatsRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	tracer      trace.Tracer
}

func NewStatsService(
	logger *zap.Logger,
	statsRepo repository.StatsRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) StatsService {
	return &statsService{
		logger:      logger,
		statsRepo:   statsRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		tracer:      otel.Tracer("stats_service"),
	}
}

// Report recomputes the whole dashboard from the database. An empty store
// yields a report of zeros and empty slices rather than an error.
func (s *statsService) Report(ctx context.Context) (*domain.StatsReport, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.Report")
	defer span.End()

	report := &domain.StatsReport{}

	var err error

	if report.TotalRevenue, err = s.statsRepo.TotalRevenue(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.RevenueToday, err = s.statsRepo.RevenueToday(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	days, err := s.statsRepo.DistinctPurchaseDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	if days > 0 {
		report.AverageDailyRevenue = report.TotalRevenue / float64(days)
	}

	if report.TotalValidatedPurchases, err = s.statsRepo.CountValidatedPurchases(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.TotalUnitsInStock, err = s.statsRepo.TotalUnitsInStock(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.Categories, err = s.productRepo.Categories(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.RevenueByCategory, err = s.statsRepo.RevenueByCategory(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	for bucket, dst := range map[string]*[]domain.RevenueBucket{
		"day":   &report.DailyRevenue,
		"week":  &report.WeeklyRevenue,
		"month": &report.MonthlyRevenue,
		"year":  &report.YearlyRevenue,
	} {
		if *dst, err = s.statsRepo.RevenueByPeriod(ctx, bucket); err != nil {
			return nil, fmt.Errorf("failed to build report: %w", err)
		}
	}

	if report.TopSellingProducts, err = s.statsRepo.ProductsBySales(ctx, topProductsLimit, false); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.LeastSellingProducts, err = s.statsRepo.ProductsBySales(ctx, topProductsLimit, true); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	low, sufficient, discounted, err := s.statsRepo.StockPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	report.LowStockProducts = low
	report.SufficientStockProducts = sufficient
	report.DiscountedProducts = discounted

	if report.Customers, err = s.statsRepo.DistinctCustomers(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	if report.ValidatedPurchases, err = s.statsRepo.ValidatedPurchases(ctx); err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	mylogger.Debug(
		ctx,
		s.logger,
		"Statistics report built",
		zap.Float64("total_revenue", report.TotalRevenue),
		zap.Int64("validated_purchases", report.TotalValidatedPurchases),
	)

	return report, nil
}
