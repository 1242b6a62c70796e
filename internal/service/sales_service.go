package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/report"
	"inventory-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SalesService is the sales aggregator. It only reads.
type SalesService interface {
	GetSales(ctx context.Context, filter domain.SalesFilter, page domain.Pagination) (*domain.SalesPage, error)
	GetAnalytics(ctx context.Context, period domain.Period, filter domain.SalesFilter) ([]domain.SalesAnalytics, error)
	GetSalesByCategory(ctx context.Context, filter domain.SalesFilter) ([]domain.CategorySales, error)
	GetRevenueComparison(ctx context.Context, period domain.Period, comparePeriods int) ([]domain.RevenueComparison, error)
	ExportSalesReport(ctx context.Context, period domain.Period, filter domain.SalesFilter) ([]byte, error)
}

type salesService struct {
	analytics repository.AnalyticsRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewSalesService creates a new instance of SalesService
func NewSalesService(analytics repository.AnalyticsRepository, logger *zap.Logger) SalesService {
	return &salesService{
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *salesService) GetSales(ctx context.Context, filter domain.SalesFilter, page domain.Pagination) (result *domain.SalesPage, err error) {
	ctx, span := tracer.Start(ctx, "SalesService.GetSales")
	defer func() { finishSpan(span, err) }()

	page = page.Normalize()
	sales, total, err := s.analytics.ListSales(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &domain.SalesPage{
		Sales:      sales,
		TotalCount: total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}

func (s *salesService) GetAnalytics(ctx context.Context, period domain.Period, filter domain.SalesFilter) (rows []domain.SalesAnalytics, err error) {
	ctx, span := tracer.Start(ctx, "SalesService.GetAnalytics", trace.WithAttributes(attribute.String("analytics.period", string(period))))
	defer func() { finishSpan(span, err) }()

	if !period.Valid() {
		return nil, &domain.InvalidPeriodError{Period: string(period)}
	}

	rows, err = s.analytics.Analytics(ctx, period, filter)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].TotalOrders > 0 {
			rows[i].AverageOrderValue = rows[i].TotalRevenue.
				Div(decimal.NewFromInt(int64(rows[i].TotalOrders))).
				Round(2)
		}
	}
	return rows, nil
}

func (s *salesService) GetSalesByCategory(ctx context.Context, filter domain.SalesFilter) (rows []domain.CategorySales, err error) {
	ctx, span := tracer.Start(ctx, "SalesService.GetSalesByCategory")
	defer func() { finishSpan(span, err) }()

	return s.analytics.ByCategory(ctx, filter)
}

// GetRevenueComparison compares revenue over the trailing comparePeriods
// buckets ending with the current one. Buckets without sales are omitted.
func (s *salesService) GetRevenueComparison(ctx context.Context, period domain.Period, comparePeriods int) (rows []domain.RevenueComparison, err error) {
	ctx, span := tracer.Start(ctx, "SalesService.GetRevenueComparison", trace.WithAttributes(
		attribute.String("analytics.period", string(period)),
		attribute.Int("analytics.compare_periods", comparePeriods),
	))
	defer func() { finishSpan(span, err) }()

	if !period.Valid() {
		return nil, &domain.InvalidPeriodError{Period: string(period)}
	}
	if comparePeriods < 1 {
		return nil, fmt.Errorf("compare periods must be at least 1: %w", domain.ErrInvalidQuantity)
	}

	now := s.now().UTC()
	buckets, err := s.analytics.RevenueSince(ctx, period, period.WindowStart(now, comparePeriods))
	if err != nil {
		return nil, err
	}

	current := period.Truncate(now)
	inWindow := buckets[:0]
	for _, b := range buckets {
		if !b.PeriodBucket.After(current) {
			inWindow = append(inWindow, b)
		}
	}

	return domain.CompareRevenue(inWindow), nil
}

// ExportSalesReport renders the period analytics and category rollup as an
// XLSX workbook
func (s *salesService) ExportSalesReport(ctx context.Context, period domain.Period, filter domain.SalesFilter) (data []byte, err error) {
	ctx, span := tracer.Start(ctx, "SalesService.ExportSalesReport", trace.WithAttributes(attribute.String("analytics.period", string(period))))
	defer func() { finishSpan(span, err) }()

	analytics, err := s.GetAnalytics(ctx, period, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.GetSalesByCategory(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = report.WriteSalesReport(&buf, report.SalesReport{
		Period:      period,
		GeneratedAt: s.now().UTC(),
		Analytics:   analytics,
		Categories:  categories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render sales report: %w", err)
	}

	s.logger.Info("Sales report exported",
		zap.String("period", string(period)),
		zap.Int("buckets", len(analytics)),
		zap.Int("categories", len(categories)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}
