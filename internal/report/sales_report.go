// Package report renders sales analytics as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"inventory-ledger/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	AnalyticsSheet  = "Analytics"
	CategoriesSheet = "Categories"
)

var (
	analyticsHeader  = []interface{}{"Period", "Total Revenue", "Total Orders", "Average Order Value", "Total Quantity"}
	categoriesHeader = []interface{}{"Category", "Total Revenue", "Total Quantity", "Product Count", "Order Count"}
)

// SalesReport is the content of an exported workbook
type SalesReport struct {
	Period      domain.Period
	GeneratedAt time.Time
	Analytics   []domain.SalesAnalytics
	Categories  []domain.CategorySales
}

// WriteSalesReport writes r to w as an XLSX workbook with one sheet of
// period buckets and one of category rollups
func WriteSalesReport(w io.Writer, r SalesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AnalyticsSheet); err != nil {
		return fmt.Errorf("failed to name analytics sheet: %w", err)
	}
	if _, err := f.NewSheet(CategoriesSheet); err != nil {
		return fmt.Errorf("failed to add categories sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	analyticsRows := make([][]interface{}, 0, len(r.Analytics))
	for _, a := range r.Analytics {
		analyticsRows = append(analyticsRows, []interface{}{
			FormatBucket(r.Period, a.PeriodBucket),
			a.TotalRevenue.InexactFloat64(),
			a.TotalOrders,
			a.AverageOrderValue.InexactFloat64(),
			a.TotalQuantity,
		})
	}
	if err := writeSheet(f, AnalyticsSheet, bold, analyticsHeader, analyticsRows); err != nil {
		return err
	}

	categoryRows := make([][]interface{}, 0, len(r.Categories))
	for _, c := range r.Categories {
		categoryRows = append(categoryRows, []interface{}{
			c.Category,
			c.TotalRevenue.InexactFloat64(),
			c.TotalQuantity,
			c.ProductCount,
			c.OrderCount,
		})
	}
	if err := writeSheet(f, CategoriesSheet, bold, categoriesHeader, categoryRows); err != nil {
		return err
	}

	props := &excelize.DocProperties{
		Title:   fmt.Sprintf("Sales report (%s)", r.Period),
		Created: r.GeneratedAt.Format(time.RFC3339),
	}
	if err := f.SetDocProps(props); err != nil {
		return fmt.Errorf("failed to set report properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// FormatBucket labels a bucket start the way the period is read:
// 2024-05-20 for days and weeks, 2024-05 for months, 2024 for years.
func FormatBucket(p domain.Period, t time.Time) string {
	switch p {
	case domain.PeriodMonthly:
		return t.UTC().Format("2006-01")
	case domain.PeriodYearly:
		return t.UTC().Format("2006")
	default:
		return t.UTC().Format("2006-01-02")
	}
}
