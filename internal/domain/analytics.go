package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the calendar granularity used to bucket sales.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod returns the Period named by s or an *InvalidPeriodError.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Valid() {
		return "", &InvalidPeriodError{Period: s}
	}
	return p, nil
}

// Valid reports whether p is one of the four recognized granularities.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// TruncUnit returns the date_trunc field name for p.
func (p Period) TruncUnit() string {
	switch p {
	case PeriodDaily:
		return "day"
	case PeriodWeekly:
		return "week"
	case PeriodMonthly:
		return "month"
	case PeriodYearly:
		return "year"
	}
	return ""
}

// Truncate returns the start of the bucket containing t, in UTC.
// Weeks start on Monday.
func (p Period) Truncate(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch p {
	case PeriodDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// AddBuckets moves t by n buckets of p.
func (p Period) AddBuckets(t time.Time, n int) time.Time {
	switch p {
	case PeriodDaily:
		return t.AddDate(0, 0, n)
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	case PeriodYearly:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// WindowStart returns the start of the oldest of the trailing buckets
// ending with the bucket that contains now.
func (p Period) WindowStart(now time.Time, buckets int) time.Time {
	return p.AddBuckets(p.Truncate(now), -(buckets - 1))
}

// SalesAnalytics aggregates sales within one period bucket.
type SalesAnalytics struct {
	PeriodBucket      time.Time       `json:"period" db:"period_bucket"`
	TotalRevenue      decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	TotalOrders       int             `json:"total_orders" db:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value" db:"-"`
	TotalQuantity     int             `json:"total_quantity" db:"total_quantity"`
}

// CategorySales aggregates sales of one product category.
type CategorySales struct {
	Category      string          `json:"category" db:"category"`
	TotalRevenue  decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	TotalQuantity int             `json:"total_quantity" db:"total_quantity"`
	ProductCount  int             `json:"product_count" db:"product_count"`
	OrderCount    int             `json:"order_count" db:"order_count"`
}

// PeriodRevenue is the revenue of one period bucket.
type PeriodRevenue struct {
	PeriodBucket time.Time       `db:"period_bucket"`
	Revenue      decimal.Decimal `db:"revenue"`
}

// RevenueComparison compares a bucket's revenue with the preceding bucket.
type RevenueComparison struct {
	PeriodBucket     time.Time        `json:"period"`
	Revenue          decimal.Decimal  `json:"revenue"`
	PreviousRevenue  *decimal.Decimal `json:"previous_revenue"`
	GrowthPercentage float64          `json:"growth_percentage"`
}

// CompareRevenue pairs each bucket with its predecessor. Buckets must be
// ordered oldest first. Growth is 0 when there is no predecessor or its
// revenue is zero.
func CompareRevenue(buckets []PeriodRevenue) []RevenueComparison {
	out := make([]RevenueComparison, 0, len(buckets))
	for i, b := range buckets {
		c := RevenueComparison{PeriodBucket: b.PeriodBucket, Revenue: b.Revenue}
		if i > 0 {
			prev := buckets[i-1].Revenue
			c.PreviousRevenue = &prev
			if !prev.IsZero() {
				growth := b.Revenue.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100))
				c.GrowthPercentage = growth.Round(2).InexactFloat64()
			}
		}
		out = append(out, c)
	}
	return out
}
