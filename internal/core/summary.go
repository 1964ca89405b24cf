package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyStatistics aggregates spending for one calendar month.
type MonthlyStatistics struct {
	Month     string          `json:"month"` // "2024-01"
	TotalPen  decimal.Decimal `json:"totalPen"`
	TotalUsd  decimal.Decimal `json:"totalUsd"`
	BillCount int             `json:"billCount"`
	Year      int             `json:"year"`
	MonthNum  int             `json:"monthNum"`
}

// WeeklyStatistics aggregates spending for one Monday-to-Sunday week.
type WeeklyStatistics struct {
	WeekStart time.Time       `json:"weekStart"`
	WeekEnd   time.Time       `json:"weekEnd"`
	WeekLabel string          `json:"weekLabel"`
	TotalPen  decimal.Decimal `json:"totalPen"`
	TotalUsd  decimal.Decimal `json:"totalUsd"`
	BillCount int             `json:"billCount"`
}

// CategoryStatistics is one category's share of spending. Percentage is
// computed by the API and is displayed as received.
type CategoryStatistics struct {
	Category   string          `json:"category"`
	TotalPen   decimal.Decimal `json:"totalPen"`
	TotalUsd   decimal.Decimal `json:"totalUsd"`
	BillCount  int             `json:"billCount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// DashboardStatistics is the statistics page payload.
type DashboardStatistics struct {
	MonthlyStats  []MonthlyStatistics  `json:"monthlyStats"`
	WeeklyStats   []WeeklyStatistics   `json:"weeklyStats"`
	CategoryStats []CategoryStatistics `json:"categoryStats"`
	TotalPen      decimal.Decimal      `json:"totalPen"`
	TotalUsd      decimal.Decimal      `json:"totalUsd"`
	TotalBills    int                  `json:"totalBills"`
}

// Statistics windows offered by the month selector.
var StatsMonthOptions = []int{3, 6, 12, 24}

const (
	DefaultStatsMonths = 6
	MaxStatsMonths     = 24
)

// NormalizeMonths clamps a requested window to what the API accepts.
func NormalizeMonths(n int) int {
	if n < 1 || n > MaxStatsMonths {
		return DefaultStatsMonths
	}
	return n
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Label renders the month as "Jan 2025".
func (m MonthlyStatistics) Label() string {
	if m.MonthNum < 1 || m.MonthNum > 12 {
		return m.Month
	}
	return fmt.Sprintf("%s %d", monthAbbrev[m.MonthNum-1], m.Year)
}

// Normalize replaces nil lists with empty ones.
func (s *DashboardStatistics) Normalize() {
	if s.MonthlyStats == nil {
		s.MonthlyStats = []MonthlyStatistics{}
	}
	if s.WeeklyStats == nil {
		s.WeeklyStats = []WeeklyStatistics{}
	}
	if s.CategoryStats == nil {
		s.CategoryStats = []CategoryStatistics{}
	}
}

// MonthsChronological returns the monthly entries oldest first. The API sends
// them newest first.
func (s DashboardStatistics) MonthsChronological() []MonthlyStatistics {
	out := slices.Clone(s.MonthlyStats)
	slices.Reverse(out)
	return out
}

// WeeksChronological returns the weekly entries oldest first.
func (s DashboardStatistics) WeeksChronological() []WeeklyStatistics {
	out := slices.Clone(s.WeeklyStats)
	slices.Reverse(out)
	return out
}

// AveragePen is the mean PEN amount per bill, zero when there are no bills.
func (s DashboardStatistics) AveragePen() decimal.Decimal {
	return average(s.TotalPen, s.TotalBills)
}

// AverageUsd is the mean USD amount per bill, zero when there are no bills.
func (s DashboardStatistics) AverageUsd() decimal.Decimal {
	return average(s.TotalUsd, s.TotalBills)
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}
