package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMonthlyLabel(t *testing.T) {
	cases := []struct {
		m    MonthlyStatistics
		want string
	}{
		{MonthlyStatistics{Month: "2025-01", Year: 2025, MonthNum: 1}, "Jan 2025"},
		{MonthlyStatistics{Month: "2024-12", Year: 2024, MonthNum: 12}, "Dec 2024"},
		{MonthlyStatistics{Month: "2024-13", Year: 2024, MonthNum: 13}, "2024-13"},
	}
	for _, tc := range cases {
		if got := tc.m.Label(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestNormalizeMonths(t *testing.T) {
	for in, want := range map[int]int{0: 6, 3: 3, 24: 24, 25: 6, -1: 6} {
		if got := NormalizeMonths(in); got != want {
			t.Fatalf("NormalizeMonths(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestStatisticsOrderingAndAverages(t *testing.T) {
	body := `{
		"monthlyStats":[{"month":"2025-02","monthNum":2,"year":2025},{"month":"2025-01","monthNum":1,"year":2025}],
		"categoryStats":[{"category":"Food","percentage":33.33}],
		"totalPen":100,"totalUsd":30,"totalBills":4
	}`
	var s DashboardStatistics
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatal(err)
	}
	s.Normalize()

	months := s.MonthsChronological()
	if months[0].Label() != "Jan 2025" || months[1].Label() != "Feb 2025" {
		t.Fatalf("expected oldest first, got %v %v", months[0].Label(), months[1].Label())
	}
	if s.MonthlyStats[0].MonthNum != 2 {
		t.Fatalf("original order must be untouched")
	}
	if s.WeeklyStats == nil || len(s.WeeklyStats) != 0 {
		t.Fatalf("missing weekly stats should normalize to empty slice")
	}
	if got := s.CategoryStats[0].Percentage.String(); got != "33.33" {
		t.Fatalf("percentage should be kept verbatim, got %s", got)
	}
	if !s.AveragePen().Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected 25, got %s", s.AveragePen())
	}

	var empty DashboardStatistics
	if !empty.AverageUsd().IsZero() {
		t.Fatalf("average without bills should be zero")
	}
}
