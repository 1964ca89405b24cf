// Package charts renders the statistics page charts as SVG with go-chart.
package charts

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"mibolsillo/internal/core"
)

// ErrNoData means there is nothing to plot. Callers skip the chart.
var ErrNoData = errors.New("no data to chart")

// Kinds served under /charts/{kind}.svg.
const (
	KindMonthly  = "monthly"
	KindWeekly   = "weekly"
	KindCategory = "category"
)

var (
	colorPEN = drawing.ColorFromHex("3b82f6")
	colorUSD = drawing.ColorFromHex("10b981")

	// Palette is shared with the HTML legend so swatches match slices.
	Palette = []string{"3b82f6", "10b981", "f59e0b", "ef4444", "8b5cf6", "ec4899", "14b8a6", "f97316"}
)

const (
	seriesPEN = "PEN (S/)"
	seriesUSD = "USD ($)"
)

// Color returns the palette entry for the i-th category.
func Color(i int) string {
	return Palette[i%len(Palette)]
}

// Render writes the chart of kind for stats.
func Render(w io.Writer, kind string, stats core.DashboardStatistics) error {
	switch kind {
	case KindMonthly:
		return Monthly(w, stats)
	case KindWeekly:
		return Weekly(w, stats)
	case KindCategory:
		return Category(w, stats)
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
}

func amountFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// yRange starts at zero and leaves headroom above the largest value. An
// all-zero series still gets a non-empty range.
func yRange(values ...[]float64) *chart.ContinuousRange {
	top := 0.0
	for _, vs := range values {
		for _, v := range vs {
			top = math.Max(top, v)
		}
	}
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

func float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Monthly draws PEN and USD totals per month, oldest month first. A single
// month is drawn as a pair of bars, since a line needs two points.
func Monthly(w io.Writer, stats core.DashboardStatistics) error {
	months := stats.MonthsChronological()
	if len(months) == 0 {
		return ErrNoData
	}
	if len(months) == 1 {
		m := months[0]
		bars := pairedBars([]string{m.Label()}, []float64{float(m.TotalPen)}, []float64{float(m.TotalUsd)})
		if err := bars.Render(chart.SVG, w); err != nil {
			return fmt.Errorf("render monthly chart: %w", err)
		}
		return nil
	}

	xs := make([]float64, len(months))
	pen := make([]float64, len(months))
	usd := make([]float64, len(months))
	ticks := make([]chart.Tick, len(months))
	for i, m := range months {
		xs[i] = float64(i)
		pen[i] = float(m.TotalPen)
		usd[i] = float(m.TotalUsd)
		ticks[i] = chart.Tick{Value: float64(i), Label: m.Label()}
	}

	graph := chart.Chart{
		Width:  800,
		Height: 320,
		Background: chart.Style{
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(months) - 1)},
			Ticks: ticks,
			Style: chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		YAxis: chart.YAxis{
			Range:          yRange(pen, usd),
			ValueFormatter: amountFormatter,
			Style:          chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    seriesPEN,
				XValues: xs,
				YValues: pen,
				Style:   chart.Style{StrokeColor: colorPEN, StrokeWidth: 2, DotColor: colorPEN, DotWidth: 3},
			},
			chart.ContinuousSeries{
				Name:    seriesUSD,
				XValues: xs,
				YValues: usd,
				Style:   chart.Style{StrokeColor: colorUSD, StrokeWidth: 2, DotColor: colorUSD, DotWidth: 3},
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{FontSize: 10, FontColor: chart.ColorBlack}),
	}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}

// Weekly draws a PEN bar and a USD bar per week, oldest week first.
func Weekly(w io.Writer, stats core.DashboardStatistics) error {
	weeks := stats.WeeksChronological()
	if len(weeks) == 0 {
		return ErrNoData
	}

	labels := make([]string, len(weeks))
	pen := make([]float64, len(weeks))
	usd := make([]float64, len(weeks))
	for i, wk := range weeks {
		labels[i] = wk.WeekLabel
		pen[i] = float(wk.TotalPen)
		usd[i] = float(wk.TotalUsd)
	}

	if err := pairedBars(labels, pen, usd).Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render weekly chart: %w", err)
	}
	return nil
}

// pairedBars lays out a PEN bar and a USD bar per label. Only the PEN bar
// carries the label so each pair reads as one group.
func pairedBars(labels []string, pen, usd []float64) chart.BarChart {
	bars := make([]chart.Value, 0, len(labels)*2)
	for i, label := range labels {
		bars = append(bars,
			chart.Value{
				Label: html.EscapeString(label),
				Value: pen[i],
				Style: chart.Style{FillColor: colorPEN, StrokeColor: colorPEN},
			},
			chart.Value{
				Value: usd[i],
				Style: chart.Style{FillColor: colorUSD, StrokeColor: colorUSD},
			},
		)
	}

	width := 800
	if n := len(bars) * 36; n > width {
		width = n
	}
	return chart.BarChart{
		Width:      width,
		Height:     360,
		BarWidth:   24,
		BarSpacing: 6,
		Background: chart.Style{
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 60},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{FontSize: 8, FontColor: chart.ColorBlack, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Range:          yRange(pen, usd),
			ValueFormatter: amountFormatter,
			Style:          chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		Bars: bars,
	}
}

// Category draws each category's PEN total as a pie slice. Slice labels
// carry the percentage exactly as the API sent it. Colors follow Palette by
// index so the HTML legend lines up.
func Category(w io.Writer, stats core.DashboardStatistics) error {
	values := make([]chart.Value, 0, len(stats.CategoryStats))
	for i, c := range stats.CategoryStats {
		v := float(c.TotalPen)
		if v <= 0 {
			continue
		}
		color := drawing.ColorFromHex(Color(i))
		values = append(values, chart.Value{
			Label: html.EscapeString(fmt.Sprintf("%s %s%%", c.Category, c.Percentage.String())),
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: chart.ColorWhite, FontSize: 10, FontColor: chart.ColorWhite},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Width:  420,
		Height: 420,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 10, Left: 10, Right: 10, Bottom: 10},
			FillColor: chart.ColorWhite,
		},
	}
	if err := pie.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render category chart: %w", err)
	}
	return nil
}
