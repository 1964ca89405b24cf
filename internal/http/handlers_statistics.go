package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"mibolsillo/internal/charts"
	"mibolsillo/internal/core"
	"mibolsillo/internal/fetch"
	applog "mibolsillo/internal/log"
)

var chartKinds = []string{charts.KindMonthly, charts.KindWeekly, charts.KindCategory}

// renderChart draws one chart. Tests replace it to simulate failures.
var renderChart = charts.Render

// svgPolicy is sent with standalone chart images.
const svgPolicy = "default-src 'none'; style-src 'unsafe-inline'"

type statsPageView struct {
	Months  int
	Options []int
}

type chartView struct {
	Kind  string
	Title string       // catalog key
	Src   template.URL // data URI, empty when there is nothing to plot
	Href  string       // standalone SVG

	// Failed means the chart could not be drawn, as opposed to having no data.
	Failed bool
}

type legendItem struct {
	Category   string
	Percentage decimal.Decimal
	TotalPen   decimal.Decimal
	TotalUsd   decimal.Decimal
	BillCount  int
	Color      string
}

type statsView struct {
	Stats    core.DashboardStatistics
	Months   int
	ErrorKey string
	Charts   []chartView
	Legend   []legendItem
}

// HasData reports whether there is anything to summarize.
func (v statsView) HasData() bool {
	return v.Stats.TotalBills > 0 || len(v.Stats.MonthlyStats) > 0 ||
		len(v.Stats.WeeklyStats) > 0 || len(v.Stats.CategoryStats) > 0
}

var chartTitles = map[string]string{
	charts.KindMonthly:  "statistics.monthly",
	charts.KindWeekly:   "statistics.weekly",
	charts.KindCategory: "statistics.byCategory",
}

// handleStatistics renders the page shell with the month selector.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "statistics_page", pageView{
		Title:  "statistics.title",
		Active: "statistics",
		Data: statsPageView{
			Months:  ParseMonths(r.URL.Query()),
			Options: core.StatsMonthOptions,
		},
	})
}

func (s *Server) loadStatistics(r *http.Request, months int) fetch.Result[core.DashboardStatistics] {
	return fetch.Load(r.Context(), "statistics", func(ctx context.Context) (core.DashboardStatistics, error) {
		return s.svc(r).Statistics.GetDashboard(ctx, months)
	})
}

// handleStatisticsPartial loads the statistics once and renders the summary
// cards, the legend and all three charts, which are drawn concurrently.
func (s *Server) handleStatisticsPartial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	months := ParseMonths(r.URL.Query())
	view := statsView{Months: months}

	res := s.loadStatistics(r, months)
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		view.ErrorKey = "statistics.errorLoad"
		s.renderPartial(w, r, "statistics_partial", view)
		return
	}
	view.Stats = res.Data

	for i, c := range view.Stats.CategoryStats {
		view.Legend = append(view.Legend, legendItem{
			Category:   c.Category,
			Percentage: c.Percentage,
			TotalPen:   c.TotalPen,
			TotalUsd:   c.TotalUsd,
			BillCount:  c.BillCount,
			Color:      charts.Color(i),
		})
	}

	grp := fetch.NewGroup(ctx, len(chartKinds))
	drawn := make([]fetch.Result[template.URL], len(chartKinds))
	for i, kind := range chartKinds {
		fetch.Go(grp, "chart_"+kind, &drawn[i], func(context.Context) (template.URL, error) {
			return chartDataURI(kind, view.Stats)
		})
	}
	failed := grp.Wait()

	for i, kind := range chartKinds {
		if err, ok := failed["chart_"+kind]; ok {
			applog.FromContext(ctx).WithComponent(applog.ComponentCharts).ErrorContext(ctx, "Chart render failed",
				"kind", kind,
				applog.FieldOperation, applog.OpRender,
				applog.FieldError, err)
		}
		view.Charts = append(view.Charts, chartView{
			Kind:   kind,
			Title:  chartTitles[kind],
			Src:    drawn[i].Data,
			Href:   "/charts/" + kind + ".svg?months=" + strconv.Itoa(months),
			Failed: drawn[i].Err != nil,
		})
	}
	s.renderPartial(w, r, "statistics_partial", view)
}

// chartDataURI renders one chart as an inline image. An empty URL means
// there was nothing to plot.
func chartDataURI(kind string, stats core.DashboardStatistics) (template.URL, error) {
	var buf bytes.Buffer
	if err := renderChart(&buf, kind, stats); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return "", nil
		}
		return "", err
	}
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// handleChart serves one chart as a standalone SVG. 204 when there is
// nothing to plot.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := mux.Vars(r)["kind"]
	if _, ok := chartTitles[kind]; !ok {
		NotFoundError("Unknown chart").Write(w)
		return
	}

	res := s.loadStatistics(r, ParseMonths(r.URL.Query()))
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		ErrorResponse(http.StatusBadGateway, "statistics unavailable").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := renderChart(&buf, kind, res.Data); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		applog.FromContext(ctx).WithComponent(applog.ComponentCharts).ErrorContext(ctx, "Chart render failed",
			"kind", kind,
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		InternalServerError("chart render failed").Write(w)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Security-Policy", svgPolicy)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
