package backtest

import (
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// ReportSeries are the four time-aligned series of a backtest report
type ReportSeries struct {
	Prices    timeseries.Series
	Positions timeseries.Series
	Equity    timeseries.Series
	Drawdown  timeseries.Series
}

// Renderer draws report series
type Renderer interface {
	Render(series ReportSeries) error
}

// FormatReport formats summary statistics as a fixed-width table
func FormatReport(s *Summary) string {
	var builder strings.Builder
	builder.WriteString("                   Results              \n")
	builder.WriteString("-------------------------------------------\n")
	builder.WriteString(fmt.Sprintf("%14s %21s\n", "statistic", "value"))
	builder.WriteString("-------------------------------------------\n")
	builder.WriteString(fmt.Sprintf("%20s %20.2f\n", "Absolute P&L :", s.FinalPnL))
	builder.WriteString(fmt.Sprintf("%20s %20.2f\n", "Sharpe Ratio :", s.Sharpe))
	builder.WriteString(fmt.Sprintf("%20s %20s\n", "Max. Drawdown P&L:", roundFixed(s.MaxDrawdown, 2)))
	return builder.String()
}

// roundFixed rounds half away from zero and formats with places decimals
func roundFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

type reportRow struct {
	Time     string  `csv:"time"`
	Price    float64 `csv:"price"`
	Position float64 `csv:"position"`
	Equity   float64 `csv:"equity"`
	Drawdown float64 `csv:"drawdown"`
}

func reportRows(series ReportSeries) ([]*reportRow, error) {
	for _, other := range []timeseries.Series{series.Prices, series.Positions, series.Drawdown} {
		if err := series.Equity.Aligned(other); err != nil {
			return nil, fmt.Errorf("%w: report: %w", ErrMisalignedSeries, err)
		}
	}
	rows := make([]*reportRow, len(series.Equity))
	for i, p := range series.Equity {
		rows[i] = &reportRow{
			Time:     p.Time.Format(time.RFC3339),
			Price:    series.Prices[i].Value,
			Position: series.Positions[i].Value,
			Equity:   p.Value,
			Drawdown: series.Drawdown[i].Value,
		}
	}
	return rows, nil
}

// CSVRenderer writes the report series as CSV columns
type CSVRenderer struct {
	Path string
}

// Render writes the CSV file
func (r CSVRenderer) Render(series ReportSeries) error {
	rows, err := reportRows(series)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(r.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&rows, file)
}

// HTMLRenderer writes a standalone HTML page with one SVG chart per series
type HTMLRenderer struct {
	Path  string
	Title string
}

type chart struct {
	Title  string
	Color  string
	Fill   bool
	Points string
}

const (
	chartWidth  = 960.0
	chartHeight = 220.0
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{range .Charts}}<h3>{{.Title}}</h3>
<svg width="960" height="220" style="border:1px solid #ddd">
{{if .Fill}}<polygon points="{{.Points}}" fill="{{.Color}}" fill-opacity="0.5"/>{{else}}<polyline points="{{.Points}}" fill="none" stroke="{{.Color}}" stroke-width="1.5"/>{{end}}
</svg>
{{end}}</body>
</html>
`))

// Render writes the HTML file
func (r HTMLRenderer) Render(series ReportSeries) error {
	if _, err := reportRows(series); err != nil {
		return err
	}
	title := r.Title
	if title == "" {
		title = "Backtest Report"
	}
	charts := []chart{
		{Title: "P/L", Color: "orange", Points: polyline(series.Prices, false)},
		{Title: "Positions", Color: "#aec6cf", Points: polyline(series.Positions, false)},
		{Title: "Strategy Equity Curve : P&L", Color: "#77dd77", Points: polyline(series.Equity, false)},
		{Title: "Drawdowns : P&L", Color: "#ff6961", Fill: true, Points: polyline(series.Drawdown, true)},
	}

	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(r.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	return reportTemplate.Execute(file, struct {
		Title  string
		Charts []chart
	}{Title: title, Charts: charts})
}

// polyline scales a series into SVG coordinates; closed adds the zero baseline
// so the shape can be filled.
func polyline(s timeseries.Series, closed bool) string {
	if len(s) == 0 {
		return ""
	}
	low, high := math.Inf(1), math.Inf(-1)
	for _, p := range s {
		if math.IsNaN(p.Value) {
			continue
		}
		low = math.Min(low, p.Value)
		high = math.Max(high, p.Value)
	}
	if closed {
		low = math.Min(low, 0)
		high = math.Max(high, 0)
	}
	if math.IsInf(low, 0) {
		low, high = 0, 0
	}
	span := high - low
	if span == 0 {
		span = 1
	}
	x := func(i int) float64 {
		if len(s) == 1 {
			return 0
		}
		return float64(i) / float64(len(s)-1) * chartWidth
	}
	y := func(v float64) float64 {
		return chartHeight - (v-low)/span*chartHeight
	}

	var builder strings.Builder
	if closed {
		builder.WriteString(fmt.Sprintf("%.2f,%.2f ", x(0), y(0)))
	}
	for i, p := range s {
		v := p.Value
		if math.IsNaN(v) {
			continue
		}
		builder.WriteString(fmt.Sprintf("%.2f,%.2f ", x(i), y(v)))
	}
	if closed {
		builder.WriteString(fmt.Sprintf("%.2f,%.2f", x(len(s)-1), y(0)))
	}
	return strings.TrimSpace(builder.String())
}
