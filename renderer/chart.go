package renderer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stvnw/fundval"
)

// RenderChart draws the chart lines of one mode as a PNG, one series per
// line run, colored as the legend assigns. Point times are offsets from
// startTime, as the price cache stores them.
func RenderChart(lines []fundval.ChartLine, startTime int64, mode fundval.Mode) ([]byte, error) {
	var series []chart.Series
	for _, line := range lines {
		if len(line.Data) < 2 {
			continue
		}
		xs := make([]time.Time, len(line.Data))
		ys := make([]float64, len(line.Data))
		for i, p := range line.Data {
			xs[i] = time.Unix(startTime+p.Time, 0)
			ys[i] = p.Value
		}
		width := 1.5
		if line.ID == fundval.OverallID {
			width = 2.5
		}
		series = append(series, chart.TimeSeries{
			Name: line.Name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(line.Color.Hex(), "#")),
				StrokeWidth: width,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	if mode == fundval.ModeValue {
		if trend, ok := trendSeries(lines, startTime); ok {
			series = append(series, trend)
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no plottable lines for mode %s", mode)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Funds (%s)", mode),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return formatAxisValue(f, mode)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", mode, err)
	}
	return buf.Bytes(), nil
}

// trendSeries fits a compounding trend over the overall value line and
// renders the fit as a dashed gray series.
func trendSeries(lines []fundval.ChartLine, startTime int64) (chart.Series, bool) {
	for _, line := range lines {
		if line.ID != fundval.OverallID || len(line.Data) < 2 {
			continue
		}
		values := make([]float64, len(line.Data))
		for i, p := range line.Data {
			values[i] = p.Value
		}
		trend, ok := fundval.ExponentialTrend(values)
		if !ok {
			return nil, false
		}
		xs := make([]time.Time, len(line.Data))
		for i, p := range line.Data {
			xs[i] = time.Unix(startTime+p.Time, 0)
		}
		return chart.TimeSeries{
			Name: "Trend",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("999999"),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
			XValues: xs,
			YValues: trend.Points,
		}, true
	}
	return nil, false
}

func formatAxisValue(v float64, mode fundval.Mode) string {
	switch mode {
	case fundval.ModeROI:
		return fmt.Sprintf("%.0f%%", v)
	case fundval.ModeAllocation:
		return fmt.Sprintf("%.0f%%", 100*v)
	case fundval.ModePrice, fundval.ModePriceNormalised:
		return fmt.Sprintf("%.0fp", v)
	default:
		return fundval.AbbreviateGBP(v)
	}
}
