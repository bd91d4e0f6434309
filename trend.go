package fundval

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Trend is a least-squares fit of a value series against its sample index
// (1-based), used to draw a forecast line over the overall value chart.
type Trend struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Points    []float64 `json:"points"`
}

// LinearRegression fits value = slope*index + intercept over the series.
// Fewer than two samples leave nothing to fit.
func LinearRegression(line []float64) (slope, intercept float64, ok bool) {
	if len(line) < 2 {
		return 0, 0, false
	}
	xs := make([]float64, len(line))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	intercept, slope = stat.LinearRegression(xs, line, nil, false)
	return slope, intercept, true
}

// ExponentialTrend fits the series on a log scale, which suits compounding
// values, and projects the fitted curve back at every sample. Non-positive
// samples cannot be fitted on a log scale.
func ExponentialTrend(line []float64) (Trend, bool) {
	logValues := make([]float64, len(line))
	for i, v := range line {
		if v <= 0 {
			return Trend{}, false
		}
		logValues[i] = math.Log(v)
	}

	slope, intercept, ok := LinearRegression(logValues)
	if !ok {
		return Trend{}, false
	}

	points := make([]float64, len(line))
	for i := range line {
		points[i] = math.Exp(slope*float64(i+1) + intercept)
	}
	return Trend{Slope: slope, Intercept: intercept, Points: points}, true
}
