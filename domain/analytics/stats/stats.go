// Package stats provides the pure numeric primitives underlying every
// analysis component: regression, correlation, autocorrelation, CUSUM
// change detection, entropy, and dispersion measures.
package stats

import (
	"fmt"
	"math"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
)

// Regression holds an ordinary-least-squares fit.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// If all x values are identical the slope is undefined; the fit degrades
// to a horizontal line through mean(y) with RSquared 0.
func LinearRegression(x, y []float64) (Regression, error) {
	n := len(x)
	if n != len(y) {
		return Regression{}, fmt.Errorf("%w: x and y must have the same length", analytics.ErrInvalidInput)
	}
	if n < 2 {
		return Regression{}, fmt.Errorf("%w: at least 2 data points required for regression", analytics.ErrInvalidInput)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	fn := float64(n)
	denom := fn*sumX2 - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: sumY / fn}, nil
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	yMean := sumY / fn
	var ssTot, ssRes float64
	for i := range y {
		ssTot += (y[i] - yMean) * (y[i] - yMean)
		resid := y[i] - (slope*x[i] + intercept)
		ssRes += resid * resid
	}

	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1.0 - ssRes/ssTot
	}

	return Regression{Slope: slope, Intercept: intercept, RSquared: rSquared}, nil
}

// PearsonCorrelation computes the Pearson correlation coefficient of two
// series. Zero-variance input yields 0 rather than NaN.
func PearsonCorrelation(x, y []float64) (float64, error) {
	n := len(x)
	if n != len(y) {
		return 0, fmt.Errorf("%w: x and y must have the same length", analytics.ErrInvalidInput)
	}
	if n < 2 {
		return 0, fmt.Errorf("%w: at least 2 data points required for correlation", analytics.ErrInvalidInput)
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0, nil
	}
	return cov / denom, nil
}

// Autocorrelation computes the lag-k sample autocorrelation of a series,
// normalized by the series' own variance. Out-of-range lags and
// zero-variance input yield 0.
func Autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n || n < 2 {
		return 0
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	if variance == 0 {
		return 0
	}

	var cov float64
	for i := 0; i < n-lag; i++ {
		cov += (values[i] - mean) * (values[i+lag] - mean)
	}
	cov /= float64(n - lag)

	return cov / variance
}

// ChangeDirection labels which way a regime shift moved.
type ChangeDirection string

const (
	DirectionIncrease ChangeDirection = "increase"
	DirectionDecrease ChangeDirection = "decrease"
)

// ChangePoint marks a detected shift in a series' mean level. Index is a
// position in the analyzed value slice; the caller maps it back to a
// timestamp.
type ChangePoint struct {
	Index     int             `json:"index"`
	Direction ChangeDirection `json:"direction"`
	Magnitude float64         `json:"magnitude"`
}

// CUSUM detects sustained mean shifts with a two-sided cumulative-sum
// control chart. Deviations from target accumulate into positive and
// negative sums (with a stddev/2 slack per step); a change point fires
// when a sum reaches sensitivity*stddev*2 and that sum resets. Lower
// sensitivity values detect smaller shifts. Series shorter than 4 points
// or with zero variance yield no change points.
func CUSUM(values []float64, target *float64, sensitivity float64) []ChangePoint {
	if len(values) < 4 {
		return nil
	}

	tgt := 0.0
	if target != nil {
		tgt = *target
	} else {
		for _, v := range values {
			tgt += v
		}
		tgt /= float64(len(values))
	}

	var variance float64
	for _, v := range values {
		variance += (v - tgt) * (v - tgt)
	}
	variance /= float64(len(values))
	if variance <= 0 {
		return nil
	}
	stddev := math.Sqrt(variance)

	threshold := sensitivity * stddev * 2.0
	slack := stddev * 0.5

	var sPos, sNeg float64
	var points []ChangePoint

	for i, v := range values {
		deviation := v - tgt
		sPos = math.Max(0, sPos+deviation-slack)
		sNeg = math.Max(0, sNeg-deviation-slack)

		if sPos > threshold {
			points = append(points, ChangePoint{
				Index:     i,
				Direction: DirectionIncrease,
				Magnitude: Round(sPos, 4),
			})
			sPos = 0
		}
		if sNeg > threshold {
			points = append(points, ChangePoint{
				Index:     i,
				Direction: DirectionDecrease,
				Magnitude: Round(sNeg, 4),
			})
			sNeg = 0
		}
	}

	return points
}

// ShannonEntropy computes -sum(p*log2(p)) in bits, skipping zero terms.
// Distributions with at most one outcome carry no information.
func ShannonEntropy(probabilities []float64) float64 {
	if len(probabilities) <= 1 {
		return 0
	}

	var entropy float64
	for _, p := range probabilities {
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// CoefficientOfVariation returns |stddev/mean| using the sample standard
// deviation. Zero mean or fewer than 2 points yield 0.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)

	return math.Abs(math.Sqrt(variance) / mean)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample standard deviation (n-1 denominator),
// or 0 for fewer than 2 points.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
