package planning

import (
	"math"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
)

const biasTolerance = 0.1

// realizedWindow returns the trailing window of realized points in
// chronological order.
func realizedWindow(history []domain.HistoryPoint, window int) ([]domain.HistoryPoint, error) {
	points := make([]domain.HistoryPoint, 0, window)
	for i := len(history) - 1; i >= 0 && len(points) < window; i-- {
		if history[i].Realized() {
			points = append(points, history[i])
		}
	}
	if len(points) < window {
		return nil, errors.Wrapf(ErrInsufficientHistory, "%d realized periods, need %d", len(points), window)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// DemandStatistics computes mean demand, variability and forecast accuracy
// over the trailing window of realized history.
func DemandStatistics(history []domain.HistoryPoint, window int) (domain.DemandStats, error) {
	points, err := realizedWindow(history, window)
	if err != nil {
		return domain.DemandStats{}, err
	}

	n := float64(len(points))
	var sumReal, sumAbsErr, sumSignedErr, sumAbsStep float64
	for i, p := range points {
		r := *p.Real
		sumReal += r
		sumAbsErr += math.Abs(r - p.Forecast)
		sumSignedErr += p.Forecast - r
		if i > 0 {
			sumAbsStep += math.Abs(r - *points[i-1].Real)
		}
	}

	stats := domain.DemandStats{
		MeanDemand:   sumReal / n,
		WindowDemand: sumReal,
		WindowSize:   len(points),
		NaiveError:   sumAbsStep / (n - 1),
		MLError:      sumAbsErr / n,
	}

	var sumSq float64
	for _, p := range points {
		d := *p.Real - stats.MeanDemand
		sumSq += d * d
	}
	stats.StdDev = math.Sqrt(sumSq / n)

	if stats.MeanDemand > 0 {
		stats.CV = stats.StdDev / stats.MeanDemand
		stats.Bias = (sumSignedErr / n) / stats.MeanDemand
	}
	stats.FVA = ForecastValueAdded(stats.NaiveError, stats.MLError)

	if sumReal > 0 {
		stats.WAPE = sumAbsErr / sumReal
	}
	stats.Accuracy = 1 - stats.WAPE
	stats.BiasDiagnosis = DiagnoseBias(stats.Bias)

	return stats, nil
}

// ForecastValueAdded is the relative improvement of the model error over the
// naive error, floored at 0. A zero naive error yields 0.
func ForecastValueAdded(naiveError, mlError float64) float64 {
	if naiveError <= 0 {
		return 0
	}
	return math.Max(0, (naiveError-mlError)/naiveError)
}

// DiagnoseBias labels a relative bias as over-, under- or balanced forecasting.
func DiagnoseBias(bias float64) domain.BiasDiagnosis {
	switch {
	case bias > biasTolerance:
		return domain.BiasOverForecast
	case bias < -biasTolerance:
		return domain.BiasUnderForecast
	default:
		return domain.BiasBalanced
	}
}
