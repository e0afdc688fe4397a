package planning

import (
	"sort"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/shopspring/decimal"
)

// AnnualValue annualizes the window demand at unit cost. For monthly buckets
// and a 12 period window the factor is exactly 1.
func AnnualValue(stats domain.DemandStats, unitCost float64, cfg Config) decimal.Decimal {
	if stats.WindowSize == 0 {
		return decimal.Zero
	}
	value := decimal.NewFromFloat(stats.WindowDemand).Mul(decimal.NewFromFloat(unitCost))
	factor := cfg.periodsPerYear() / float64(stats.WindowSize)
	if factor == 1 {
		return value
	}
	return value.Mul(decimal.NewFromFloat(factor))
}

// ClassifyXYZ buckets a coefficient of variation.
func ClassifyXYZ(cv, stableCV, variableCV float64) domain.XYZClass {
	switch {
	case cv < stableCV:
		return domain.ClassX
	case cv < variableCV:
		return domain.ClassY
	default:
		return domain.ClassZ
	}
}

// ClassifyABCFixed applies absolute cut points to an annual value.
func ClassifyABCFixed(value decimal.Decimal, high, low float64) domain.ABCClass {
	switch {
	case value.GreaterThan(decimal.NewFromFloat(high)):
		return domain.ClassA
	case value.GreaterThan(decimal.NewFromFloat(low)):
		return domain.ClassB
	default:
		return domain.ClassC
	}
}

// ClassifyABC assigns classes to every SKU under the configured policy. The
// result is aligned with skus.
func ClassifyABC(skus []domain.SkuMetrics, cfg Config) []domain.ABCClass {
	classes := make([]domain.ABCClass, len(skus))
	if cfg.ABCPolicy != ABCPolicyPareto {
		for i, m := range skus {
			classes[i] = ClassifyABCFixed(m.AnnualValue, cfg.ABCHighThreshold, cfg.ABCLowThreshold)
		}
		return classes
	}

	order := make([]int, len(skus))
	total := decimal.Zero
	for i, m := range skus {
		order[i] = i
		total = total.Add(m.AnnualValue)
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := skus[order[a]].AnnualValue, skus[order[b]].AnnualValue
		if !va.Equal(vb) {
			return va.GreaterThan(vb)
		}
		return skus[order[a]].ID < skus[order[b]].ID
	})

	cutA := decimal.NewFromFloat(cfg.ABCParetoA)
	cutB := decimal.NewFromFloat(cfg.ABCParetoB)
	cumulative := decimal.Zero
	for _, idx := range order {
		if !total.IsPositive() {
			classes[idx] = domain.ClassC
			continue
		}
		// share of value held by the SKUs ranked above this one
		before := cumulative.Div(total)
		switch {
		case before.LessThan(cutA):
			classes[idx] = domain.ClassA
		case before.LessThan(cutB):
			classes[idx] = domain.ClassB
		default:
			classes[idx] = domain.ClassC
		}
		cumulative = cumulative.Add(skus[idx].AnnualValue)
	}

	return classes
}

// BuildSegmentation rolls SKUs into the 9 cell matrix plus per-class shares.
func BuildSegmentation(skus []domain.SkuMetrics, policy string) domain.SegmentationMatrix {
	cells := make(map[string]*domain.SegmentCell, 9)
	classes := make(map[domain.ABCClass]*domain.ClassShare, 3)

	matrix := domain.SegmentationMatrix{
		Policy:     policy,
		Cells:      make([]domain.SegmentCell, 0, 9),
		Classes:    make([]domain.ClassShare, 0, 3),
		TotalValue: decimal.Zero,
	}
	for _, abc := range domain.ABCClasses {
		classes[abc] = &domain.ClassShare{ABC: abc, Value: decimal.Zero}
		for _, xyz := range domain.XYZClasses {
			key := domain.SegmentKey(abc, xyz)
			cells[key] = &domain.SegmentCell{Segment: key, ABC: abc, XYZ: xyz, Value: decimal.Zero}
		}
	}

	for _, m := range skus {
		cell, ok := cells[m.Segment]
		if !ok {
			continue
		}
		cell.Count++
		cell.Value = cell.Value.Add(m.AnnualValue)
		share := classes[m.ABC]
		share.Count++
		share.Value = share.Value.Add(m.AnnualValue)
		matrix.TotalValue = matrix.TotalValue.Add(m.AnnualValue)
	}

	for _, abc := range domain.ABCClasses {
		share := classes[abc]
		if matrix.TotalValue.IsPositive() {
			share.Share = share.Value.Div(matrix.TotalValue).InexactFloat64()
		}
		matrix.Classes = append(matrix.Classes, *share)
		for _, xyz := range domain.XYZClasses {
			matrix.Cells = append(matrix.Cells, *cells[domain.SegmentKey(abc, xyz)])
		}
	}

	return matrix
}
