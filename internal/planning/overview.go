package planning

import (
	"sort"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/shopspring/decimal"
)

// InventoryValue is on-hand stock valued at unit cost.
func InventoryValue(stock, unitCost float64) decimal.Decimal {
	return decimal.NewFromFloat(stock).Mul(decimal.NewFromFloat(unitCost))
}

// BuildOverview summarizes the portfolio: inventory value, forecast accuracy,
// stock status counts, expiry exposure and per-category figures.
func BuildOverview(skus []domain.SkuMetrics, suppliers []domain.SupplierRollup) domain.Overview {
	overview := domain.Overview{
		Skus:                len(skus),
		TotalInventoryValue: decimal.Zero,
		AtRiskValue:         decimal.Zero,
		Categories:          make([]domain.CategoryRollup, 0),
	}

	type categoryAcc struct {
		rollup      domain.CategoryRollup
		accuracySum float64
	}
	categories := make(map[string]*categoryAcc)

	var wapeSum float64
	for _, m := range skus {
		overview.TotalInventoryValue = overview.TotalInventoryValue.Add(m.InventoryValue)
		overview.AtRiskValue = overview.AtRiskValue.Add(m.Expiry.AtRiskValue)
		wapeSum += m.Demand.WAPE

		switch m.Policy.Status {
		case domain.StatusCritical:
			overview.CriticalCount++
		case domain.StatusReorder:
			overview.ReorderCount++
		}
		if m.Expiry.AtRiskQty > 0 {
			overview.SkusWithExpiryRisk++
		}

		acc, ok := categories[m.Category]
		if !ok {
			acc = &categoryAcc{rollup: domain.CategoryRollup{Category: m.Category, InventoryValue: decimal.Zero}}
			categories[m.Category] = acc
		}
		acc.rollup.Items++
		acc.rollup.InventoryValue = acc.rollup.InventoryValue.Add(m.InventoryValue)
		acc.accuracySum += m.Demand.Accuracy
	}

	if len(skus) > 0 {
		overview.GlobalAccuracy = 1 - wapeSum/float64(len(skus))
	}

	for _, acc := range categories {
		acc.rollup.Accuracy = acc.accuracySum / float64(acc.rollup.Items)
		overview.Categories = append(overview.Categories, acc.rollup)
	}
	sort.Slice(overview.Categories, func(i, j int) bool {
		return overview.Categories[i].Category < overview.Categories[j].Category
	})

	// suppliers arrive sorted by name, so ties resolve alphabetically
	bestPrecision := 0.0
	for _, r := range suppliers {
		if overview.BestSupplier == "" || r.Precision > bestPrecision {
			overview.BestSupplier = r.Name
			bestPrecision = r.Precision
		}
		if overview.RiskiestSupplier == "" && r.RiskLevel == domain.RiskHigh {
			overview.RiskiestSupplier = r.Name
		}
	}

	return overview
}
