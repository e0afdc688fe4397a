package planning

import (
	"sort"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/shopspring/decimal"
)

type supplierAccumulator struct {
	rollup      domain.SupplierRollup
	errorSum    float64
	leadTimeSum float64
}

// RollupSuppliers groups SKU metrics by supplier, sorted by name. Supplier
// terms come from records when one matches; otherwise the average lead time
// falls back to the mean of the supplier's SKUs.
func RollupSuppliers(skus []domain.SkuMetrics, records []domain.SupplierRecord, criticalFraction float64) []domain.SupplierRollup {
	terms := make(map[string]domain.SupplierRecord, len(records))
	for _, rec := range records {
		if _, seen := terms[rec.Name]; !seen {
			terms[rec.Name] = rec
		}
	}

	groups := make(map[string]*supplierAccumulator)
	for _, m := range skus {
		acc, ok := groups[m.Supplier]
		if !ok {
			acc = &supplierAccumulator{rollup: domain.SupplierRollup{Name: m.Supplier, TotalSpend: decimal.Zero}}
			groups[m.Supplier] = acc
		}
		acc.rollup.Items++
		acc.rollup.TotalSpend = acc.rollup.TotalSpend.Add(m.AnnualValue)
		acc.errorSum += m.Demand.WAPE
		acc.leadTimeSum += m.LeadTimeDays
		if m.Policy.Status == domain.StatusCritical {
			acc.rollup.CriticalItems++
		}
	}

	rollups := make([]domain.SupplierRollup, 0, len(groups))
	for name, acc := range groups {
		r := acc.rollup
		items := float64(r.Items)
		r.MeanError = acc.errorSum / items
		r.Precision = 1 - r.MeanError
		r.CriticalFraction = float64(r.CriticalItems) / items
		r.RiskLevel = domain.RiskLow
		if r.CriticalFraction > criticalFraction {
			r.RiskLevel = domain.RiskHigh
		}

		if rec, ok := terms[name]; ok {
			r.Reliability = rec.Reliability
			r.Quality = rec.Quality
			r.AvgLeadTimeDays = rec.AvgLeadTimeDays
		} else {
			r.AvgLeadTimeDays = acc.leadTimeSum / items
		}
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Name < rollups[j].Name
	})
	return rollups
}
