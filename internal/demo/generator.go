// Package demo builds a synthetic portfolio for trying the engine out.
package demo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
)

const (
	DefaultSkus = 80

	historyPeriods  = 30
	forecastPeriods = 6
	moqFactor       = 0.5
	moqStep         = 10
)

var categories = []string{"Alimentos", "Farmacia", "Químicos", "Bebidas", "Industrial"}

var suppliers = []domain.SupplierRecord{
	{Name: "GlobalCorp", AvgLeadTimeDays: 15, Reliability: 0.95, Quality: 0.98},
	{Name: "EcoSupplies", AvgLeadTimeDays: 30, Reliability: 0.82, Quality: 0.90},
	{Name: "FastLogistics", AvgLeadTimeDays: 7, Reliability: 0.88, Quality: 0.94},
	{Name: "EuroTrade", AvgLeadTimeDays: 45, Reliability: 0.97, Quality: 0.99},
}

type Options struct {
	Seed int64
	Skus int
}

// Generate returns a snapshot that is identical for identical options.
func Generate(opts Options) domain.Snapshot {
	n := opts.Skus
	if n <= 0 {
		n = DefaultSkus
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	snapshot := domain.Snapshot{
		Skus:      make([]domain.SkuRecord, 0, n),
		Suppliers: append([]domain.SupplierRecord(nil), suppliers...),
	}
	for i := 0; i < n; i++ {
		snapshot.Skus = append(snapshot.Skus, generateSku(rng, i))
	}
	return snapshot
}

func generateSku(rng *rand.Rand, i int) domain.SkuRecord {
	supplier := suppliers[i%len(suppliers)]
	cost := math.Round((rng.Float64()*350+15)*100) / 100
	stock := float64(rng.Intn(500))

	history := make([]domain.HistoryPoint, historyPeriods)
	realized := historyPeriods - forecastPeriods
	var recent float64
	for m := range history {
		base := 100 + math.Sin(float64(m)/2)*40
		point := domain.HistoryPoint{Period: m + 1, Forecast: math.Floor(base * 0.95)}
		if m < realized {
			v := math.Max(0, math.Floor(base+rng.Float64()*30))
			point.Real = &v
			if m >= realized-12 {
				recent += v
			}
		}
		history[m] = point
	}
	mean := recent / 12

	return domain.SkuRecord{
		ID:           fmt.Sprintf("SKU-%d", 3000+i),
		Category:     categories[i%len(categories)],
		Supplier:     supplier.Name,
		UnitCost:     cost,
		Stock:        stock,
		LeadTimeDays: supplier.AvgLeadTimeDays,
		MOQ:          int(math.Ceil(mean*moqFactor/moqStep)) * moqStep,
		History:      history,
		Lots: []domain.Lot{
			{ID: "L-001", Quantity: math.Floor(stock * 0.6), DaysLeft: rng.Intn(150)},
			{ID: "L-002", Quantity: math.Floor(stock * 0.4), DaysLeft: rng.Intn(300)},
		},
	}
}
