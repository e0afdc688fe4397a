package planning

import "github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"

func ptr(v float64) *float64 { return &v }

// history builds realized points from reals/forecasts, followed by
// forecastOnly periods without observed demand.
func history(reals, forecasts []float64, forecastOnly int) []domain.HistoryPoint {
	points := make([]domain.HistoryPoint, 0, len(reals)+forecastOnly)
	for i := range reals {
		points = append(points, domain.HistoryPoint{Period: i + 1, Real: ptr(reals[i]), Forecast: forecasts[i]})
	}
	for i := 0; i < forecastOnly; i++ {
		points = append(points, domain.HistoryPoint{Period: len(reals) + i + 1, Forecast: 100})
	}
	return points
}

// alternating returns 12 periods of 90/110 demand forecast flat at 100:
// mean 100, std 10, naive error 20, ml error 10.
func alternating() []domain.HistoryPoint {
	reals := make([]float64, 12)
	forecasts := make([]float64, 12)
	for i := range reals {
		reals[i] = 90
		if i%2 == 1 {
			reals[i] = 110
		}
		forecasts[i] = 100
	}
	return history(reals, forecasts, 2)
}

func fixtureSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Skus: []domain.SkuRecord{
			{
				ID: "SKU-A", Category: "Food", Supplier: "Acme",
				UnitCost: 50, Stock: 30, LeadTimeDays: 15, MOQ: 10,
				History: alternating(),
				Lots: []domain.Lot{
					{ID: "L2", Quantity: 10, DaysLeft: 200},
					{ID: "L1", Quantity: 20, DaysLeft: 40},
				},
			},
			{
				ID: "SKU-B", Category: "Food", Supplier: "Acme",
				UnitCost: 10, Stock: 5, LeadTimeDays: 30, MOQ: 10,
				History: alternating(),
			},
			{
				ID: "SKU-C", Category: "Cleaning", Supplier: "Beta",
				UnitCost: 20, Stock: 1000, LeadTimeDays: 15, MOQ: 50,
				History: alternating(),
			},
			{
				ID: "SKU-D", Category: "Cleaning", Supplier: "Beta",
				UnitCost: 20, Stock: 10, LeadTimeDays: 15, MOQ: 10,
				History: history([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 0),
			},
			{
				ID: "SKU-A", Category: "Food", Supplier: "Acme",
				UnitCost: 1, Stock: 1, LeadTimeDays: 1, MOQ: 1,
				History: alternating(),
			},
			{
				ID: "SKU-E", Category: "Cleaning", Supplier: "Beta",
				UnitCost: 5, Stock: 0, LeadTimeDays: 15, MOQ: 0,
				History: alternating(),
			},
		},
		Suppliers: []domain.SupplierRecord{
			{Name: "Acme", Reliability: 0.95, Quality: 0.98, AvgLeadTimeDays: 15},
		},
	}
}
