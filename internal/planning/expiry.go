package planning

import (
	"math"
	"sort"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const lotTolerance = 1e-9

// ExpiryAssessor measures stock that is likely to expire before it sells.
type ExpiryAssessor struct {
	policy           string
	riskDays         int
	periodLengthDays float64
}

// NewExpiryAssessor creates an assessor for the configured policy.
func NewExpiryAssessor(cfg Config) *ExpiryAssessor {
	return &ExpiryAssessor{
		policy:           cfg.ExpiryPolicy,
		riskDays:         cfg.ExpiryRiskDays,
		periodLengthDays: float64(cfg.PeriodLengthDays),
	}
}

// SortFEFO returns a copy of lots ordered by remaining shelf life, earliest
// first, ties broken by lot id.
func SortFEFO(lots []domain.Lot) []domain.Lot {
	sorted := make([]domain.Lot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DaysLeft != sorted[j].DaysLeft {
			return sorted[i].DaysLeft < sorted[j].DaysLeft
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Assess computes the FEFO exposure of a SKU. When lot quantities exceed
// on-hand stock the result is still complete, lots are taken as authoritative
// and the returned error wraps ErrInconsistentLots.
func (a *ExpiryAssessor) Assess(sku domain.SkuRecord, meanDemand float64) (domain.ExpiryRisk, error) {
	risk := domain.ExpiryRisk{
		AtRiskValue: decimal.Zero,
		Lots:        make([]domain.LotRisk, 0, len(sku.Lots)),
	}

	sorted := SortFEFO(sku.Lots)
	dailyRate := 0.0
	if a.periodLengthDays > 0 {
		dailyRate = math.Max(0, meanDemand) / a.periodLengthDays
	}

	var sellingDay, daysSum float64
	for _, lot := range sorted {
		qty := math.Max(0, lot.Quantity)
		entry := domain.LotRisk{ID: lot.ID, Quantity: qty, DaysLeft: lot.DaysLeft}

		switch a.policy {
		case ExpiryPolicyConsumption:
			// lots sell one after another at the daily rate; whatever is
			// left when a lot's shelf life ends is lost
			sellable := 0.0
			if dailyRate > 0 && sellingDay < float64(lot.DaysLeft) {
				sellable = math.Min(qty, dailyRate*(float64(lot.DaysLeft)-sellingDay))
				sellingDay += sellable / dailyRate
			}
			entry.AtRiskQty = qty - sellable
		default:
			if lot.DaysLeft < a.riskDays {
				entry.AtRiskQty = qty
			}
		}
		entry.AtRisk = entry.AtRiskQty > 0

		risk.AtRiskQty += entry.AtRiskQty
		risk.LotTotal += qty
		daysSum += float64(lot.DaysLeft)
		risk.Lots = append(risk.Lots, entry)
	}

	if len(sorted) > 0 {
		risk.AvgDaysLeft = daysSum / float64(len(sorted))
		risk.EarliestLotID = sorted[0].ID
	}
	risk.AtRiskValue = decimal.NewFromFloat(risk.AtRiskQty).Mul(decimal.NewFromFloat(sku.UnitCost))
	risk.UsableQty = math.Max(0, sku.Stock-risk.AtRiskQty)

	if risk.LotTotal > sku.Stock+lotTolerance {
		risk.LotMismatch = true
		return risk, errors.Wrapf(ErrInconsistentLots, "lots hold %v units, on-hand stock is %v", risk.LotTotal, sku.Stock)
	}

	return risk, nil
}
