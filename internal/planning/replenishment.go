package planning

import (
	"math"
	"strings"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// SuggestedQuantity rounds a shortfall up to whole MOQ lots, never proposing
// less than one lot.
func SuggestedQuantity(shortfall float64, moq int) (int, error) {
	if moq <= 0 {
		return 0, errors.Wrapf(ErrInvalidMOQ, "moq must be > 0, got %d", moq)
	}

	lot := float64(moq)
	lots := math.Ceil(math.Max(shortfall, lot) / lot)
	return int(lots) * moq, nil
}

// Suggest builds the purchase proposal for a SKU at or below its reorder
// point. It returns nil for SKUs whose status is OK.
func Suggest(sku domain.SkuRecord, policy domain.Policy) (*domain.Suggestion, error) {
	if policy.Status == domain.StatusOK {
		return nil, nil
	}

	shortfall := policy.ReorderPoint - sku.Stock
	qty, err := SuggestedQuantity(shortfall, sku.MOQ)
	if err != nil {
		return nil, err
	}

	atArrival := math.Max(0, sku.Stock-policy.LeadTimeDemand)
	return &domain.Suggestion{
		Shortfall: shortfall,
		Quantity:  qty,
		Cost:      decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromFloat(sku.UnitCost)),
		Projection: domain.Projection{
			Current:     sku.Stock,
			AtArrival:   atArrival,
			PostArrival: atArrival + float64(qty),
		},
	}, nil
}

// BuildReplenishmentPlan lists every SKU with a suggestion, in evaluation order.
func BuildReplenishmentPlan(skus []domain.SkuMetrics) domain.ReplenishmentPlan {
	plan := domain.ReplenishmentPlan{
		Lines:           make([]domain.ReplenishmentLine, 0),
		TotalInvestment: decimal.Zero,
	}

	for _, m := range skus {
		if m.Suggestion == nil {
			continue
		}
		plan.Lines = append(plan.Lines, domain.ReplenishmentLine{
			SkuID:        m.ID,
			Category:     m.Category,
			Supplier:     m.Supplier,
			Status:       m.Policy.Status,
			Stock:        m.Stock,
			ReorderPoint: m.Policy.ReorderPoint,
			SafetyStock:  m.Policy.SafetyStock,
			MOQ:          m.MOQ,
			Shortfall:    m.Suggestion.Shortfall,
			Quantity:     m.Suggestion.Quantity,
			UnitCost:     m.UnitCost,
			Cost:         m.Suggestion.Cost,
			Projection:   m.Suggestion.Projection,
		})
		plan.TotalInvestment = plan.TotalInvestment.Add(m.Suggestion.Cost)
	}

	return plan
}

// FilterPlanBySupplier narrows a plan to one supplier and recomputes the
// investment total. Suppliers match case-insensitively, as in the SKU listing.
// An empty supplier returns the plan unchanged.
func FilterPlanBySupplier(plan domain.ReplenishmentPlan, supplier string) domain.ReplenishmentPlan {
	if supplier == "" {
		return plan
	}

	filtered := domain.ReplenishmentPlan{
		Lines:           make([]domain.ReplenishmentLine, 0),
		TotalInvestment: decimal.Zero,
	}
	for _, line := range plan.Lines {
		if !strings.EqualFold(line.Supplier, supplier) {
			continue
		}
		filtered.Lines = append(filtered.Lines, line)
		filtered.TotalInvestment = filtered.TotalInvestment.Add(line.Cost)
	}
	return filtered
}
