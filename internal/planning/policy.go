package planning

import (
	"math"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
)

// InventoryCalculator derives safety stock, reorder point and status.
type InventoryCalculator struct {
	serviceLevelZ    float64
	periodLengthDays float64
}

// NewInventoryCalculator creates a calculator for the given service level and
// history bucket length.
func NewInventoryCalculator(serviceLevelZ float64, periodLengthDays int) *InventoryCalculator {
	return &InventoryCalculator{
		serviceLevelZ:    serviceLevelZ,
		periodLengthDays: float64(periodLengthDays),
	}
}

// Calculate computes the policy for one SKU.
func (ic *InventoryCalculator) Calculate(stock, leadTimeDays float64, stats domain.DemandStats) domain.Policy {
	policy := domain.Policy{}

	// 1. Lead time expressed in history periods
	policy.LeadTimePeriods = math.Max(0, leadTimeDays) / ic.periodLengthDays

	// 2. Safety stock = z × (mean × cv) × sqrt(lead time periods)
	policy.SafetyStock = ic.serviceLevelZ * (stats.MeanDemand * stats.CV) * math.Sqrt(policy.LeadTimePeriods)

	// 3. Reorder point = lead time demand + safety stock
	policy.LeadTimeDemand = stats.MeanDemand * policy.LeadTimePeriods
	policy.ReorderPoint = policy.LeadTimeDemand + policy.SafetyStock

	// 4. Status, strictest condition first
	policy.Status = ClassifyStock(stock, policy.SafetyStock, policy.ReorderPoint)

	return policy
}

// ClassifyStock returns Crítico at or below safety stock, Reorden at or below
// the reorder point and OK otherwise.
func ClassifyStock(stock, safetyStock, reorderPoint float64) domain.StockStatus {
	switch {
	case stock <= safetyStock:
		return domain.StatusCritical
	case stock <= reorderPoint:
		return domain.StatusReorder
	default:
		return domain.StatusOK
	}
}
