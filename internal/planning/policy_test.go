package planning

import (
	"testing"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestInventoryCalculator_WorkedExample(t *testing.T) {
	calc := NewInventoryCalculator(1.65, 30)
	stats := domain.DemandStats{MeanDemand: 100, CV: 0.3}

	policy := calc.Calculate(30, 15, stats)

	assert.InDelta(t, 35.0, policy.SafetyStock, 0.01)
	assert.InDelta(t, 85.0, policy.ReorderPoint, 0.01)
	assert.InDelta(t, 50.0, policy.LeadTimeDemand, 1e-9)
	assert.InDelta(t, 0.5, policy.LeadTimePeriods, 1e-9)
	assert.Equal(t, domain.StatusCritical, policy.Status)
}

func TestInventoryCalculator_Statuses(t *testing.T) {
	calc := NewInventoryCalculator(1.65, 30)
	stats := domain.DemandStats{MeanDemand: 100, CV: 0.3}

	tests := []struct {
		stock float64
		want  domain.StockStatus
	}{
		{0, domain.StatusCritical},
		{36, domain.StatusReorder},
		{85, domain.StatusReorder},
		{86, domain.StatusOK},
	}
	for _, tt := range tests {
		policy := calc.Calculate(tt.stock, 15, stats)
		assert.Equal(t, tt.want, policy.Status, "stock %v", tt.stock)
		assert.GreaterOrEqual(t, policy.ReorderPoint, policy.SafetyStock)
	}
}

func TestInventoryCalculator_ZeroLeadTime(t *testing.T) {
	calc := NewInventoryCalculator(1.65, 30)
	policy := calc.Calculate(0, 0, domain.DemandStats{MeanDemand: 100, CV: 0.3})

	assert.Equal(t, 0.0, policy.SafetyStock)
	assert.Equal(t, 0.0, policy.ReorderPoint)
	assert.Equal(t, domain.StatusCritical, policy.Status)
}

func TestClassifyStock_BoundariesAreInclusive(t *testing.T) {
	assert.Equal(t, domain.StatusCritical, ClassifyStock(10, 10, 20))
	assert.Equal(t, domain.StatusReorder, ClassifyStock(20, 10, 20))
	assert.Equal(t, domain.StatusOK, ClassifyStock(20.001, 10, 20))
}
