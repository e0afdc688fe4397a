package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStockStatus(t *testing.T) {
	tests := []struct {
		label string
		want  StockStatus
		ok    bool
	}{
		{"OK", StatusOK, true},
		{" reorden ", StatusReorder, true},
		{"Crítico", StatusCritical, true},
		{"CRITICO", StatusCritical, true},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStockStatus(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}
}

func TestParseClasses(t *testing.T) {
	abc, ok := ParseABCClass("b")
	assert.True(t, ok)
	assert.Equal(t, ClassB, abc)
	_, ok = ParseABCClass("D")
	assert.False(t, ok)

	xyz, ok := ParseXYZClass(" z")
	assert.True(t, ok)
	assert.Equal(t, ClassZ, xyz)
	_, ok = ParseXYZClass("")
	assert.False(t, ok)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestSegmentKey(t *testing.T) {
	assert.Equal(t, "BY", SegmentKey(ClassB, ClassY))
}

func TestEvaluationSku(t *testing.T) {
	eval := &Evaluation{Skus: []SkuMetrics{{ID: "a"}, {ID: "b"}}}
	m, ok := eval.Sku("b")
	assert.True(t, ok)
	assert.Equal(t, "b", m.ID)
	_, ok = eval.Sku("c")
	assert.False(t, ok)
}
