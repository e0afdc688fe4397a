package postgres

import (
	"database/sql"
	"testing"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSnapshot(t *testing.T) {
	skus := []skuRow{
		{Position: 0, ID: "B", Category: "Food", Supplier: "Acme", UnitCost: 2, Stock: 10, LeadTimeDays: 15, MOQ: 5},
		{Position: 1, ID: "A", Category: "Drinks", Supplier: "Beta", UnitCost: 1, Stock: 3, LeadTimeDays: 7, MOQ: 10},
	}
	history := []historyRow{
		{SkuPosition: 0, Position: 0, Period: 1, Real: sql.NullFloat64{Float64: 9, Valid: true}, Forecast: 8},
		{SkuPosition: 1, Position: 0, Period: 1, Real: sql.NullFloat64{Float64: 4, Valid: true}, Forecast: 5},
		{SkuPosition: 1, Position: 1, Period: 2, Forecast: 6},
	}
	lots := []lotRow{{SkuPosition: 0, Position: 0, LotID: "L1", Quantity: 10, DaysLeft: 30}}
	suppliers := []domain.SupplierRecord{{Name: "Acme"}}

	snapshot := assembleSnapshot(skus, history, lots, suppliers)

	require.Len(t, snapshot.Skus, 2)
	assert.Equal(t, "B", snapshot.Skus[0].ID, "row order is preserved")
	assert.Equal(t, "A", snapshot.Skus[1].ID)

	a := snapshot.Skus[1]
	require.Len(t, a.History, 2)
	require.NotNil(t, a.History[0].Real)
	assert.Equal(t, 4.0, *a.History[0].Real)
	assert.Nil(t, a.History[1].Real)
	assert.Empty(t, a.Lots)

	b := snapshot.Skus[0]
	require.Len(t, b.Lots, 1)
	assert.Equal(t, domain.Lot{ID: "L1", Quantity: 10, DaysLeft: 30}, b.Lots[0])
	assert.Equal(t, suppliers, snapshot.Suppliers)
}

func TestFlattenSnapshot_RoundTrip(t *testing.T) {
	observed := 12.0
	original := domain.Snapshot{
		Skus: []domain.SkuRecord{
			{ID: "SKU-2", Category: "Food", Supplier: "Zeta", UnitCost: 3, Stock: 20, LeadTimeDays: 10, MOQ: 6,
				History: []domain.HistoryPoint{{Period: 2, Real: &observed, Forecast: 11}, {Period: 1, Forecast: 9}},
				Lots:    []domain.Lot{{ID: "L9", Quantity: 5, DaysLeft: 90}, {ID: "L1", Quantity: 5, DaysLeft: 10}, {ID: "L1", Quantity: 2, DaysLeft: 40}}},
			{ID: "SKU-1", Category: "Drinks", Supplier: "Acme", UnitCost: 1, Stock: 4, LeadTimeDays: 7, MOQ: 10},
			{ID: "SKU-2", Category: "Food", Supplier: "Zeta", UnitCost: 5, Stock: 1, LeadTimeDays: 10, MOQ: 6},
		},
		Suppliers: []domain.SupplierRecord{{Name: "Zeta", Reliability: 0.8}, {Name: "Acme", Reliability: 0.9}},
	}

	skus, history, lots := flattenSnapshot(original)
	require.Len(t, skus, 3)
	assert.Equal(t, "SKU-2", skus[2].ID, "repeated sku ids are stored, not dropped")
	require.Len(t, lots, 3)
	assert.Equal(t, 1, lots[1].Position)
	assert.Equal(t, 2, lots[2].Position, "repeated lot ids get distinct keys")

	reloaded := assembleSnapshot(skus, history, lots, original.Suppliers)
	assert.Equal(t, original, reloaded)

	cfg := planning.DefaultConfig()
	before, err := planning.Fingerprint(original, cfg)
	require.NoError(t, err)
	after, err := planning.Fingerprint(reloaded, cfg)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNullableFloat(t *testing.T) {
	assert.False(t, nullableFloat(nil).Valid)
	v := 3.5
	got := nullableFloat(&v)
	assert.True(t, got.Valid)
	assert.Equal(t, 3.5, got.Float64)
}
