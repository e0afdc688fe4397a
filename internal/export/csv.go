package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
)

var skuHeaders = []string{
	"sku", "category", "supplier", "status", "abc", "xyz", "segment",
	"stock", "mean_demand", "cv", "wape", "accuracy", "fva", "bias", "bias_diagnosis",
	"ss", "rop", "annual_value", "inventory_value",
	"ssl_qty", "ssl_value", "lot_mismatch",
	"moq", "suggested_qty", "suggested_cost",
}

var planHeaders = []string{
	"sku", "category", "supplier", "status", "stock", "ss", "rop", "moq",
	"shortfall", "quantity", "unit_cost", "cost", "stock_at_arrival", "stock_after_arrival",
}

// WriteSkuMetrics writes one row per evaluated SKU.
func WriteSkuMetrics(w io.Writer, skus []domain.SkuMetrics) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(skuHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, m := range skus {
		qty, cost := "", ""
		if m.Suggestion != nil {
			qty = strconv.Itoa(m.Suggestion.Quantity)
			cost = m.Suggestion.Cost.StringFixed(2)
		}

		record := []string{
			m.ID, m.Category, m.Supplier, string(m.Policy.Status), string(m.ABC), string(m.XYZ), m.Segment,
			formatFloat(m.Stock, 2),
			formatFloat(m.Demand.MeanDemand, 2),
			formatFloat(m.Demand.CV, 4),
			formatFloat(m.Demand.WAPE, 4),
			formatFloat(m.Demand.Accuracy, 4),
			formatFloat(m.Demand.FVA, 4),
			formatFloat(m.Demand.Bias, 4),
			string(m.Demand.BiasDiagnosis),
			formatFloat(m.Policy.SafetyStock, 2),
			formatFloat(m.Policy.ReorderPoint, 2),
			m.AnnualValue.StringFixed(2),
			m.InventoryValue.StringFixed(2),
			formatFloat(m.Expiry.AtRiskQty, 2),
			m.Expiry.AtRiskValue.StringFixed(2),
			strconv.FormatBool(m.Expiry.LotMismatch),
			strconv.Itoa(m.MOQ),
			qty,
			cost,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write sku %s: %w", m.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteReplenishmentPlan writes one row per purchase suggestion.
func WriteReplenishmentPlan(w io.Writer, plan domain.ReplenishmentPlan) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(planHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, line := range plan.Lines {
		record := []string{
			line.SkuID, line.Category, line.Supplier, string(line.Status),
			formatFloat(line.Stock, 2),
			formatFloat(line.SafetyStock, 2),
			formatFloat(line.ReorderPoint, 2),
			strconv.Itoa(line.MOQ),
			formatFloat(line.Shortfall, 2),
			strconv.Itoa(line.Quantity),
			formatFloat(line.UnitCost, 2),
			line.Cost.StringFixed(2),
			formatFloat(line.Projection.AtArrival, 2),
			formatFloat(line.Projection.PostArrival, 2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write plan line %s: %w", line.SkuID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(roundFloat(v, decimals), 'f', -1, 64)
}
