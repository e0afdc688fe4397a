// internal/domain/models.go
package domain

import "github.com/shopspring/decimal"

// HistoryPoint is one period of demand history. Real is nil for
// forecast-only periods.
type HistoryPoint struct {
	Period   int      `json:"period" db:"period"`
	Real     *float64 `json:"real,omitempty" db:"realized"`
	Forecast float64  `json:"forecast" db:"forecast"`
}

// Realized reports whether the period carries observed demand.
func (h HistoryPoint) Realized() bool {
	return h.Real != nil
}

// Lot is a quantity of stock sharing one expiry.
type Lot struct {
	ID       string  `json:"id" db:"lot_id"`
	Quantity float64 `json:"quantity" db:"quantity"`
	DaysLeft int     `json:"days_left" db:"days_left"`
}

// SkuRecord is the immutable per-SKU input of an evaluation cycle.
type SkuRecord struct {
	ID           string         `json:"id" db:"id"`
	Category     string         `json:"category" db:"category"`
	Supplier     string         `json:"supplier" db:"supplier"`
	UnitCost     float64        `json:"unit_cost" db:"unit_cost"`
	Stock        float64        `json:"stock" db:"stock"`
	LeadTimeDays float64        `json:"lead_time_days" db:"lead_time_days"`
	MOQ          int            `json:"moq" db:"moq"`
	History      []HistoryPoint `json:"history"`
	Lots         []Lot          `json:"lots"`
}

// SupplierRecord holds supplier terms and scores.
type SupplierRecord struct {
	Name            string  `json:"name" db:"name"`
	Reliability     float64 `json:"reliability" db:"reliability"`
	Quality         float64 `json:"quality" db:"quality"`
	AvgLeadTimeDays float64 `json:"avg_lead_time_days" db:"avg_lead_time_days"`
}

// Snapshot is everything one evaluation reads.
type Snapshot struct {
	Skus      []SkuRecord      `json:"skus"`
	Suppliers []SupplierRecord `json:"suppliers"`
}

// DemandStats holds the forecast-quality metrics of a SKU.
type DemandStats struct {
	MeanDemand    float64       `json:"mean_demand"`
	StdDev        float64       `json:"std_dev"`
	CV            float64       `json:"cv"`
	NaiveError    float64       `json:"naive_error"`
	MLError       float64       `json:"ml_error"`
	WAPE          float64       `json:"wape"`
	Accuracy      float64       `json:"accuracy"`
	FVA           float64       `json:"fva"`
	Bias          float64       `json:"bias"`
	BiasDiagnosis BiasDiagnosis `json:"bias_diagnosis"`
	WindowDemand  float64       `json:"window_demand"`
	WindowSize    int           `json:"window_size"`
}

// Policy holds the inventory policy derived for a SKU.
type Policy struct {
	SafetyStock     float64     `json:"ss"`
	ReorderPoint    float64     `json:"rop"`
	LeadTimeDemand  float64     `json:"lead_time_demand"`
	LeadTimePeriods float64     `json:"lead_time_periods"`
	Status          StockStatus `json:"status"`
}

// LotRisk is one lot in FEFO order with its risk verdict.
type LotRisk struct {
	ID        string  `json:"id"`
	Quantity  float64 `json:"quantity"`
	DaysLeft  int     `json:"days_left"`
	AtRisk    bool    `json:"at_risk"`
	AtRiskQty float64 `json:"at_risk_qty"`
}

// ExpiryRisk is the FEFO exposure of a SKU.
type ExpiryRisk struct {
	AtRiskQty     float64         `json:"ssl_qty"`
	AtRiskValue   decimal.Decimal `json:"ssl_value"`
	UsableQty     float64         `json:"usable_qty"`
	LotTotal      float64         `json:"lot_total"`
	LotMismatch   bool            `json:"lot_mismatch"`
	AvgDaysLeft   float64         `json:"avg_days_left"`
	EarliestLotID string          `json:"earliest_lot_id,omitempty"`
	Lots          []LotRisk       `json:"lots"`
}

// Projection traces stock across the replenishment lead time.
type Projection struct {
	Current     float64 `json:"current"`
	AtArrival   float64 `json:"at_arrival"`
	PostArrival float64 `json:"post_arrival"`
}

// Suggestion is a MOQ-rounded purchase proposal.
type Suggestion struct {
	Shortfall  float64         `json:"shortfall"`
	Quantity   int             `json:"quantity"`
	Cost       decimal.Decimal `json:"cost"`
	Projection Projection      `json:"projection"`
}

// SkuMetrics is the full derived record of a SKU.
type SkuMetrics struct {
	ID             string          `json:"id"`
	Category       string          `json:"category"`
	Supplier       string          `json:"supplier"`
	UnitCost       float64         `json:"unit_cost"`
	Stock          float64         `json:"stock"`
	LeadTimeDays   float64         `json:"lead_time_days"`
	MOQ            int             `json:"moq"`
	Demand         DemandStats     `json:"demand"`
	Policy         Policy          `json:"policy"`
	AnnualValue    decimal.Decimal `json:"annual_value"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	ABC            ABCClass        `json:"abc"`
	XYZ            XYZClass        `json:"xyz"`
	Segment        string          `json:"segment"`
	Expiry         ExpiryRisk      `json:"expiry"`
	Suggestion     *Suggestion     `json:"suggestion,omitempty"`
}

// NeedsReplenishment reports whether stock is at or below the reorder point.
func (m SkuMetrics) NeedsReplenishment() bool {
	return m.Policy.Status != StatusOK
}

// Diagnostic reports a per-SKU problem found during evaluation.
type Diagnostic struct {
	SkuID    string `json:"sku_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Excluded bool   `json:"excluded"`
}

// SegmentCell is one box of the ABC/XYZ matrix.
type SegmentCell struct {
	Segment string          `json:"segment"`
	ABC     ABCClass        `json:"abc"`
	XYZ     XYZClass        `json:"xyz"`
	Count   int             `json:"count"`
	Value   decimal.Decimal `json:"value"`
}

// ClassShare is the value concentration of one ABC class.
type ClassShare struct {
	ABC   ABCClass        `json:"abc"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
	Share float64         `json:"share"`
}

// SegmentationMatrix is the 3x3 portfolio view.
type SegmentationMatrix struct {
	Policy     string          `json:"policy"`
	Cells      []SegmentCell   `json:"cells"`
	Classes    []ClassShare    `json:"classes"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ReplenishmentLine is one SKU that needs ordering.
type ReplenishmentLine struct {
	SkuID        string          `json:"sku_id"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
	Status       StockStatus     `json:"status"`
	Stock        float64         `json:"stock"`
	ReorderPoint float64         `json:"rop"`
	SafetyStock  float64         `json:"ss"`
	MOQ          int             `json:"moq"`
	Shortfall    float64         `json:"shortfall"`
	Quantity     int             `json:"quantity"`
	UnitCost     float64         `json:"unit_cost"`
	Cost         decimal.Decimal `json:"cost"`
	Projection   Projection      `json:"projection"`
}

// ReplenishmentPlan lists the purchase suggestions of a cycle.
type ReplenishmentPlan struct {
	Lines           []ReplenishmentLine `json:"lines"`
	TotalInvestment decimal.Decimal     `json:"total_investment"`
}

// SupplierRollup aggregates SKU metrics per supplier.
type SupplierRollup struct {
	Name             string          `json:"name"`
	Items            int             `json:"items"`
	TotalSpend       decimal.Decimal `json:"total_spend"`
	MeanError        float64         `json:"mean_error"`
	Precision        float64         `json:"precision"`
	CriticalItems    int             `json:"critical_items"`
	CriticalFraction float64         `json:"critical_fraction"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	Reliability      float64         `json:"reliability"`
	Quality          float64         `json:"quality"`
	AvgLeadTimeDays  float64         `json:"avg_lead_time_days"`
}

// Alert is one entry of the action feed.
type Alert struct {
	ID          string          `json:"id"`
	Category    AlertCategory   `json:"category"`
	Priority    Priority        `json:"priority"`
	Reference   string          `json:"reference"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Impact      decimal.Decimal `json:"impact"`
	HasImpact   bool            `json:"has_impact"`
	Target      string          `json:"target"`
}

// AlertFeed is the ranked feed with its loss totals.
type AlertFeed struct {
	Alerts             []Alert         `json:"alerts"`
	StockoutLoss       decimal.Decimal `json:"stockout_loss"`
	ExpiryLoss         decimal.Decimal `json:"expiry_loss"`
	TotalPotentialLoss decimal.Decimal `json:"total_potential_loss"`
}

// CategoryRollup is inventory value and accuracy for a product category.
type CategoryRollup struct {
	Category       string          `json:"category"`
	Items          int             `json:"items"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	Accuracy       float64         `json:"accuracy"`
}

// Overview is the portfolio-level headline view.
type Overview struct {
	Skus                int              `json:"skus"`
	TotalInventoryValue decimal.Decimal  `json:"total_inventory_value"`
	GlobalAccuracy      float64          `json:"global_accuracy"`
	CriticalCount       int              `json:"critical_count"`
	ReorderCount        int              `json:"reorder_count"`
	AtRiskValue         decimal.Decimal  `json:"at_risk_value"`
	SkusWithExpiryRisk  int              `json:"skus_with_expiry_risk"`
	Categories          []CategoryRollup `json:"categories"`
	BestSupplier        string           `json:"best_supplier,omitempty"`
	RiskiestSupplier    string           `json:"riskiest_supplier,omitempty"`
}

// Evaluation is the complete output of one engine run.
type Evaluation struct {
	ID            string             `json:"id"`
	Fingerprint   string             `json:"fingerprint"`
	Skus          []SkuMetrics       `json:"skus"`
	Diagnostics   []Diagnostic       `json:"diagnostics"`
	Segmentation  SegmentationMatrix `json:"segmentation"`
	Replenishment ReplenishmentPlan  `json:"replenishment"`
	Suppliers     []SupplierRollup   `json:"suppliers"`
	Alerts        AlertFeed          `json:"alerts"`
	Overview      Overview           `json:"overview"`
}

// Sku returns the metrics of the given SKU id.
func (e *Evaluation) Sku(id string) (SkuMetrics, bool) {
	for _, m := range e.Skus {
		if m.ID == id {
			return m, true
		}
	}
	return SkuMetrics{}, false
}
