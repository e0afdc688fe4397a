package planning

import (
	"fmt"
	"sort"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Alert id prefixes.
const (
	StockoutAlertPrefix = "Q-"
	ExpiryAlertPrefix   = "V-"
	SupplierAlertPrefix = "P-"
)

// Views an alert points the user to.
const (
	TargetPurchasing = "purchasing"
	TargetInventory  = "inventory"
	TargetSuppliers  = "suppliers"
)

var daysPerYear = decimal.NewFromInt(365)

// StockoutImpact is the expected lost sales while waiting for a replenishment:
// annual value spread per day times the lead time.
func StockoutImpact(m domain.SkuMetrics) decimal.Decimal {
	return m.AnnualValue.Div(daysPerYear).Mul(decimal.NewFromFloat(m.LeadTimeDays))
}

func stockoutAlert(m domain.SkuMetrics) domain.Alert {
	impact := StockoutImpact(m)
	return domain.Alert{
		ID:        StockoutAlertPrefix + m.ID,
		Category:  domain.AlertStockout,
		Priority:  domain.PriorityHigh,
		Reference: m.ID,
		Title:     fmt.Sprintf("Stockout risk on %s", m.ID),
		Description: fmt.Sprintf("Stock %.0f is at or below safety stock %.1f (rop %.1f). Expected lost sales over %.0f days of lead time: %s.",
			m.Stock, m.Policy.SafetyStock, m.Policy.ReorderPoint, m.LeadTimeDays, impact.StringFixed(2)),
		Impact:    impact,
		HasImpact: true,
		Target:    TargetPurchasing,
	}
}

func expiryAlert(m domain.SkuMetrics) domain.Alert {
	return domain.Alert{
		ID:        ExpiryAlertPrefix + m.ID,
		Category:  domain.AlertExpiry,
		Priority:  domain.PriorityMedium,
		Reference: m.ID,
		Title:     fmt.Sprintf("Expiry risk on %s", m.ID),
		Description: fmt.Sprintf("%.0f units across %d lots may expire before they sell, worth %s.",
			m.Expiry.AtRiskQty, countAtRiskLots(m.Expiry), m.Expiry.AtRiskValue.StringFixed(2)),
		Impact:    m.Expiry.AtRiskValue,
		HasImpact: true,
		Target:    TargetInventory,
	}
}

func supplierAlert(r domain.SupplierRollup) domain.Alert {
	return domain.Alert{
		ID:        SupplierAlertPrefix + r.Name,
		Category:  domain.AlertSupplier,
		Priority:  domain.PriorityLow,
		Reference: r.Name,
		Title:     fmt.Sprintf("Supplier risk: %s", r.Name),
		Description: fmt.Sprintf("%d of %d items are critical (%.0f%%), forecast precision %.1f%%.",
			r.CriticalItems, r.Items, r.CriticalFraction*100, r.Precision*100),
		Impact: decimal.Zero,
		Target: TargetSuppliers,
	}
}

func countAtRiskLots(risk domain.ExpiryRisk) int {
	n := 0
	for _, lot := range risk.Lots {
		if lot.AtRisk {
			n++
		}
	}
	return n
}

// topByImpact keeps the n alerts with the largest impact, ties broken by
// reference. A negative n keeps none.
func topByImpact(alerts []domain.Alert, n int) []domain.Alert {
	sort.SliceStable(alerts, func(i, j int) bool {
		if !alerts[i].Impact.Equal(alerts[j].Impact) {
			return alerts[i].Impact.GreaterThan(alerts[j].Impact)
		}
		return alerts[i].Reference < alerts[j].Reference
	})
	if n < 0 {
		n = 0
	}
	if len(alerts) > n {
		alerts = alerts[:n]
	}
	return alerts
}

// BuildAlertFeed fuses stockout, expiry and supplier signals into one ranked
// feed with loss totals. Totals cover the alerts present in the feed.
func BuildAlertFeed(skus []domain.SkuMetrics, suppliers []domain.SupplierRollup, cfg Config) domain.AlertFeed {
	var stockouts, expiries []domain.Alert
	for _, m := range skus {
		if m.Policy.Status == domain.StatusCritical {
			stockouts = append(stockouts, stockoutAlert(m))
		}
		if m.Expiry.AtRiskQty > 0 {
			expiries = append(expiries, expiryAlert(m))
		}
	}

	candidates := make([]domain.Alert, 0, cfg.TopNStockoutAlerts+cfg.TopNExpiryAlerts+len(suppliers))
	candidates = append(candidates, topByImpact(stockouts, cfg.TopNStockoutAlerts)...)
	candidates = append(candidates, topByImpact(expiries, cfg.TopNExpiryAlerts)...)
	for _, r := range suppliers {
		if r.RiskLevel == domain.RiskHigh {
			candidates = append(candidates, supplierAlert(r))
		}
	}

	feed := domain.AlertFeed{
		Alerts:             make([]domain.Alert, 0, len(candidates)),
		StockoutLoss:       decimal.Zero,
		ExpiryLoss:         decimal.Zero,
		TotalPotentialLoss: decimal.Zero,
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, a := range candidates {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		feed.Alerts = append(feed.Alerts, a)

		switch a.Category {
		case domain.AlertStockout:
			feed.StockoutLoss = feed.StockoutLoss.Add(a.Impact)
		case domain.AlertExpiry:
			feed.ExpiryLoss = feed.ExpiryLoss.Add(a.Impact)
		}
	}
	feed.TotalPotentialLoss = feed.StockoutLoss.Add(feed.ExpiryLoss)

	SortAlerts(feed.Alerts)
	return feed
}

// SortAlerts orders alerts by priority, then impact descending, then reference.
func SortAlerts(alerts []domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.Impact.Equal(b.Impact) {
			return a.Impact.GreaterThan(b.Impact)
		}
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		return a.ID < b.ID
	})
}

// FilterAlerts returns the alerts of one category, or all of them when
// category is empty.
func FilterAlerts(alerts []domain.Alert, category domain.AlertCategory) []domain.Alert {
	if category == "" {
		return alerts
	}
	filtered := make([]domain.Alert, 0)
	for _, a := range alerts {
		if a.Category == category {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
