package domain

import "strings"

// StockStatus is the replenishment state of a SKU.
type StockStatus string

const (
	StatusOK       StockStatus = "OK"
	StatusReorder  StockStatus = "Reorden"
	StatusCritical StockStatus = "Crítico"
)

// ABCClass is the value-based class of a SKU.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// XYZClass is the variability-based class of a SKU.
type XYZClass string

const (
	ClassX XYZClass = "X"
	ClassY XYZClass = "Y"
	ClassZ XYZClass = "Z"
)

// ABCClasses and XYZClasses list the classes in matrix order.
var (
	ABCClasses = []ABCClass{ClassA, ClassB, ClassC}
	XYZClasses = []XYZClass{ClassX, ClassY, ClassZ}
)

// SegmentKey joins both classes into the matrix key, e.g. "AX".
func SegmentKey(abc ABCClass, xyz XYZClass) string {
	return string(abc) + string(xyz)
}

// RiskLevel is the supplier risk verdict.
type RiskLevel string

const (
	RiskHigh RiskLevel = "Alto"
	RiskLow  RiskLevel = "Bajo"
)

// Priority orders the action feed.
type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baja"
)

// Rank returns the sort position of a priority, lower first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// AlertCategory groups alerts by the signal that raised them.
type AlertCategory string

const (
	AlertStockout AlertCategory = "stockout"
	AlertExpiry   AlertCategory = "expiry"
	AlertSupplier AlertCategory = "supplier"
)

// BiasDiagnosis labels systematic forecast error.
type BiasDiagnosis string

const (
	BiasOverForecast  BiasDiagnosis = "over_forecast"
	BiasUnderForecast BiasDiagnosis = "under_forecast"
	BiasBalanced      BiasDiagnosis = "balanced"
)

var stockStatusCodes = map[string]StockStatus{
	"ok":       StatusOK,
	"reorden":  StatusReorder,
	"reorder":  StatusReorder,
	"crítico":  StatusCritical,
	"critico":  StatusCritical,
	"critical": StatusCritical,
}

// ParseStockStatus returns the status for a given label (case-insensitive,
// accent-optional).
func ParseStockStatus(label string) (StockStatus, bool) {
	status, ok := stockStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// ParseABCClass returns the ABC class for a label.
func ParseABCClass(label string) (ABCClass, bool) {
	switch ABCClass(strings.ToUpper(strings.TrimSpace(label))) {
	case ClassA:
		return ClassA, true
	case ClassB:
		return ClassB, true
	case ClassC:
		return ClassC, true
	}
	return "", false
}

// ParseXYZClass returns the XYZ class for a label.
func ParseXYZClass(label string) (XYZClass, bool) {
	switch XYZClass(strings.ToUpper(strings.TrimSpace(label))) {
	case ClassX:
		return ClassX, true
	case ClassY:
		return ClassY, true
	case ClassZ:
		return ClassZ, true
	}
	return "", false
}
