package planning

import (
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
)

var (
	// ErrInsufficientHistory means fewer realized periods than the evaluation window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrInvalidMOQ means a SKU needing replenishment has MOQ <= 0.
	ErrInvalidMOQ = errors.New("invalid moq")
	// ErrInconsistentLots means lot quantities add up to more than on-hand stock.
	ErrInconsistentLots = errors.New("inconsistent lots")
	// ErrInvalidConfiguration means a configuration value is out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDuplicateSku means a SKU id appeared more than once in a snapshot.
	ErrDuplicateSku = errors.New("duplicate sku")
)

// Diagnostic codes reported per SKU.
const (
	CodeInsufficientHistory = "InsufficientHistory"
	CodeInvalidMOQ          = "InvalidMOQ"
	CodeInconsistentLots    = "InconsistentLots"
	CodeDuplicateSku        = "DuplicateSku"
	CodeUnknown             = "Unknown"
)

// ErrorCode maps an engine error to its diagnostic code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		return CodeInsufficientHistory
	case errors.Is(err, ErrInvalidMOQ):
		return CodeInvalidMOQ
	case errors.Is(err, ErrInconsistentLots):
		return CodeInconsistentLots
	case errors.Is(err, ErrDuplicateSku):
		return CodeDuplicateSku
	default:
		return CodeUnknown
	}
}

func newDiagnostic(skuID string, err error, excluded bool) domain.Diagnostic {
	return domain.Diagnostic{
		SkuID:    skuID,
		Code:     ErrorCode(err),
		Message:  err.Error(),
		Excluded: excluded,
	}
}
