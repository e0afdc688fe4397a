package planning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
)

// evaluationNamespace scopes name-based evaluation ids.
var evaluationNamespace = uuid.MustParse("6f1c2a4e-3b7d-4f0a-9c55-2d8e7a1b9f30")

// Fingerprint hashes a snapshot together with the configuration that will
// evaluate it. Equal inputs always produce the same fingerprint.
func Fingerprint(snapshot domain.Snapshot, cfg Config) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(cfg); err != nil {
		return "", errors.Wrap(err, "encode config")
	}
	if err := enc.Encode(canonicalSnapshot(snapshot)); err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalSnapshot treats missing and empty lists alike, so a snapshot that
// went through storage hashes the same as the one that was saved.
func canonicalSnapshot(snapshot domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{
		Skus:      make([]domain.SkuRecord, len(snapshot.Skus)),
		Suppliers: snapshot.Suppliers,
	}
	if out.Suppliers == nil {
		out.Suppliers = []domain.SupplierRecord{}
	}
	for i, sku := range snapshot.Skus {
		if sku.History == nil {
			sku.History = []domain.HistoryPoint{}
		}
		if sku.Lots == nil {
			sku.Lots = []domain.Lot{}
		}
		out.Skus[i] = sku
	}
	return out
}

// EvaluationID derives a stable UUID from a fingerprint.
func EvaluationID(fingerprint string) string {
	return uuid.NewSHA1(evaluationNamespace, []byte(fingerprint)).String()
}
