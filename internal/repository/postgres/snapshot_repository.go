package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
)

// Every table is keyed by input position so a reload returns the snapshot
// exactly as saved, repeated ids included.
const schema = `
CREATE TABLE IF NOT EXISTS suppliers (
    position           INTEGER PRIMARY KEY,
    name               TEXT NOT NULL,
    reliability        DOUBLE PRECISION NOT NULL DEFAULT 0,
    quality            DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_lead_time_days DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS skus (
    position       INTEGER PRIMARY KEY,
    id             TEXT NOT NULL,
    category       TEXT NOT NULL,
    supplier       TEXT NOT NULL,
    unit_cost      DOUBLE PRECISION NOT NULL,
    stock          DOUBLE PRECISION NOT NULL,
    lead_time_days DOUBLE PRECISION NOT NULL,
    moq            INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sku_history (
    sku_position INTEGER NOT NULL REFERENCES skus(position) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    period       INTEGER NOT NULL,
    realized     DOUBLE PRECISION,
    forecast     DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (sku_position, position)
);

CREATE TABLE IF NOT EXISTS sku_lots (
    sku_position INTEGER NOT NULL REFERENCES skus(position) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    lot_id       TEXT NOT NULL,
    quantity     DOUBLE PRECISION NOT NULL,
    days_left    INTEGER NOT NULL,
    PRIMARY KEY (sku_position, position)
);
`

type skuRow struct {
	Position     int     `db:"position"`
	ID           string  `db:"id"`
	Category     string  `db:"category"`
	Supplier     string  `db:"supplier"`
	UnitCost     float64 `db:"unit_cost"`
	Stock        float64 `db:"stock"`
	LeadTimeDays float64 `db:"lead_time_days"`
	MOQ          int     `db:"moq"`
}

type historyRow struct {
	SkuPosition int             `db:"sku_position"`
	Position    int             `db:"position"`
	Period      int             `db:"period"`
	Real        sql.NullFloat64 `db:"realized"`
	Forecast    float64         `db:"forecast"`
}

type lotRow struct {
	SkuPosition int     `db:"sku_position"`
	Position    int     `db:"position"`
	LotID       string  `db:"lot_id"`
	Quantity    float64 `db:"quantity"`
	DaysLeft    int     `db:"days_left"`
}

type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository stores snapshots in the suppliers, skus, sku_history
// and sku_lots tables.
func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// EnsureSchema creates the snapshot tables when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create snapshot schema: %w", err)
	}
	return nil
}

func (r *snapshotRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	if err := r.db.acquire(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	defer r.db.release()

	var suppliers []domain.SupplierRecord
	if err := r.db.SelectContext(ctx, &suppliers, `
		SELECT name, reliability, quality, avg_lead_time_days
		FROM suppliers
		ORDER BY position
	`); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error getting suppliers: %w", err)
	}

	var skus []skuRow
	if err := r.db.SelectContext(ctx, &skus, `
		SELECT position, id, category, supplier, unit_cost, stock, lead_time_days, moq
		FROM skus
		ORDER BY position
	`); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error getting skus: %w", err)
	}

	var history []historyRow
	if err := r.db.SelectContext(ctx, &history, `
		SELECT sku_position, position, period, realized, forecast
		FROM sku_history
		ORDER BY sku_position, position
	`); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error getting sku history: %w", err)
	}

	var lots []lotRow
	if err := r.db.SelectContext(ctx, &lots, `
		SELECT sku_position, position, lot_id, quantity, days_left
		FROM sku_lots
		ORDER BY sku_position, position
	`); err != nil {
		return domain.Snapshot{}, fmt.Errorf("error getting sku lots: %w", err)
	}

	if len(skus) == 0 {
		return domain.Snapshot{}, repository.ErrSnapshotNotFound
	}

	return assembleSnapshot(skus, history, lots, suppliers), nil
}

// SaveSnapshot replaces the stored portfolio in one transaction.
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{"DELETE FROM sku_lots", "DELETE FROM sku_history", "DELETE FROM skus", "DELETE FROM suppliers"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear snapshot: %w", err)
			}
		}

		skus, history, lots := flattenSnapshot(snapshot)

		for i, sup := range snapshot.Suppliers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO suppliers (position, name, reliability, quality, avg_lead_time_days)
				VALUES ($1, $2, $3, $4, $5)
			`, i, sup.Name, sup.Reliability, sup.Quality, sup.AvgLeadTimeDays); err != nil {
				return fmt.Errorf("insert supplier %s: %w", sup.Name, err)
			}
		}
		for _, row := range skus {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO skus (position, id, category, supplier, unit_cost, stock, lead_time_days, moq)
				VALUES (:position, :id, :category, :supplier, :unit_cost, :stock, :lead_time_days, :moq)
			`, row); err != nil {
				return fmt.Errorf("insert sku %s: %w", row.ID, err)
			}
		}
		for _, row := range history {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO sku_history (sku_position, position, period, realized, forecast)
				VALUES (:sku_position, :position, :period, :realized, :forecast)
			`, row); err != nil {
				return fmt.Errorf("insert history %d/%d: %w", row.SkuPosition, row.Period, err)
			}
		}
		for _, row := range lots {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO sku_lots (sku_position, position, lot_id, quantity, days_left)
				VALUES (:sku_position, :position, :lot_id, :quantity, :days_left)
			`, row); err != nil {
				return fmt.Errorf("insert lot %d/%s: %w", row.SkuPosition, row.LotID, err)
			}
		}
		return nil
	})
}

// flattenSnapshot splits SKU records into table rows keyed by input position.
func flattenSnapshot(snapshot domain.Snapshot) ([]skuRow, []historyRow, []lotRow) {
	var (
		skus    = make([]skuRow, 0, len(snapshot.Skus))
		history []historyRow
		lots    []lotRow
	)
	for i, sku := range snapshot.Skus {
		skus = append(skus, skuRow{
			Position:     i,
			ID:           sku.ID,
			Category:     sku.Category,
			Supplier:     sku.Supplier,
			UnitCost:     sku.UnitCost,
			Stock:        sku.Stock,
			LeadTimeDays: sku.LeadTimeDays,
			MOQ:          sku.MOQ,
		})
		for j, p := range sku.History {
			history = append(history, historyRow{SkuPosition: i, Position: j, Period: p.Period, Real: nullableFloat(p.Real), Forecast: p.Forecast})
		}
		for j, lot := range sku.Lots {
			lots = append(lots, lotRow{SkuPosition: i, Position: j, LotID: lot.ID, Quantity: lot.Quantity, DaysLeft: lot.DaysLeft})
		}
	}
	return skus, history, lots
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// assembleSnapshot joins flat rows back into SKU records in position order.
// History and lots rows must already be ordered by position within each SKU.
func assembleSnapshot(skus []skuRow, history []historyRow, lots []lotRow, suppliers []domain.SupplierRecord) domain.Snapshot {
	historyBySku := make(map[int][]domain.HistoryPoint)
	for _, h := range history {
		point := domain.HistoryPoint{Period: h.Period, Forecast: h.Forecast}
		if h.Real.Valid {
			v := h.Real.Float64
			point.Real = &v
		}
		historyBySku[h.SkuPosition] = append(historyBySku[h.SkuPosition], point)
	}

	lotsBySku := make(map[int][]domain.Lot)
	for _, l := range lots {
		lotsBySku[l.SkuPosition] = append(lotsBySku[l.SkuPosition], domain.Lot{ID: l.LotID, Quantity: l.Quantity, DaysLeft: l.DaysLeft})
	}

	snapshot := domain.Snapshot{
		Skus:      make([]domain.SkuRecord, 0, len(skus)),
		Suppliers: suppliers,
	}
	for _, s := range skus {
		snapshot.Skus = append(snapshot.Skus, domain.SkuRecord{
			ID:           s.ID,
			Category:     s.Category,
			Supplier:     s.Supplier,
			UnitCost:     s.UnitCost,
			Stock:        s.Stock,
			LeadTimeDays: s.LeadTimeDays,
			MOQ:          s.MOQ,
			History:      historyBySku[s.Position],
			Lots:         lotsBySku[s.Position],
		})
	}
	return snapshot
}
