package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// PersistedHypo mirrors trigger.HypoRecord plus the origin/location
// fields a publisher needs to re-emit a DetectionMessage after a
// restart, grounded on the teacher's site_report.go row shape.
type PersistedHypo struct {
	trigger.HypoRecord
	OriginTime  float64
	Latitude    float64
	Longitude   float64
	DepthKM     float64
	BayesianSum float64
	PickCount   int
	WebName     string
}

// UpsertHypoRecord writes or updates a hypo_records row, keyed by ID.
func (db *DB) UpsertHypoRecord(h PersistedHypo) error {
	const q = `
		INSERT INTO hypo_records (id, origin_time, latitude, longitude, depth_km, bayesian_sum, pick_count, web_name, create_time, report_time, version, cancelled, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			origin_time = excluded.origin_time,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			depth_km = excluded.depth_km,
			bayesian_sum = excluded.bayesian_sum,
			pick_count = excluded.pick_count,
			report_time = excluded.report_time,
			version = excluded.version,
			cancelled = excluded.cancelled,
			published = excluded.published
	`
	var reportUnix sql.NullInt64
	if !h.ReportTime.IsZero() {
		reportUnix = sql.NullInt64{Int64: h.ReportTime.Unix(), Valid: true}
	}
	cancelled, published := 0, 0
	if h.Cancelled {
		cancelled = 1
	}
	if h.Published {
		published = 1
	}
	_, err := db.Exec(q,
		h.ID, h.OriginTime, h.Latitude, h.Longitude, h.DepthKM, h.BayesianSum, h.PickCount, h.WebName,
		h.CreateTime.Unix(), reportUnix, h.Version, cancelled, published,
	)
	if err != nil {
		return fmt.Errorf("upsert hypo record %s: %w", h.ID, err)
	}
	return nil
}

// GetHypoRecord returns the persisted state of one hypocenter, or
// (nil, nil) if it has never been recorded.
func (db *DB) GetHypoRecord(id string) (*PersistedHypo, error) {
	row := db.QueryRow(`SELECT id, origin_time, latitude, longitude, depth_km, bayesian_sum, pick_count, web_name, create_time, report_time, version, cancelled, published FROM hypo_records WHERE id = ?`, id)
	h, err := scanHypoRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get hypo record %s: %w", id, err)
	}
	return h, nil
}

// ListActiveHypoRecords returns every hypo_records row not marked
// cancelled, most recent origin time first, for rehydrating an
// OutputPolicy's in-memory state after a restart.
func (db *DB) ListActiveHypoRecords() ([]PersistedHypo, error) {
	rows, err := db.Query(`SELECT id, origin_time, latitude, longitude, depth_km, bayesian_sum, pick_count, web_name, create_time, report_time, version, cancelled, published FROM hypo_records WHERE cancelled = 0 ORDER BY origin_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list active hypo records: %w", err)
	}
	defer rows.Close()

	var out []PersistedHypo
	for rows.Next() {
		h, err := scanHypoRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hypo record: %w", err)
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHypoRecord(r rowScanner) (*PersistedHypo, error) {
	var h PersistedHypo
	var createUnix int64
	var reportUnix sql.NullInt64
	var cancelled, published int
	err := r.Scan(&h.ID, &h.OriginTime, &h.Latitude, &h.Longitude, &h.DepthKM, &h.BayesianSum, &h.PickCount, &h.WebName,
		&createUnix, &reportUnix, &h.Version, &cancelled, &published)
	if err != nil {
		return nil, err
	}
	h.CreateTime = time.Unix(createUnix, 0).UTC()
	if reportUnix.Valid {
		h.ReportTime = time.Unix(reportUnix.Int64, 0).UTC()
	}
	h.Cancelled = cancelled != 0
	h.Published = published != 0
	return &h, nil
}
