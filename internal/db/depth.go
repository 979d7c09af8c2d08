package db

import (
	"fmt"
	"time"
)

// RecordDepthObservation appends one trigger depth observation, for
// seeding a trigger.RunningDepthPrior's running statistic across process
// restarts.
func (db *DB) RecordDepthObservation(lat, lon, depthKM float64) error {
	_, err := db.Exec(`INSERT INTO depth_observations (latitude, longitude, depth_km, observed_at) VALUES (?, ?, ?, ?)`,
		lat, lon, depthKM, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record depth observation: %w", err)
	}
	return nil
}

// LoadRecentDepths returns the most recent limit depth-only observations,
// oldest first, for replaying into trigger.RunningDepthPrior.Observe at
// startup.
func (db *DB) LoadRecentDepths(limit int) ([]float64, error) {
	rows, err := db.Query(`SELECT depth_km FROM depth_observations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent depths: %w", err)
	}
	defer rows.Close()

	var depths []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan depth: %w", err)
		}
		depths = append(depths, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(depths)-1; i < j; i, j = i+1, j-1 {
		depths[i], depths[j] = depths[j], depths[i]
	}
	return depths, nil
}
