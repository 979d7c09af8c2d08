package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/site"
)

// UpsertSite writes s's identity, position, and flags to the sites
// table, grounded on the teacher's CreateSite/UpdateSite split collapsed
// into a single INSERT ... ON CONFLICT, since the registry's own Upsert
// semantics (§4.3: "loading a site already present updates it in place")
// never need to distinguish first-seen from update.
func (db *DB) UpsertSite(s *site.Site) error {
	const q = `
		INSERT INTO sites (scnl, station, channel, network, location, latitude, longitude, elevation_km, enabled, use_teleseismic, quality, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scnl) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			elevation_km = excluded.elevation_km,
			enabled = excluded.enabled,
			use_teleseismic = excluded.use_teleseismic,
			quality = excluded.quality,
			updated_at = excluded.updated_at
	`
	enabled, useTele := 0, 0
	if s.Enabled() {
		enabled = 1
	}
	if s.UseForTeleseismic() {
		useTele = 1
	}
	_, err := db.Exec(q,
		s.Key.String(), s.Key.Station, s.Key.Channel, s.Key.Network, s.Key.Location,
		s.Point.Lat, s.Point.Lon, s.Point.Depth,
		enabled, useTele, s.Quality(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert site %s: %w", s.Key.String(), err)
	}
	return nil
}

// PersistedSite is a site row read back from storage, before it has been
// rehydrated into a live *site.Site (which needs a pick-ring capacity the
// table itself does not record).
type PersistedSite struct {
	Key               site.Key
	Point             geo.Point
	Enabled           bool
	UseForTeleseismic bool
	Quality           float64
}

// LoadSites reads every row of the sites table, for rehydrating the
// registry on process restart (§4.3).
func (db *DB) LoadSites() ([]PersistedSite, error) {
	rows, err := db.Query(`SELECT station, channel, network, location, latitude, longitude, elevation_km, enabled, use_teleseismic, quality FROM sites`)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	defer rows.Close()

	var out []PersistedSite
	for rows.Next() {
		var p PersistedSite
		var enabled, useTele int
		if err := rows.Scan(&p.Key.Station, &p.Key.Channel, &p.Key.Network, &p.Key.Location,
			&p.Point.Lat, &p.Point.Lon, &p.Point.Depth, &enabled, &useTele, &p.Quality); err != nil {
			return nil, fmt.Errorf("scan site row: %w", err)
		}
		p.Enabled = enabled != 0
		p.UseForTeleseismic = useTele != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSite removes a site's persisted row, e.g. when it is permanently
// retired from the registry.
func (db *DB) DeleteSite(key site.Key) error {
	if _, err := db.Exec(`DELETE FROM sites WHERE scnl = ?`, key.String()); err != nil {
		return fmt.Errorf("delete site %s: %w", key.String(), err)
	}
	return nil
}

// GetSite returns a single persisted site, or (nil, nil) if unknown.
func (db *DB) GetSite(key site.Key) (*PersistedSite, error) {
	row := db.QueryRow(`SELECT station, channel, network, location, latitude, longitude, elevation_km, enabled, use_teleseismic, quality FROM sites WHERE scnl = ?`, key.String())
	var p PersistedSite
	var enabled, useTele int
	err := row.Scan(&p.Key.Station, &p.Key.Channel, &p.Key.Network, &p.Key.Location,
		&p.Point.Lat, &p.Point.Lon, &p.Point.Depth, &enabled, &useTele, &p.Quality)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get site %s: %w", key.String(), err)
	}
	p.Enabled = enabled != 0
	p.UseForTeleseismic = useTele != 0
	return &p, nil
}
