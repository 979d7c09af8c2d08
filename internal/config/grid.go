package config

import (
	"encoding/json"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// GridCmd selects a web's node-generation strategy (§4.4.1).
type GridCmd string

const (
	GridGlobal        GridCmd = "Global"
	GridRegional      GridCmd = "Grid"
	GridExplicit      GridCmd = "Grid_Explicit"
)

// NucleationPhases names a web's primary and optional secondary
// nucleation phase.
type NucleationPhases struct {
	Phase1 string `json:"Phase1"`
	Phase2 string `json:"Phase2,omitempty"`
}

// ExplicitPoint is one (lat, lon, depth) tuple for a Grid_Explicit web.
type ExplicitPoint struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	Depth     float64 `json:"Depth"`
}

// Grid is a single web's configuration (§6 "Grid config").
type Grid struct {
	Cmd  GridCmd `json:"Cmd"`
	Name string  `json:"Name"`

	Detect     *int     `json:"Detect,omitempty"`
	Nucleate   *int     `json:"Nucleate,omitempty"`
	Thresh     *float64 `json:"Thresh,omitempty"`
	Resolution *float64 `json:"Resolution,omitempty"`
	Z          []float64 `json:"Z,omitempty"`

	AzimuthGapTaper *[4]float64 `json:"AzimuthGapTaper,omitempty"`
	MaximumDepth    *float64    `json:"MaximumDepth,omitempty"`

	NucleationPhases NucleationPhases `json:"NucleationPhases"`

	Nets  []string `json:"Nets,omitempty"`
	Sites []string `json:"Sites,omitempty"`

	UseOnlyTeleseismicStations *bool `json:"UseOnlyTeleseismicStations,omitempty"`
	SaveGrid                   *bool `json:"SaveGrid,omitempty"`
	Update                     *bool `json:"Update,omitempty"`

	// Explicit-grid-only fields.
	Points []ExplicitPoint `json:"Points,omitempty"`

	// Regional-grid-only fields (§4.4.1).
	CenterLat  *float64 `json:"CenterLat,omitempty"`
	CenterLon  *float64 `json:"CenterLon,omitempty"`
	RadiusDeg  *float64 `json:"RadiusDeg,omitempty"`
}

func (g *Grid) GetDetect() int           { return intOr(g.Detect, 20) }
func (g *Grid) GetNucleate() int         { return intOr(g.Nucleate, 7) }
func (g *Grid) GetThresh() float64       { return floatOr(g.Thresh, 2.5) }
func (g *Grid) GetResolution() float64   { return floatOr(g.Resolution, 100.0) }
func (g *Grid) GetUseOnlyTeleseismicStations() bool {
	return boolOr(g.UseOnlyTeleseismicStations, false)
}
func (g *Grid) GetSaveGrid() bool { return boolOr(g.SaveGrid, false) }
func (g *Grid) GetUpdate() bool   { return boolOr(g.Update, true) }

// Validate checks the Cmd tag and the fields it requires.
func (g *Grid) Validate() error {
	if g.Name == "" {
		return &glasserr.ValidateError{Field: "Name", Reason: "required"}
	}
	switch g.Cmd {
	case GridGlobal:
		// no further required fields
	case GridRegional:
		if g.CenterLat == nil || g.CenterLon == nil || g.RadiusDeg == nil {
			return &glasserr.ValidateError{Field: "Cmd=Grid", Reason: "CenterLat, CenterLon, and RadiusDeg are required"}
		}
	case GridExplicit:
		if len(g.Points) == 0 {
			return &glasserr.ValidateError{Field: "Cmd=Grid_Explicit", Reason: "Points must be non-empty"}
		}
	default:
		return &glasserr.ValidateError{Field: "Cmd", Reason: "must be Global, Grid, or Grid_Explicit"}
	}
	if g.NucleationPhases.Phase1 == "" {
		return &glasserr.ValidateError{Field: "NucleationPhases.Phase1", Reason: "required"}
	}
	return nil
}

// LoadGridFile reads and validates a single grid file relative to root's
// own config directory.
func LoadGridFile(root *Root, relPath string) (*Grid, error) {
	resolved, err := root.ResolvePath(relPath)
	if err != nil {
		return nil, err
	}
	data, err := readBounded(resolved)
	if err != nil {
		return nil, err
	}
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &glasserr.ParseError{Source: resolved, Err: err}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadGrids reads every grid file named in root.GridFiles.
func LoadGrids(root *Root) ([]*Grid, error) {
	grids := make([]*Grid, 0, len(root.GridFiles))
	for _, path := range root.GridFiles {
		g, err := LoadGridFile(root, path)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, nil
}
