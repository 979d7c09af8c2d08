package config

import (
	"encoding/json"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// PhaseRef names a travel-time phase and the table file backing it.
type PhaseRef struct {
	PhaseName string `json:"PhaseName"`
	TravFile  string `json:"TravFile"`
}

// AssociationPhase is one entry of the Initialize file's
// AssociationPhases list: a secondary phase usable for association,
// either via a taper Range[4] or a hard Assoc[2] window.
type AssociationPhase struct {
	PhaseName string     `json:"PhaseName"`
	Range     *[4]float64 `json:"Range,omitempty"`
	Assoc     *[2]float64 `json:"Assoc,omitempty"`
	TravFile  string      `json:"TravFile"`
}

// Params holds the nucleation/association tuning knobs (§6 "Params").
// Every field is an optional pointer so partial JSON configs are safe;
// Get*() methods supply the spec's documented default.
type Params struct {
	Thresh         *float64 `json:"Thresh,omitempty"`
	Nucleate       *int     `json:"Nucleate,omitempty"`
	SdAssociate    *float64 `json:"sdAssociate,omitempty"`
	SdPrune        *float64 `json:"sdPrune,omitempty"`
	ExpAffinity    *float64 `json:"expAffinity,omitempty"`
	AvgDelta       *float64 `json:"avgDelta,omitempty"`
	AvgSigma       *float64 `json:"avgSigma,omitempty"`
	DCutFactor     *float64 `json:"dCutFactor,omitempty"`
	DCutPercentage *float64 `json:"dCutPercentage,omitempty"`
	DCutMin        *float64 `json:"dCutMin,omitempty"`
	ICycleLimit    *int     `json:"iCycleLimit,omitempty"`

	CorrelationTimeWindow     *float64 `json:"CorrelationTimeWindow,omitempty"`
	CorrelationDistanceWindow *float64 `json:"CorrelationDistanceWindow,omitempty"`
	CorrelationCancelAge      *float64 `json:"CorrelationCancelAge,omitempty"`
	BeamMatchingAzimuthWindow *float64 `json:"BeamMatchingAzimuthWindow,omitempty"`

	ReportThresh *float64 `json:"ReportThresh,omitempty"`
	ReportCut    *int     `json:"ReportCut,omitempty"`
}

func (p *Params) GetThresh() float64 { return floatOr(p.Thresh, 2.5) }
func (p *Params) GetNucleate() int   { return intOr(p.Nucleate, 7) }
func (p *Params) GetSdAssociate() float64 { return floatOr(p.SdAssociate, 2.5) }
func (p *Params) GetSdPrune() float64     { return floatOr(p.SdPrune, 4.0) }
func (p *Params) GetExpAffinity() float64 { return floatOr(p.ExpAffinity, 1.0) }
func (p *Params) GetAvgDelta() float64    { return floatOr(p.AvgDelta, 0.0) }
func (p *Params) GetAvgSigma() float64    { return floatOr(p.AvgSigma, 1.0) }
func (p *Params) GetDCutFactor() float64  { return floatOr(p.DCutFactor, 4.0) }
func (p *Params) GetDCutPercentage() float64 { return floatOr(p.DCutPercentage, 0.4) }
func (p *Params) GetDCutMin() float64        { return floatOr(p.DCutMin, 30.0) }
func (p *Params) GetICycleLimit() int        { return intOr(p.ICycleLimit, 25) }

func (p *Params) GetCorrelationTimeWindow() float64 { return floatOr(p.CorrelationTimeWindow, 2.5) }
func (p *Params) GetCorrelationDistanceWindow() float64 {
	return floatOr(p.CorrelationDistanceWindow, 1.0)
}
func (p *Params) GetCorrelationCancelAge() float64 { return floatOr(p.CorrelationCancelAge, 900.0) }
func (p *Params) GetBeamMatchingAzimuthWindow() float64 {
	return floatOr(p.BeamMatchingAzimuthWindow, 10.0)
}

func (p *Params) GetReportThresh() float64 { return floatOr(p.ReportThresh, 2.5) }
func (p *Params) GetReportCut() int        { return intOr(p.ReportCut, 7) }

// Initialize is the Initialize file's root object (§6 "Initialize file").
type Initialize struct {
	DefaultNucleationPhase PhaseRef           `json:"DefaultNucleationPhase"`
	AssociationPhases      []AssociationPhase `json:"AssociationPhases,omitempty"`
	TestTravelTimes        *bool              `json:"TestTravelTimes,omitempty"`
	UseL1ResidualLocator   *bool              `json:"UseL1ResidualLocator,omitempty"`
	Params                 Params             `json:"Params,omitempty"`

	PickMax              *int     `json:"PickMax,omitempty"`
	SitePickMax          *int     `json:"SitePickMax,omitempty"`
	CorrelationMax       *int     `json:"CorrelationMax,omitempty"`
	PickDuplicateWindow  *float64 `json:"PickDuplicateWindow,omitempty"`
	HypoMax              *int     `json:"HypoMax,omitempty"`
	NumNucleationThreads *int     `json:"NumNucleationThreads,omitempty"`
	NumHypoThreads       *int     `json:"NumHypoThreads,omitempty"`
	NumWebThreads        *int     `json:"NumWebThreads,omitempty"`

	SiteHoursWithoutPicking *float64 `json:"SiteHoursWithoutPicking,omitempty"`
	SiteLookupInterval      *string  `json:"SiteLookupInterval,omitempty"` // duration string, e.g. "1h"
}

func (i *Initialize) GetTestTravelTimes() bool      { return boolOr(i.TestTravelTimes, false) }
func (i *Initialize) GetUseL1ResidualLocator() bool { return boolOr(i.UseL1ResidualLocator, false) }

func (i *Initialize) GetPickMax() int             { return intOr(i.PickMax, 10000) }
func (i *Initialize) GetSitePickMax() int         { return intOr(i.SitePickMax, 200) }
func (i *Initialize) GetCorrelationMax() int      { return intOr(i.CorrelationMax, 1000) }
func (i *Initialize) GetPickDuplicateWindow() float64 {
	return floatOr(i.PickDuplicateWindow, 2.5)
}
func (i *Initialize) GetHypoMax() int              { return intOr(i.HypoMax, 1000) }
func (i *Initialize) GetNumNucleationThreads() int { return intOr(i.NumNucleationThreads, 5) }
func (i *Initialize) GetNumHypoThreads() int       { return intOr(i.NumHypoThreads, 3) }
func (i *Initialize) GetNumWebThreads() int        { return intOr(i.NumWebThreads, 0) }

func (i *Initialize) GetSiteHoursWithoutPicking() float64 {
	return floatOr(i.SiteHoursWithoutPicking, 720.0)
}

// GetSiteLookupInterval parses SiteLookupInterval, defaulting to 1 hour
// on an unset or unparseable value.
func (i *Initialize) GetSiteLookupInterval() time.Duration {
	if i.SiteLookupInterval == nil || *i.SiteLookupInterval == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(*i.SiteLookupInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// Validate checks required fields and internal consistency.
func (i *Initialize) Validate() error {
	if i.DefaultNucleationPhase.PhaseName == "" {
		return &glasserr.ValidateError{Field: "DefaultNucleationPhase.PhaseName", Reason: "required"}
	}
	if i.DefaultNucleationPhase.TravFile == "" {
		return &glasserr.ValidateError{Field: "DefaultNucleationPhase.TravFile", Reason: "required"}
	}
	for idx, ap := range i.AssociationPhases {
		if ap.PhaseName == "" {
			return &glasserr.ValidateError{Field: "AssociationPhases[].PhaseName", Reason: "required"}
		}
		if ap.Range == nil && ap.Assoc == nil {
			return &glasserr.ValidateError{Field: "AssociationPhases[].Range|Assoc", Reason: "one of Range or Assoc is required"}
		}
		_ = idx
	}
	return nil
}

// LoadInitialize reads and validates an Initialize file relative to
// root's own config directory.
func LoadInitialize(root *Root) (*Initialize, error) {
	resolved, err := root.ResolvePath(root.InitializeFile)
	if err != nil {
		return nil, err
	}
	data, err := readBounded(resolved)
	if err != nil {
		return nil, err
	}
	var i Initialize
	if err := json.Unmarshal(data, &i); err != nil {
		return nil, &glasserr.ParseError{Source: resolved, Err: err}
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return &i, nil
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
