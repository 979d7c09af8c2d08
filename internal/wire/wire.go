// Package wire defines the JSON message shapes exchanged with the
// outside world (§6/§7): Pick and Correlation input, Detection and
// Retract output, and the StationInfo family. Field names mirror the
// wire protocol's own PascalCase keys exactly, since these types are the
// external contract, not an internal data model — conversion to and
// from the domain types in internal/pick, internal/site, and
// internal/trigger happens at this package's boundary.
package wire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
	"github.com/usgs/neic-glass3-sub001/internal/isotime"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// SiteRef identifies a station the way Pick/Correlation/StationInfo
// messages do on the wire.
type SiteRef struct {
	Station  string `json:"Station"`
	Channel  string `json:"Channel,omitempty"`
	Network  string `json:"Network"`
	Location string `json:"Location,omitempty"`
}

// ToKey converts a wire SiteRef to the internal site.Key.
func (r SiteRef) ToKey() site.Key {
	return site.Key{Station: r.Station, Channel: r.Channel, Network: r.Network, Location: r.Location}
}

// SiteRefFromKey converts an internal site.Key to its wire form.
func SiteRefFromKey(k site.Key) SiteRef {
	return SiteRef{Station: k.Station, Channel: k.Channel, Network: k.Network, Location: k.Location}
}

// Source attributes a pick, correlation, detection, or retraction to an
// originating agency/author.
type Source struct {
	AgencyID string `json:"AgencyID,omitempty"`
	Author   string `json:"Author,omitempty"`
}

// Filter describes a band applied before picking.
type Filter struct {
	HighPass float64 `json:"HighPass,omitempty"`
	LowPass  float64 `json:"LowPass,omitempty"`
}

// Amplitude carries the measured amplitude/period/SNR of a pick, when
// reported.
type Amplitude struct {
	Amplitude float64 `json:"Amplitude,omitempty"`
	Period    float64 `json:"Period,omitempty"`
	SNR       float64 `json:"SNR,omitempty"`
}

// PickMessage is the ingest input shape for a single-station phase
// arrival.
type PickMessage struct {
	Type      string      `json:"Type"`
	ID        string      `json:"ID"`
	Site      SiteRef     `json:"Site"`
	Source    Source      `json:"Source,omitempty"`
	Time      string      `json:"Time"`
	Phase     string      `json:"Phase,omitempty"`
	Picker    string      `json:"Picker,omitempty"`
	Polarity  string      `json:"Polarity,omitempty"`
	Filter    []Filter    `json:"Filter,omitempty"`
	Amplitude *Amplitude  `json:"Amplitude,omitempty"`
	BackAzimuth *float64  `json:"BackAzimuth,omitempty"`
	Slowness    *float64  `json:"Slowness,omitempty"`
}

// Validate checks the required fields of an inbound pick message.
func (m PickMessage) Validate() error {
	if m.Type != "Pick" {
		return &glasserr.ValidateError{Field: "Type", Reason: fmt.Sprintf("want \"Pick\", got %q", m.Type)}
	}
	if m.Site.Station == "" {
		return &glasserr.ValidateError{Field: "Site.Station", Reason: "required"}
	}
	if m.Time == "" {
		return &glasserr.ValidateError{Field: "Time", Reason: "required"}
	}
	return nil
}

// ToDomain converts a validated PickMessage to the internal site.Key and
// pick.Pick pair. A missing ID is assigned a fresh UUID.
func (m PickMessage) ToDomain() (site.Key, *pick.Pick, error) {
	if err := m.Validate(); err != nil {
		return site.Key{}, nil, err
	}
	t, err := isotime.Decode(m.Time)
	if err != nil {
		return site.Key{}, nil, &glasserr.ParseError{Source: "PickMessage.Time", Err: err}
	}
	id := m.ID
	if id == "" {
		id = uuid.NewString()
	}
	key := m.Site.ToKey()
	p := &pick.Pick{
		ID:          id,
		SiteKey:     key.String(),
		Time:        t,
		BackAzimuth: m.BackAzimuth,
		Slowness:    m.Slowness,
		Source:      m.Source.AgencyID,
		Phase:       m.Phase,
	}
	return key, p, nil
}

// Hypocenter is the shared location/time quadruple used by Correlation
// input and Detection output.
type Hypocenter struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	Depth     float64 `json:"Depth"`
	Time      string  `json:"Time"`
}

// CorrelationMessage is the ingest input shape for a waveform-correlation
// detection: everything a Pick carries, plus a pre-located hypocenter and
// correlation-specific fields.
type CorrelationMessage struct {
	PickMessage
	Hypocenter        Hypocenter `json:"Hypocenter"`
	Correlation       float64    `json:"Correlation,omitempty"`
	Magnitude         float64    `json:"Magnitude,omitempty"`
	SNR               float64    `json:"SNR,omitempty"`
	DetectionThreshold float64   `json:"DetectionThreshold,omitempty"`
	ThresholdType     string     `json:"ThresholdType,omitempty"`
}

// AssociationInfo annotates a contributing Pick/Correlation inside a
// Detection message with how it was used (residual, weight).
type AssociationInfo struct {
	Residual float64 `json:"Residual"`
	Weight   float64 `json:"Weight,omitempty"`
	Phase    string  `json:"Phase,omitempty"`
}

// ContributingData is one entry in a Detection message's Data array: the
// originating pick plus its association info.
type ContributingData struct {
	PickMessage
	AssociationInfo AssociationInfo `json:"AssociationInfo"`
}

// DetectionType distinguishes a brand-new event report from a revision of
// a previously reported one.
type DetectionType string

const (
	DetectionNew    DetectionType = "New"
	DetectionUpdate DetectionType = "Update"
)

// DetectionMessage is the output shape for a nucleated/located event.
type DetectionMessage struct {
	Type            string              `json:"Type"`
	ID              string              `json:"ID"`
	Source          Source              `json:"Source,omitempty"`
	Hypocenter      Hypocenter          `json:"Hypocenter"`
	DetectionType   DetectionType       `json:"DetectionType"`
	Bayes           float64             `json:"Bayes"`
	MinimumDistance float64             `json:"MinimumDistance,omitempty"`
	Gap             float64             `json:"Gap,omitempty"`
	Data            []ContributingData `json:"Data,omitempty"`
}

// DetectionFromTrigger converts a nucleated Trigger into a "New" detection
// message, assigning it a fresh ID. Gap/MinimumDistance are left at their
// zero values: computing them is an external-locator responsibility (§4.6
// Non-goals), not this package's.
func DetectionFromTrigger(t trigger.Trigger, source Source) DetectionMessage {
	data := make([]ContributingData, 0, len(t.Picks))
	for _, p := range t.Picks {
		data = append(data, ContributingData{
			PickMessage: PickMessage{
				Type: "Pick",
				ID:   p.ID,
				Time: isotime.Encode(p.Time),
				Phase: p.Phase,
			},
			AssociationInfo: AssociationInfo{Phase: p.Phase},
		})
	}
	return DetectionMessage{
		Type:   "Detection",
		ID:     uuid.NewString(),
		Source: source,
		Hypocenter: Hypocenter{
			Latitude:  t.Lat,
			Longitude: t.Lon,
			Depth:     t.Depth,
			Time:      isotime.Encode(t.OriginTime),
		},
		DetectionType: DetectionNew,
		Bayes:         t.BayesianSum,
		Data:          data,
	}
}

// RetractMessage is the output shape for withdrawing a previously
// reported detection.
type RetractMessage struct {
	Type   string `json:"Type"`
	ID     string `json:"ID"`
	Source Source `json:"Source,omitempty"`
}

// NewRetractMessage builds a Retract message for id.
func NewRetractMessage(id string, source Source) RetractMessage {
	return RetractMessage{Type: "Retract", ID: id, Source: source}
}

// StationInfo mirrors a Site's identity and enablement on the wire.
type StationInfo struct {
	Site      SiteRef `json:"Site"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	Elevation float64 `json:"Elevation,omitempty"`
	Enable    bool    `json:"Enable"`
	Quality   float64 `json:"Quality,omitempty"`
	UseForTeleseismic bool `json:"UseForTeleseismic,omitempty"`
}

// StationInfoRequest requests information for a single station.
type StationInfoRequest struct {
	Type string  `json:"Type"`
	Site SiteRef `json:"Site"`
}

// StationInfoList is the bulk-response wrapper for a set of StationInfo
// records.
type StationInfoList struct {
	Type        string        `json:"Type"`
	StationList []StationInfo `json:"StationList"`
}
