package plant

import (
	"math"
	"sort"
	"strings"
)

type Type string

const (
	TypeSTP Type = "STP"
	TypeETP Type = "ETP"
)

// Spec is the plant design input. Capacity and PeakFlow are in KLD,
// load parameters in mg/L.
type Spec struct {
	Type      Type    `json:"type" yaml:"type"`
	Capacity  float64 `json:"capacity" yaml:"capacity"`
	BOD       float64 `json:"BOD" yaml:"BOD"`
	COD       float64 `json:"COD" yaml:"COD"`
	TSS       float64 `json:"TSS" yaml:"TSS"`
	PH        float64 `json:"pH" yaml:"pH"`
	OilGrease float64 `json:"OilGrease" yaml:"OilGrease"`
	Nitrogen  float64 `json:"Nitrogen" yaml:"Nitrogen"`
	PeakFlow  float64 `json:"PeakFlow" yaml:"PeakFlow"`
}

// Default is the blank form state a reset returns to.
func Default() Spec {
	return Spec{Type: TypeSTP}
}

// ParseType accepts STP/ETP in any case; anything else is STP.
func ParseType(s string) Type {
	if strings.EqualFold(strings.TrimSpace(s), string(TypeETP)) {
		return TypeETP
	}
	return TypeSTP
}

// MaxValue caps every numeric input. A billion KLD or mg/L is far past
// any real plant and keeps downstream products finite.
const MaxValue = 1e9

// Normalize replaces negative, NaN and infinite values with 0 and caps
// the rest at MaxValue.
func (s Spec) Normalize() Spec {
	s.Type = ParseType(string(s.Type))
	s.Capacity = clean(s.Capacity)
	s.BOD = clean(s.BOD)
	s.COD = clean(s.COD)
	s.TSS = clean(s.TSS)
	s.PH = clean(s.PH)
	s.OilGrease = clean(s.OilGrease)
	s.Nitrogen = clean(s.Nitrogen)
	s.PeakFlow = clean(s.PeakFlow)
	return s
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Min(v, MaxValue)
}

// Entry is one equipment line. TotalPrice is always BasePrice * Quantity.
type Entry struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Fixed      bool     `json:"fixed"`
	Quantity   int      `json:"quantity"`
	BasePrice  float64  `json:"basePrice"`
	TotalPrice float64  `json:"totalPrice"`
	Capacity   *float64 `json:"capacity,omitempty"`
	Diameter   *float64 `json:"diameter,omitempty"`
	Volume     *float64 `json:"Volume,omitempty"`
}

func (e Entry) Clone() Entry {
	e.Capacity = copyPtr(e.Capacity)
	e.Diameter = copyPtr(e.Diameter)
	e.Volume = copyPtr(e.Volume)
	return e
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Entries is the live equipment set keyed by id.
type Entries map[string]Entry

func (es Entries) IDs() []string {
	ids := make([]string, 0, len(es))
	for id := range es {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ordered returns the entries sorted by id.
func (es Entries) Ordered() []Entry {
	out := make([]Entry, 0, len(es))
	for _, id := range es.IDs() {
		out = append(out, es[id].Clone())
	}
	return out
}

func (es Entries) Clone() Entries {
	out := make(Entries, len(es))
	for id, e := range es {
		out[id] = e.Clone()
	}
	return out
}
