// Package engine runs the sizing and costing cascade and holds the
// Idle/Sized state of one quoting session.
package engine

import (
	"math"

	"Aquaquote/internal/calc/cost"
	"Aquaquote/internal/calc/equipment"
	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/calc/pricing"
	"Aquaquote/internal/calc/tanks"
	"Aquaquote/internal/catalog"
)

type Phase string

const (
	Idle  Phase = "idle"
	Sized Phase = "sized"
)

// Result is the output of one full cascade run.
type Result struct {
	Flow    flow.Flow
	Tanks   tanks.Set
	Entries plant.Entries
	Total   float64
}

// State is a committed session snapshot. Operations return a new State
// and never modify the one they are given.
type State struct {
	Phase   Phase
	Spec    plant.Spec
	Flow    flow.Flow
	Tanks   tanks.Set
	Entries plant.Entries
	Total   float64
}

// Snapshot is the structured output handed to collaborators.
type Snapshot struct {
	Phase     Phase         `json:"phase"`
	Spec      plant.Spec    `json:"plant"`
	Flow      flow.Flow     `json:"flow"`
	Tanks     tanks.Set     `json:"tanks"`
	Equipment []plant.Entry `json:"equipment"`
	Total     float64       `json:"totalCost"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{
		Phase:     s.Phase,
		Spec:      s.Spec,
		Flow:      s.Flow,
		Tanks:     s.Tanks,
		Equipment: s.Entries.Ordered(),
		Total:     s.Total,
	}
}

type Engine struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Initial is the state of a fresh session.
func (e *Engine) Initial() State {
	entries := e.cat.Seed()
	return State{
		Phase:   Idle,
		Spec:    plant.Default(),
		Tanks:   tanks.Empty(e.cat.Tanks()),
		Entries: entries,
		Total:   cost.Total(entries),
	}
}

// Recompute runs flow, tanks, equipment, pricing and cost in order. It
// reports false without computing anything when capacity is not positive,
// and false with an empty Result when the catalog pushes any output past
// the float64 range.
func (e *Engine) Recompute(spec plant.Spec, current plant.Entries) (Result, bool) {
	spec = spec.Normalize()
	if spec.Capacity <= 0 {
		return Result{}, false
	}
	f := flow.Derive(flow.Input{CapacityKLD: spec.Capacity, PeakFlowKLD: spec.PeakFlow}, e.cat.Flow())
	set := tanks.Size(f, spec, e.cat.Tanks())
	mapped := equipment.Map(equipment.Sources{Spec: spec, Flow: f, Tanks: set}, e.cat, current)
	priced := pricing.Price(mapped, e.cat, f.FlowRate)
	res := Result{
		Flow:    f,
		Tanks:   set,
		Entries: priced,
		Total:   cost.Total(priced),
	}
	if !res.finite() {
		return Result{}, false
	}
	return res, true
}

func (r Result) finite() bool {
	ok := func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }
	if !ok(r.Total) || !ok(r.Flow.FlowRate) || !ok(r.Flow.PeakFlow) || !ok(r.Tanks.TotalVolume) {
		return false
	}
	for _, v := range r.Tanks.Volumes {
		if !ok(v) {
			return false
		}
	}
	for _, v := range r.Tanks.Widths {
		if !ok(v) {
			return false
		}
	}
	for _, en := range r.Entries {
		for _, p := range []*float64{en.Capacity, en.Diameter, en.Volume} {
			if p != nil && !ok(*p) {
				return false
			}
		}
		if !ok(en.BasePrice) || !ok(en.TotalPrice) {
			return false
		}
	}
	return true
}

// ApplySpec records a new plant specification. With a positive capacity
// the whole cascade is committed and the state is Sized; otherwise the
// state goes Idle and every derived value stays as it was. A cascade whose
// outputs overflow is not committed and s is returned unchanged.
func (e *Engine) ApplySpec(s State, spec plant.Spec) (State, bool) {
	spec = spec.Normalize()
	res, ok := e.Recompute(spec, s.Entries)
	if !ok && spec.Capacity > 0 {
		return s, false
	}
	if !ok {
		s.Phase = Idle
		s.Spec = spec
		return s, false
	}
	return State{
		Phase:   Sized,
		Spec:    spec,
		Flow:    res.Flow,
		Tanks:   res.Tanks,
		Entries: res.Entries,
		Total:   res.Total,
	}, true
}

// OverrideQuantity changes one dynamic entry's quantity. Fixed ids are a
// silent no-op; unknown ids return *pricing.UnknownEquipmentError.
func (e *Engine) OverrideQuantity(s State, id string, quantity int) (State, error) {
	entries, err := pricing.Override(s.Entries, id, quantity)
	if err != nil {
		return s, err
	}
	s.Entries = entries
	s.Total = cost.Total(entries)
	return s, nil
}

// Reset clears the plant form and prices. Tanks and flow are kept as
// last shown.
func (e *Engine) Reset(s State) State {
	entries := cost.Reset(s.Entries)
	return State{
		Phase:   Idle,
		Spec:    plant.Default(),
		Flow:    s.Flow,
		Tanks:   s.Tanks,
		Entries: entries,
		Total:   cost.Total(entries),
	}
}
