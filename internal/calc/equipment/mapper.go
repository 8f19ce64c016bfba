package equipment

import (
	"math"

	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/calc/tanks"
	"Aquaquote/internal/catalog"
)

// Sources are the quantities a sizing rule can read from.
type Sources struct {
	Spec  plant.Spec
	Flow  flow.Flow
	Tanks tanks.Set
}

func (s Sources) value(name string) float64 {
	switch name {
	case catalog.SourceFlowRate:
		return s.Flow.FlowRate
	case catalog.SourcePeakFlow:
		return s.Flow.PeakFlow
	case catalog.SourceCapacity:
		return s.Spec.Capacity
	}
	return s.Tanks.Volume(tanks.ID(name))
}

// Apply evaluates one rule. Circular rules turn a flow into a vessel
// diameter: factor is the inverse surface loading rate.
func Apply(r catalog.Rule, src Sources) float64 {
	v := src.value(r.Source)
	if v <= 0 || r.Factor <= 0 {
		return 0
	}
	if r.Shape == catalog.ShapeCircular {
		return math.Sqrt(4 * v * r.Factor / math.Pi)
	}
	return v * r.Factor
}

// Map builds a fresh equipment set for the catalog from the sized plant.
// Quantities and prices of known entries carry over from current; fixed
// entries are copied as they are. current is not modified.
func Map(src Sources, cat *catalog.Catalog, current plant.Entries) plant.Entries {
	seed := cat.Seed()
	out := make(plant.Entries, cat.Len())
	for _, it := range cat.Items() {
		prev, known := current[it.ID]
		if it.Fixed {
			if known {
				out[it.ID] = prev.Clone()
			} else {
				out[it.ID] = seed[it.ID]
			}
			continue
		}

		e := seed[it.ID]
		if known {
			if prev.Quantity >= 1 {
				e.Quantity = prev.Quantity
			}
			e.BasePrice = prev.BasePrice
		}
		for _, r := range it.Sizing {
			v := Apply(r, src)
			switch r.Attribute {
			case catalog.AttrCapacity:
				e.Capacity = &v
			case catalog.AttrDiameter:
				e.Diameter = &v
			case catalog.AttrVolume:
				e.Volume = &v
			}
		}
		e.TotalPrice = e.BasePrice * float64(e.Quantity)
		out[it.ID] = e
	}
	return out
}
