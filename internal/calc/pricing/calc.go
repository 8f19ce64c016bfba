package pricing

import (
	"fmt"

	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/catalog"
)

// UnknownEquipmentError is returned when an override names an id that is
// not in the equipment set.
type UnknownEquipmentError struct {
	ID string
}

func (e *UnknownEquipmentError) Error() string {
	return fmt.Sprintf("unknown equipment %q", e.ID)
}

// BasePrice is the unit price of a dynamic entry. Attribute terms count
// only when the entry carries the attribute.
func BasePrice(e plant.Entry, c catalog.Coefficients, flowRate float64) float64 {
	price := c.CostPerPiece
	if e.Capacity != nil {
		price += c.CostPerCapacity * *e.Capacity
	}
	if e.Diameter != nil {
		price += c.CostPerDiameter * *e.Diameter
	}
	if e.Volume != nil {
		price += c.CostPerVolume * *e.Volume
	}
	if flowRate > 0 {
		price += c.CostPerFlow * flowRate
	}
	return price
}

// Price returns a new set with every base and total price recomputed.
// Fixed entries are pinned to quantity 1 at their catalog price.
func Price(entries plant.Entries, cat *catalog.Catalog, flowRate float64) plant.Entries {
	out := make(plant.Entries, len(entries))
	for id, e := range entries {
		e = e.Clone()
		if it, ok := cat.Item(id); ok {
			if it.Fixed {
				e.Quantity = 1
				e.BasePrice = it.FixedPrice
			} else {
				e.BasePrice = BasePrice(e, it.Costs, flowRate)
			}
		}
		if e.Quantity < 1 {
			e.Quantity = 1
		}
		e.TotalPrice = e.BasePrice * float64(e.Quantity)
		out[id] = e
	}
	return out
}

// Override sets the quantity of one dynamic entry. Fixed entries are left
// as they are without error. Quantities below 1 become 1.
func Override(entries plant.Entries, id string, quantity int) (plant.Entries, error) {
	cur, ok := entries[id]
	if !ok {
		return entries, &UnknownEquipmentError{ID: id}
	}
	if cur.Fixed {
		return entries, nil
	}
	if quantity < 1 {
		quantity = 1
	}
	out := entries.Clone()
	cur = out[id]
	cur.Quantity = quantity
	cur.TotalPrice = cur.BasePrice * float64(quantity)
	out[id] = cur
	return out, nil
}
