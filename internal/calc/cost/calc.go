package cost

import "Aquaquote/internal/calc/plant"

// Total sums every line total in id order so repeated runs give the same
// float result.
func Total(entries plant.Entries) float64 {
	total := 0.0
	for _, id := range entries.IDs() {
		total += entries[id].TotalPrice
	}
	return total
}

// Reset returns the set to its seed state: quantity 1, no price. The
// dimensional attributes stay so the shape of each entry survives.
func Reset(entries plant.Entries) plant.Entries {
	out := make(plant.Entries, len(entries))
	for id, e := range entries {
		e = e.Clone()
		e.Quantity = 1
		e.BasePrice = 0
		e.TotalPrice = 0
		out[id] = e
	}
	return out
}
