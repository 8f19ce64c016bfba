package tanks

import (
	"encoding/json"
	"log"
	"net/http"

	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/plant"
)

type Handler struct {
	Conversion   flow.Conversion
	Coefficients Coefficients
}

type Result struct {
	Flow  flow.Flow `json:"flow"`
	Tanks Set       `json:"tanks"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input plant.Spec
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	spec := input.Normalize()
	f := flow.Derive(flow.Input{CapacityKLD: spec.Capacity, PeakFlowKLD: spec.PeakFlow}, h.Conversion)
	res := Result{Flow: f, Tanks: Size(f, spec, h.Coefficients)}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("tanks: encode response: %v", err)
	}
}
