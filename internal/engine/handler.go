package engine

import (
	"encoding/json"
	"log"
	"net/http"

	"Aquaquote/internal/calc/plant"
)

// Handler serves stateless quotes and the active catalog.
type Handler struct {
	Engine *Engine
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input plant.Spec
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, _ := h.Engine.ApplySpec(h.Engine.Initial(), input)
	writeJSON(w, s.Snapshot())
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Engine.Catalog().Definition())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("engine: encode response: %v", err)
	}
}
