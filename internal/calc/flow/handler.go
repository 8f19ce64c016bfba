package flow

import (
	"encoding/json"
	"log"
	"net/http"
)

type Handler struct {
	Conversion Conversion
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res := Derive(input, h.Conversion)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("flow: encode response: %v", err)
	}
}
