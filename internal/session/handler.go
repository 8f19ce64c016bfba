package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/calc/pricing"
	"Aquaquote/internal/engine"
	"Aquaquote/internal/metrics"
)

type Handler struct {
	Store   *Store
	Metrics *metrics.Recorder
}

type createResponse struct {
	ID       string          `json:"id"`
	Snapshot engine.Snapshot `json:"state"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// Routes mounts the session endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.Get).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/plant", h.UpdatePlant).Methods("PUT")
	r.HandleFunc("/sessions/{id}/equipment/{eid}", h.UpdateQuantity).Methods("PATCH")
	r.HandleFunc("/sessions/{id}/reset", h.Reset).Methods("POST")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, st := h.Store.Create()
	h.Metrics.SessionOpened()
	w.Header().Set("Location", "/api/sessions/"+id)
	writeJSON(w, http.StatusCreated, createResponse{ID: id, Snapshot: st.Snapshot()})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.Store.Delete(mux.Vars(r)["id"]) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.Metrics.SessionClosed()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	var spec plant.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	eng := h.Store.Engine()
	var ran bool
	st, err := h.Store.Update(mux.Vars(r)["id"], func(cur engine.State) (engine.State, error) {
		var next engine.State
		next, ran = eng.ApplySpec(cur, spec)
		return next, nil
	})
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.Metrics.Cascade(ran, st.Total)
	writeJSON(w, http.StatusOK, st.Snapshot())
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		http.Error(w, "Quantity must be a positive integer", http.StatusBadRequest)
		return
	}
	qty := *req.Quantity
	vars := mux.Vars(r)
	eid := vars["eid"]
	eng := h.Store.Engine()
	fixed := false
	st, err := h.Store.Update(vars["id"], func(cur engine.State) (engine.State, error) {
		if e, ok := cur.Entries[eid]; ok && e.Fixed {
			fixed = true
		}
		return eng.OverrideQuantity(cur, eid, qty)
	})

	var unknown *pricing.UnknownEquipmentError
	switch {
	case errors.As(err, &unknown):
		h.Metrics.Override("unknown")
		http.Error(w, unknown.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if fixed {
		h.Metrics.Override("fixed")
	} else {
		h.Metrics.Override("applied")
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	eng := h.Store.Engine()
	st, err := h.Store.Update(mux.Vars(r)["id"], func(cur engine.State) (engine.State, error) {
		return eng.Reset(cur), nil
	})
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.Metrics.Reset()
	writeJSON(w, http.StatusOK, st.Snapshot())
}

// Expire drops sessions idle for maxIdle, checking every interval, until
// ctx is done.
func (h *Handler) Expire(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := h.Store.Sweep(maxIdle); n > 0 {
				h.Metrics.SessionsExpired(n)
				log.Printf("session: expired %d idle sessions", n)
			}
		}
	}
}

// writeJSON failures stay at the response boundary; session state is
// already committed and is not rolled back.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("session: encode response: %v", err)
	}
}
