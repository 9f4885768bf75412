// Control surface exposing run-state, snapshot, and health-feed endpoints.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pipeops-sim/internal/sim"
	"pipeops-sim/internal/ws"
)

// maxHealthBody caps the accepted health-feed payload size.
const maxHealthBody = 1 << 20

type Server struct {
	Sim *sim.Simulator
	hub *ws.Hub
}

// NewServer creates the admin server. hub may be nil when the WebSocket
// surface is disabled.
func NewServer(s *sim.Simulator, hub *ws.Hub) *Server {
	return &Server{Sim: s, hub: hub}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/state", s.handleState).Methods("GET")
	r.HandleFunc("/resume", s.handleResume).Methods("POST")
	r.HandleFunc("/pause", s.handlePause).Methods("POST")
	r.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	r.HandleFunc("/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/health", s.handleHealthUpdate).Methods("POST")
	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if s.hub != nil {
		r.Handle("/ws", s.hub)
	}

	return handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, r))
}

// Start runs the admin server until the listener fails.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

type stateResponse struct {
	RunState string `json:"run_state"`
	Tick     uint64 `json:"tick"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{RunState: snap.RunState, Tick: snap.Tick})
}

// handleResume blocks through the diagnostics delay and responds once the
// engine is Running, or reports the interruption.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	err := s.Sim.Controller().Resume(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stateResponse{RunState: s.Sim.Controller().State().String(), Tick: s.Sim.Snapshot().Tick})
	case errors.Is(err, sim.ErrResumeInterrupted):
		http.Error(w, "resume interrupted by pause", http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away while waiting on the startup delay.
		http.Error(w, "resume cancelled", http.StatusRequestTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.Sim.Controller().Pause()
	writeJSON(w, http.StatusOK, stateResponse{RunState: s.Sim.Controller().State().String(), Tick: s.Sim.Snapshot().Tick})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.HistoryEntries())
}

func (s *Server) handleHealthUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxHealthBody))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Sim.HealthStore().ApplyRaw(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	last := s.Sim.HealthStore().Last()
	writeJSON(w, http.StatusAccepted, map[string]string{"update_id": last.ID})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
