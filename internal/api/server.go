// Package api exposes the nucleation core's debug/admin HTTP surface
// (§4.9): a tsweb debugger root, a read-only tailsql browser over
// internal/db, and a go-echarts scatter of recent triggers for eyeballing
// nucleation activity without a full operator UI.
package api

import (
	"encoding/json"
	"net/http"

	"tailscale.com/tsweb"

	"github.com/usgs/neic-glass3-sub001/internal/db"
)

// Server bundles the collaborators the admin surface reports on: the
// persistence layer (for tailsql) and a TriggerRecorder (for the
// trigger-rate dashboard). Both fields are optional; a nil DB simply
// skips mounting tailsql.
type Server struct {
	DB       *db.DB
	Recorder *TriggerRecorder
}

// NewServer returns a Server wired to the given collaborators.
func NewServer(d *db.DB, recorder *TriggerRecorder) *Server {
	if recorder == nil {
		recorder = NewTriggerRecorder(0)
	}
	return &Server{DB: d, Recorder: recorder}
}

// AttachAdminRoutes mounts the debug tree onto mux, grounded on
// serialmux.AttachAdminRoutes and internal/db.AttachAdminRoutes's
// tsweb.Debugger(mux) + debug.Handle pattern.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	if s.DB != nil {
		s.DB.AttachAdminRoutes(mux)
	}

	debug.HandleFunc("triggers", "recent trigger scatter (BayesianSum vs Count)", s.handleTriggerScatter)

	debug.HandleSilentFunc("triggers.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Recorder.Recent()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
