// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selection

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kortschak/seqtools/feature"
)

// Server is the optional loopback-only HTTP introspection endpoint
// (spec.md §9's "selfcall pipe protocol" open question, resolved per
// SPEC_FULL.md as an ordinary HTTP API). It is never required for
// Blixem/Dotter to function and exposes read-only GETs: /selection
// returns the current selected FeatureSeq ids, /project?dna=<n>&
// frame=<n>&strand=<s> runs a DNA-coordinate projection query.
type Server struct {
	svc *Service
	mux *mux.Router
}

// NewServer wraps svc in an http.Handler. Callers are responsible for
// binding it to a loopback listener only; Server performs no auth.
func NewServer(svc *Service) *Server {
	s := &Server{svc: svc, mux: mux.NewRouter()}
	s.mux.HandleFunc("/selection", s.handleSelection).Methods(http.MethodGet)
	s.mux.HandleFunc("/project", s.handleProject).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Selected())
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dna, err := strconv.Atoi(q.Get("dna"))
	if err != nil {
		http.Error(w, fmt.Sprintf("selection: bad dna parameter: %v", err), http.StatusBadRequest)
		return
	}
	frame, err := strconv.Atoi(q.Get("frame"))
	if err != nil {
		frame = 1
	}
	strand := parseStrand(q.Get("strand"))

	info, err := s.svc.ProjectDNA(dna, frame, strand)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func parseStrand(s string) feature.Strand {
	switch s {
	case "+":
		return feature.StrandForward
	case "-":
		return feature.StrandReverse
	default:
		return feature.StrandNone
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
