package main

import (
	"encoding/json"
	"net/http"

	"github.com/cfoust/vecsim/pkg/particles"
	"github.com/cfoust/vecsim/pkg/stream"

	"github.com/rs/zerolog/log"
)

// NoStore is an http.Handler that disables the browser cache for live
// responses.
func NoStore(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		h.ServeHTTP(w, r)
	})
}

type Status struct {
	Tick      uint64     `json:"tick"`
	Particles int        `json:"particles"`
	Clients   int        `json:"clients"`
	Centroid  [3]float64 `json:"centroid"`
}

func StatusHandler(system *particles.System, hub *stream.Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		centroid, err := system.Centroid()
		if err != nil {
			log.Error().Err(err).Msg("could not compute centroid")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		status := Status{
			Tick:      system.Tick(),
			Particles: system.Len(),
			Clients:   hub.NumClients(),
			Centroid:  centroid.ToArray(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error().Err(err).Msg("could not write status")
		}
	})
}
