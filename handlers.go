package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/kwv/beaconmesh/mesh"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(stateTracker *mesh.StateTracker) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		status := struct {
			Status      string    `json:"status"`
			Timestamp   time.Time `json:"timestamp"`
			HasAssembly bool      `json:"hasAssembly"`
			UpdatedAt   time.Time `json:"updatedAt,omitempty"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			HasAssembly: stateTracker.HasAssembly(),
			UpdatedAt:   stateTracker.UpdatedAt(),
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("/summary.json", func(w http.ResponseWriter, r *http.Request) {
		report := stateTracker.Report()
		if report == nil {
			http.Error(w, "No assembly available", http.StatusServiceUnavailable)
			return
		}
		summary := struct {
			RunID        string       `json:"runId"`
			GeneratedAt  int64        `json:"generatedAt"`
			ScannerCount int          `json:"scannerCount"`
			Metrics      mesh.Metrics `json:"metrics"`
		}{
			RunID:        report.RunID,
			GeneratedAt:  report.GeneratedAt,
			ScannerCount: len(report.Scanners),
			Metrics:      report.Metrics,
		}
		writeJSON(w, summary)
	})

	mux.HandleFunc("/scanners.json", func(w http.ResponseWriter, r *http.Request) {
		report := stateTracker.Report()
		if report == nil {
			http.Error(w, "No assembly available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, report.Scanners)
	})

	mux.HandleFunc("/beacons.geojson", func(w http.ResponseWriter, r *http.Request) {
		gm := stateTracker.GlobalMap()
		if gm == nil {
			http.Error(w, "No assembly available", http.StatusServiceUnavailable)
			return
		}
		data, err := mesh.ToFeatureCollection(gm).MarshalJSON()
		if err != nil {
			log.Printf("Error encoding GeoJSON: %v", err)
			http.Error(w, "Error encoding GeoJSON", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		if _, err := w.Write(data); err != nil {
			log.Printf("Error writing GeoJSON: %v", err)
		}
	})

	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		gm := stateTracker.GlobalMap()
		if gm == nil {
			http.Error(w, "No assembly available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := mesh.NewVectorRenderer(gm).RenderToSVG(w); err != nil {
			log.Printf("Error rendering SVG map: %v", err)
		}
	})

	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		gm := stateTracker.GlobalMap()
		if gm == nil {
			http.Error(w, "No assembly available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := mesh.NewCompositeRenderer(gm).WritePNG(w); err != nil {
			log.Printf("Error encoding PNG map: %v", err)
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
