package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"BaroServer/bmp180"
)

type calibrationSource interface {
	Calibration() (bmp180.CalibrationData, error)
}

func newRouter(p *poller, cal calibrationSource, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		reading, ok := p.current()
		if !ok {
			http.Error(w, "no reading yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, reading, logger)
	}).Methods(http.MethodGet)

	r.HandleFunc("/calibration", func(w http.ResponseWriter, r *http.Request) {
		c, err := cal.Calibration()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, NewCalibrationInfo(c), logger)
	}).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := p.current(); !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		logger.Warn("couldn't send response", "error", err)
	}
}
