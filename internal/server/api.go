// Package server exposes instance selection, connection testing and view
// listing over a small JSON HTTP API, for form-style front ends.
//
// Routes are registered on an alexedwards/flow mux by [Routes]; [Server]
// runs the mux until its context is cancelled.
package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSONError encodes err as JSON to w.
func JSONError(w http.ResponseWriter, err error, statusCode int) {
	jsonErr := &struct {
		Err string `json:"error"`
	}{Err: err.Error()}
	w.Header().Set("Content-Type", "application/json")
	if statusCode < 1 {
		statusCode = http.StatusInternalServerError
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonErr)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Info("encoding json to body", zap.Error(err))
	}
}
