// Package utils holds small helpers shared across packages: JSON
// response writing and UUID generation.
package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON marshals data and writes it as an application/json response
// with the given status code.
//
// If marshaling fails it answers 500 Internal Server Error instead and
// returns the wrapped error; nothing of the payload is written in that
// case, so handlers can simply log the returned error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(body)
}
