package api

import (
	"encoding/json"
	"net/http"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []record.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, errorResponse{Error: message}, status)
}

func respondValidation(w http.ResponseWriter, verr *record.ValidationError) {
	respondJSON(w, errorResponse{Error: verr.Error(), Fields: verr.Fields}, http.StatusBadRequest)
}
