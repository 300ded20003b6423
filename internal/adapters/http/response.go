package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope is the uniform response shape for every JSON endpoint.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError sends the public error text. The underlying detail is only
// attached outside production.
func (s *Server) writeError(w http.ResponseWriter, status int, public string, err error) {
	resp := envelope{
		Success:   false,
		Error:     public,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil && !s.hideErrorDetails {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}
