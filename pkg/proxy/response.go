package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the only response shape of /api/chat, on success and failure
// alike. Callers tell the two apart by HTTP status.
type Result struct {
	Result string `json:"result"`
}

// WriteJSONResponse writes data as JSON with the given status code. HTML
// characters are not escaped.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteResult writes {"result": text} with the given status code.
func WriteResult(w http.ResponseWriter, statusCode int, text string) error {
	return WriteJSONResponse(w, statusCode, Result{Result: text})
}
