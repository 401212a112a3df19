package admin

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the uniform failure envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes the failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// decodeBody decodes the request body into dst. On failure it writes the 400
// envelope and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrMsgInvalidJSON)
		return false
	}
	return true
}

// patchColumns translates the request keys present in body into their storage
// columns. Keys outside allowed are ignored, so a patch carrying only unknown
// keys comes back empty.
func patchColumns(body map[string]any, allowed map[string]string) map[string]any {
	patch := make(map[string]any, len(body))
	for key, column := range allowed {
		if value, ok := body[key]; ok {
			patch[column] = value
		}
	}
	return patch
}
