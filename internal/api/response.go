package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/formflow/FormFlow/internal/models"
)

// fallbackErrorResponse is served when marshaling a response itself fails.
// It is marshaled once at startup so the failure path cannot fail again.
var fallbackErrorResponse = mustMarshal(models.Error("Internal server error"))

func mustMarshal(resp models.APIResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		panic(fmt.Sprintf("marshal fallback error response: %v", err))
	}
	return data
}

// writeJSONResponse marshals before touching the ResponseWriter, so an
// encoding failure can still produce a well-formed error payload and status.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("writeJSONResponse marshal failed", "error", err)
		data = fallbackErrorResponse
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		slog.Error("writeJSONResponse write failed", "error", err)
	}
}
