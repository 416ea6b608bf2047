package httpd

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maskKey оставляет видимыми только последние 4 символа
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	key, err := h.store.Get()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read credential")
		writeError(w, http.StatusInternalServerError, "Failed to read credential")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"configured": key != "",
		"masked":     maskKey(key),
	})
}

func (h *Handler) PutCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	if err := h.store.Set(key); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store credential")
		writeError(w, http.StatusInternalServerError, "Failed to store credential")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"configured": true,
		"masked":     maskKey(key),
	})
}

func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear credential")
		writeError(w, http.StatusInternalServerError, "Failed to clear credential")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"configured": false,
	})
}
