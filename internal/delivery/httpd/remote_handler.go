package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"detector": h.poller.Snapshot(),
		"sessions": h.sessions.Len(),
		"history":  h.history.Enabled(),
	}
	if h.pool != nil {
		response["workers"] = h.pool.Stats()
	}

	writeSuccess(w, response)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	res := h.gateway.ListByQuestion(r.Context(), chi.URLParam(r, "questionId"))
	if !res.Success {
		writeError(w, http.StatusBadGateway, res.Error)
		return
	}

	writeSuccess(w, res.Data)
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	res := h.gateway.GetByID(r.Context(), chi.URLParam(r, "id"))
	if !res.Success {
		writeError(w, http.StatusBadGateway, res.Error)
		return
	}

	writeSuccess(w, res.Data)
}
