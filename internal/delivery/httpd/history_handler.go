package httpd

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/history"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/repository"
)

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", repository.DefaultHistoryLimit)

	outcomes, err := h.history.List(r.Context(), chi.URLParam(r, "questionId"), limit)
	if err != nil {
		h.handleHistoryError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"questionId": chi.URLParam(r, "questionId"),
		"count":      len(outcomes),
		"outcomes":   outcomes,
	})
}

func (h *Handler) handleHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
	case errors.Is(err, history.ErrQuestionRequired):
		writeError(w, http.StatusBadRequest, "Question ID is required")
	default:
		h.logger.Error().Err(err).Msg("History service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
