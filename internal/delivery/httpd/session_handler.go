package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/workflow"
)

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

func (h *Handler) MountSession(w http.ResponseWriter, r *http.Request) {
	kind := models.FlowKind(chi.URLParam(r, "kind"))

	c, err := h.sessions.Mount(kind)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    c.State(),
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	writeSuccess(w, c.State())
}

func (h *Handler) UnmountSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Unmount(chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Session closed",
	})
}

// UpdateFields тело - объект поле -> значение; числа принимаются как есть
func (h *Handler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := fieldValues(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.SetFields(fields); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, c.State())
}

func fieldValues(raw map[string]json.RawMessage) (map[string]string, error) {
	fields := make(map[string]string, len(raw))
	for field, value := range raw {
		value = bytes.TrimSpace(value)

		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			fields[field] = s
			continue
		}

		if bytes.Equal(value, []byte("null")) {
			fields[field] = ""
			continue
		}

		if len(value) > 0 && (value[0] == '{' || value[0] == '[') {
			return nil, errors.New(field + " must be a string or a number")
		}
		fields[field] = strings.TrimSpace(string(value))
	}
	return fields, nil
}

func (h *Handler) UpdateSessionCredential(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.SetCredential(req.APIKey); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, c.State())
}

// SubmitSession попытка доводится до конца даже если клиент отключился
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	state, err := c.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, state)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	state, err := c.Reset()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, state)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*workflow.Controller, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return nil, false
	}

	c, err := h.sessions.Get(id)
	if err != nil {
		h.handleServiceError(w, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrSessionNotFound), errors.Is(err, workflow.ErrClosed):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, workflow.ErrInFlight):
		writeError(w, http.StatusConflict, "A request is already in progress")
	case errors.Is(err, workflow.ErrUnknownKind),
		errors.Is(err, workflow.ErrUnknownField),
		errors.Is(err, workflow.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Session service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
