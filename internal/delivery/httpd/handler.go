package httpd

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/health"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/history"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/worker"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/workflow"
)

const version = "1.0.0"

type Handler struct {
	sessions *workflow.Registry
	gateway  gateway.Gateway
	poller   *health.Poller
	history  *history.Service
	store    credential.Store
	pool     *worker.Pool
	logger   zerolog.Logger
}

func NewHandler(
	sessions *workflow.Registry,
	gw gateway.Gateway,
	poller *health.Poller,
	historyService *history.Service,
	store credential.Store,
	pool *worker.Pool,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		gateway:  gw,
		poller:   poller,
		history:  historyService,
		store:    store,
		pool:     pool,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/status", h.GetStatus)

		api.Route("/sessions", func(r chi.Router) {
			r.Post("/{kind}", h.MountSession)
			r.Get("/{id}", h.GetSession)
			r.Delete("/{id}", h.UnmountSession)
			r.Patch("/{id}/fields", h.UpdateFields)
			r.Put("/{id}/credential", h.UpdateSessionCredential)
			r.Post("/{id}/submit", h.SubmitSession)
			r.Post("/{id}/reset", h.ResetSession)
		})

		api.Get("/submissions/{questionId}", h.ListSubmissions)
		api.Get("/submission/{id}", h.GetSubmission)

		api.Route("/credential", func(r chi.Router) {
			r.Get("/", h.GetCredential)
			r.Put("/", h.PutCredential)
			r.Delete("/", h.DeleteCredential)
		})

		api.Get("/history/{questionId}", h.GetHistory)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "similarity-client",
		"version":   version,
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
