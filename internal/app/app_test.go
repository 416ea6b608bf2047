package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/health"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Address: "127.0.0.1:0"},
		API:        config.APIConfig{BaseURL: baseURL, Timeout: time.Second},
		Health:     config.HealthConfig{Enabled: true, Interval: time.Hour},
		Check:      config.CheckConfig{SimilarityThreshold: 0.75, MaxResults: 5},
		Credential: config.CredentialConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "credentials.yaml"), Key: credential.DefaultKey},
		Workers:    config.WorkersConfig{Count: 1, QueueSize: 4, SubmitTimeout: time.Second},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
	}
}

func TestNewCredentialStore(t *testing.T) {
	mem, err := NewCredentialStore(config.CredentialConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &credential.MemoryStore{}, mem)

	file, err := NewCredentialStore(config.CredentialConfig{
		Backend: "file",
		Path:    filepath.Join(t.TempDir(), "c.yaml"),
		Key:     credential.DefaultKey,
	})
	require.NoError(t, err)
	assert.IsType(t, &credential.FileStore{}, file)
}

func TestAppServesStatusAndPollsDetector(t *testing.T) {
	detector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"Server is running"}`))
	}))
	defer detector.Close()

	a, err := New(testConfig(t, detector.URL), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go a.server.Serve(l)

	require.Eventually(t, func() bool {
		return a.poller.Snapshot().Status == health.StatusOnline
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + l.Addr().String() + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Detector health.Snapshot `json:"detector"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, health.StatusOnline, body.Data.Detector.Status)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	require.NoError(t, a.Shutdown(shutdownCtx))
}
