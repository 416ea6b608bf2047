package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

type recorded struct {
	mu     sync.Mutex
	calls  int32
	method string
	path   string
	header http.Header
	body   map[string]interface{}
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rec.calls, 1)
		rec.mu.Lock()
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.header = r.Header.Clone()
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func TestSubmitSuccess(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"submissionId":42,"chunkCount":1}`)
	gw := NewClient(srv.URL, time.Second, zerolog.Nop())

	res := gw.Submit(context.Background(), models.SubmissionRequest{
		StudentID:  "s1",
		QuestionID: "q1",
		Code:       "function f(){return 1;}",
		Language:   models.LanguageJavaScript,
		Credential: "sk-user",
	})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, models.ID("42"), res.Data.SubmissionID)
	assert.Equal(t, 1, res.Data.ChunkCount)

	assert.EqualValues(t, 1, rec.calls)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/submit", rec.path)
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))
	assert.Equal(t, "sk-user", rec.header.Get(CredentialHeader))
	assert.Equal(t, map[string]interface{}{
		"studentId":  "s1",
		"questionId": "q1",
		"code":       "function f(){return 1;}",
		"language":   "javascript",
	}, rec.body)
}

func TestCredentialHeader(t *testing.T) {
	t.Run("omitted without credential", func(t *testing.T) {
		srv, rec := newServer(t, http.StatusOK, `{"status":"ok"}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.Health(context.Background())
		require.True(t, res.Success)
		assert.Equal(t, "ok", res.Data.Status)
		_, present := rec.header[http.CanonicalHeaderKey(CredentialHeader)]
		assert.False(t, present)
	})

	t.Run("falls back to store", func(t *testing.T) {
		srv, rec := newServer(t, http.StatusOK, `{"summary":{"totalMatchedSubmissions":0}}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop(),
			WithCredentialStore(credential.NewMemoryStore("sk-stored")))

		res := gw.Check(context.Background(), models.CheckRequest{QuestionID: "q1", Code: "0123456789"})
		require.True(t, res.Success)
		assert.Equal(t, "sk-stored", rec.header.Get(CredentialHeader))
	})

	t.Run("caller credential wins", func(t *testing.T) {
		srv, rec := newServer(t, http.StatusOK, `{"submissionId":"abc","chunkCount":2}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop(),
			WithCredentialStore(credential.NewMemoryStore("sk-stored")))

		res := gw.Submit(context.Background(), models.SubmissionRequest{
			StudentID: "s", QuestionID: "q", Code: "x", Credential: "sk-call",
		})
		require.True(t, res.Success)
		assert.Equal(t, models.ID("abc"), res.Data.SubmissionID)
		assert.Equal(t, "sk-call", rec.header.Get(CredentialHeader))
	})
}

func TestCheckDefaultsAndPayload(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{
		"summary":{"totalMatchedSubmissions":2,"highSimilarity":1,"moderateSimilarity":1,"maxSimilarity":0.91},
		"similarSubmissions":[{"submissionId":7,"studentId":"s2","similarity":0.91,"codePreview":"def f()","codeLength":30}],
		"similarChunks":[{"submissionId":7,"matchedChunkIndex":0,"similarity":0.9}],
		"final_decision":{"decision":"PLAGIARISM_LIKELY","confidence":0.8,"localMatchCount":2,"externalApiAvailable":false,"externalMatchCount":0,"reasons":["high local similarity"]},
		"external_result":{"available":false,"matches":[],"reason":"no key"}
	}`)
	gw := NewClient(srv.URL, time.Second, zerolog.Nop())

	res := gw.Check(context.Background(), models.CheckRequest{QuestionID: "q1", Code: "def f():\n    return 1"})
	require.True(t, res.Success, res.Error)

	assert.Equal(t, "/api/check", rec.path)
	assert.Equal(t, 0.75, rec.body["similarityThreshold"])
	assert.EqualValues(t, 5, rec.body["maxResults"])
	assert.Equal(t, "javascript", rec.body["language"])

	data := res.Data
	assert.Equal(t, 1, data.Summary.HighSimilarity)
	require.Len(t, data.SimilarSubmissions, 1)
	assert.Equal(t, models.ID("7"), data.SimilarSubmissions[0].SubmissionID)
	require.NotNil(t, data.FinalDecision)
	assert.Equal(t, models.DecisionPlagiarismLikely, data.FinalDecision.Decision)
	require.NotNil(t, data.ExternalResult)
	assert.Equal(t, "no key", data.ExternalResult.Reason)
}

func TestPreconditionsSkipNetwork(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{}`)
	gw := NewClient(srv.URL, time.Second, zerolog.Nop())
	ctx := context.Background()

	check := gw.Check(ctx, models.CheckRequest{Code: "0123456789"})
	assert.False(t, check.Success)
	assert.Equal(t, "Missing required fields: questionId and code are required", check.Error)

	blank := gw.Check(ctx, models.CheckRequest{QuestionID: "q1", Code: "   "})
	assert.False(t, blank.Success)
	assert.Equal(t, "Code cannot be empty", blank.Error)

	submit := gw.Submit(ctx, models.SubmissionRequest{QuestionID: "q1", Code: "x"})
	assert.False(t, submit.Success)
	assert.Contains(t, submit.Error, "studentId")

	list := gw.ListByQuestion(ctx, "")
	assert.Equal(t, "Question ID is required", list.Error)

	get := gw.GetByID(ctx, "")
	assert.Equal(t, "Submission ID is required", get.Error)

	assert.EqualValues(t, 0, atomic.LoadInt32(&rec.calls))
}

func TestRemoteErrors(t *testing.T) {
	t.Run("error body is surfaced", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusBadRequest, `{"error":"Invalid OpenAI API key"}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.Submit(context.Background(), models.SubmissionRequest{StudentID: "s", QuestionID: "q", Code: "x"})
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid OpenAI API key", res.Error)
	})

	t.Run("status without body", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusInternalServerError, ``)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.ListByQuestion(context.Background(), "q1")
		assert.False(t, res.Success)
		assert.Equal(t, "request failed with status code 500", res.Error)
	})
}

func TestTransportErrors(t *testing.T) {
	t.Run("server down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		gw := NewClient(url, time.Second, zerolog.Nop())
		res := gw.Health(context.Background())
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		gw := NewClient(srv.URL, 50*time.Millisecond, zerolog.Nop())
		res := gw.Check(context.Background(), models.CheckRequest{QuestionID: "q", Code: "0123456789"})
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})
}

func TestListAndGet(t *testing.T) {
	t.Run("list as array", func(t *testing.T) {
		srv, rec := newServer(t, http.StatusOK, `[{"id":1,"studentId":"s1"},{"id":2,"studentId":"s2"}]`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.ListByQuestion(context.Background(), "fib problem")
		require.True(t, res.Success, res.Error)
		assert.Equal(t, "/api/submissions/fib%20problem", rec.path)
		assert.Equal(t, 2, res.Data.Count)
		assert.Equal(t, "fib problem", res.Data.QuestionID)
		assert.Equal(t, models.ID("2"), res.Data.Submissions[1].ID)
	})

	t.Run("list as object", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `{"questionId":"q1","submissions":[{"id":"a"}]}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.ListByQuestion(context.Background(), "q1")
		require.True(t, res.Success, res.Error)
		assert.Equal(t, 1, res.Data.Count)
	})

	t.Run("get by id", func(t *testing.T) {
		srv, rec := newServer(t, http.StatusOK, `{"id":42,"studentId":"s1","questionId":"q1","code":"x"}`)
		gw := NewClient(srv.URL, time.Second, zerolog.Nop())

		res := gw.GetByID(context.Background(), "42")
		require.True(t, res.Success, res.Error)
		assert.Equal(t, "/api/submission/42", rec.path)
		assert.Equal(t, models.ID("42"), res.Data.ID)
	})
}
