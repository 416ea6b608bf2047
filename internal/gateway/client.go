// Package gateway оборачивает пять вызовов удаленного сервиса детекции.
//
// Каждый вызов делает ровно один HTTP запрос (без повторов) с общим таймаутом
// и сводит любой исход к Result.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

const (
	// CredentialHeader заголовок с ключом пользователя, имя фиксировано сервисом
	CredentialHeader = "X-OpenAI-API-Key"

	// DefaultTimeout рассчитан на генерацию эмбеддингов
	DefaultTimeout = 30 * time.Second

	DefaultBaseURL = "http://localhost:3000"
)

const (
	healthPath      = "/api/health"
	submitPath      = "/api/submit"
	checkPath       = "/api/check"
	submissionsPath = "/api/submissions/"
	submissionPath  = "/api/submission/"
)

type Gateway interface {
	Health(ctx context.Context) Result[models.HealthStatus]
	Submit(ctx context.Context, req models.SubmissionRequest) Result[models.SubmitResponse]
	Check(ctx context.Context, req models.CheckRequest) Result[models.DetectionResult]
	ListByQuestion(ctx context.Context, questionID string) Result[models.SubmissionList]
	GetByID(ctx context.Context, submissionID string) Result[models.Submission]
}

type client struct {
	baseURL     string
	timeout     time.Duration
	client      *http.Client
	credentials credential.Store
	logger      zerolog.Logger
}

type Option func(*client)

// WithCredentialStore ключ из хранилища используется, если вызывающий не передал свой
func WithCredentialStore(store credential.Store) Option {
	return func(c *client) {
		c.credentials = store
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.client = httpClient
	}
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *client) Health(ctx context.Context) Result[models.HealthStatus] {
	var status models.HealthStatus
	if err := c.do(ctx, http.MethodGet, healthPath, nil, "", &status); err != nil {
		return Fail[models.HealthStatus](message(err, "Failed to connect to server"))
	}
	return OK(status)
}

func (c *client) Submit(ctx context.Context, req models.SubmissionRequest) Result[models.SubmitResponse] {
	const fallback = "Failed to submit code"

	if req.StudentID == "" || req.QuestionID == "" || req.Code == "" {
		return Fail[models.SubmitResponse](message(precondition("Missing required fields: studentId, questionId, and code are required"), fallback))
	}
	if strings.TrimSpace(req.Code) == "" {
		return Fail[models.SubmitResponse](message(precondition("Code cannot be empty"), fallback))
	}
	if req.Language == "" {
		req.Language = models.LanguageJavaScript
	}

	var resp models.SubmitResponse
	if err := c.do(ctx, http.MethodPost, submitPath, req, req.Credential, &resp); err != nil {
		return Fail[models.SubmitResponse](message(err, fallback))
	}

	c.logger.Info().
		Str("submission_id", resp.SubmissionID.String()).
		Int("chunk_count", resp.ChunkCount).
		Msg("Code submitted")

	return OK(resp)
}

func (c *client) Check(ctx context.Context, req models.CheckRequest) Result[models.DetectionResult] {
	const fallback = "Failed to check similarity"

	if req.QuestionID == "" || req.Code == "" {
		return Fail[models.DetectionResult](message(precondition("Missing required fields: questionId and code are required"), fallback))
	}
	if strings.TrimSpace(req.Code) == "" {
		return Fail[models.DetectionResult](message(precondition("Code cannot be empty"), fallback))
	}
	if req.Language == "" {
		req.Language = models.LanguageJavaScript
	}
	if req.SimilarityThreshold == 0 {
		req.SimilarityThreshold = models.DefaultSimilarityThreshold
	}
	if req.MaxResults == 0 {
		req.MaxResults = models.DefaultMaxResults
	}

	var result models.DetectionResult
	if err := c.do(ctx, http.MethodPost, checkPath, req, req.Credential, &result); err != nil {
		return Fail[models.DetectionResult](message(err, fallback))
	}

	c.logger.Info().
		Str("question_id", req.QuestionID).
		Int("matched", result.Summary.TotalMatchedSubmissions).
		Float64("max_similarity", result.Summary.MaxSimilarity).
		Msg("Similarity check completed")

	return OK(result)
}

func (c *client) ListByQuestion(ctx context.Context, questionID string) Result[models.SubmissionList] {
	const fallback = "Failed to get submissions"

	if questionID == "" {
		return Fail[models.SubmissionList](message(precondition("Question ID is required"), fallback))
	}

	var list models.SubmissionList
	if err := c.do(ctx, http.MethodGet, submissionsPath+url.PathEscape(questionID), nil, "", &list); err != nil {
		return Fail[models.SubmissionList](message(err, fallback))
	}
	if list.QuestionID == "" {
		list.QuestionID = questionID
	}
	return OK(list)
}

func (c *client) GetByID(ctx context.Context, submissionID string) Result[models.Submission] {
	const fallback = "Failed to get submission"

	if submissionID == "" {
		return Fail[models.Submission](message(precondition("Submission ID is required"), fallback))
	}

	var submission models.Submission
	if err := c.do(ctx, http.MethodGet, submissionPath+url.PathEscape(submissionID), nil, "", &submission); err != nil {
		return Fail[models.Submission](message(err, fallback))
	}
	return OK(submission)
}

// do выполняет один запрос и декодирует 2xx ответ в dst
func (c *client) do(ctx context.Context, method, path string, body interface{}, apiKey string, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if key := c.resolveCredential(apiKey); key != "" {
		req.Header.Set(CredentialHeader, key)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("API request")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("API request failed")
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("path", path).
		Dur("duration", time.Since(start)).
		Msg("API response")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &RemoteError{StatusCode: resp.StatusCode}

		var errBody models.ErrorBody
		if json.Unmarshal(data, &errBody) == nil {
			remote.Message = errBody.Error
			if remote.Message == "" {
				remote.Message = errBody.Message
			}
		}

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("error", remote.Error()).
			Msg("API response error")
		return remote
	}

	if dst == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *client) resolveCredential(apiKey string) string {
	if apiKey != "" {
		return apiKey
	}
	if c.credentials == nil {
		return ""
	}

	key, err := c.credentials.Get()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read stored credential")
		return ""
	}
	return key
}
