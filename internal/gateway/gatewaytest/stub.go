// Package gatewaytest заглушка шлюза для тестов пакетов выше по стеку.
package gatewaytest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

// Stub отвечает через заданные функции и считает вызовы.
// Незаданная функция возвращает неуспешный конверт.
type Stub struct {
	HealthFunc         func(ctx context.Context) gateway.Result[models.HealthStatus]
	SubmitFunc         func(ctx context.Context, req models.SubmissionRequest) gateway.Result[models.SubmitResponse]
	CheckFunc          func(ctx context.Context, req models.CheckRequest) gateway.Result[models.DetectionResult]
	ListByQuestionFunc func(ctx context.Context, questionID string) gateway.Result[models.SubmissionList]
	GetByIDFunc        func(ctx context.Context, submissionID string) gateway.Result[models.Submission]

	healthCalls atomic.Int32
	submitCalls atomic.Int32
	checkCalls  atomic.Int32
	listCalls   atomic.Int32
	getCalls    atomic.Int32

	mu          sync.Mutex
	submissions []models.SubmissionRequest
	checks      []models.CheckRequest
}

var _ gateway.Gateway = (*Stub)(nil)

const notConfigured = "stub: not configured"

func (s *Stub) Health(ctx context.Context) gateway.Result[models.HealthStatus] {
	s.healthCalls.Add(1)
	if s.HealthFunc == nil {
		return gateway.Fail[models.HealthStatus](notConfigured)
	}
	return s.HealthFunc(ctx)
}

func (s *Stub) Submit(ctx context.Context, req models.SubmissionRequest) gateway.Result[models.SubmitResponse] {
	s.submitCalls.Add(1)
	s.mu.Lock()
	s.submissions = append(s.submissions, req)
	s.mu.Unlock()

	if s.SubmitFunc == nil {
		return gateway.Fail[models.SubmitResponse](notConfigured)
	}
	return s.SubmitFunc(ctx, req)
}

func (s *Stub) Check(ctx context.Context, req models.CheckRequest) gateway.Result[models.DetectionResult] {
	s.checkCalls.Add(1)
	s.mu.Lock()
	s.checks = append(s.checks, req)
	s.mu.Unlock()

	if s.CheckFunc == nil {
		return gateway.Fail[models.DetectionResult](notConfigured)
	}
	return s.CheckFunc(ctx, req)
}

func (s *Stub) ListByQuestion(ctx context.Context, questionID string) gateway.Result[models.SubmissionList] {
	s.listCalls.Add(1)
	if s.ListByQuestionFunc == nil {
		return gateway.Fail[models.SubmissionList](notConfigured)
	}
	return s.ListByQuestionFunc(ctx, questionID)
}

func (s *Stub) GetByID(ctx context.Context, submissionID string) gateway.Result[models.Submission] {
	s.getCalls.Add(1)
	if s.GetByIDFunc == nil {
		return gateway.Fail[models.Submission](notConfigured)
	}
	return s.GetByIDFunc(ctx, submissionID)
}

func (s *Stub) HealthCalls() int { return int(s.healthCalls.Load()) }
func (s *Stub) SubmitCalls() int { return int(s.submitCalls.Load()) }
func (s *Stub) CheckCalls() int  { return int(s.checkCalls.Load()) }
func (s *Stub) ListCalls() int   { return int(s.listCalls.Load()) }
func (s *Stub) GetCalls() int    { return int(s.getCalls.Load()) }

// LastSubmission последний запрос Submit
func (s *Stub) LastSubmission() (models.SubmissionRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.submissions) == 0 {
		return models.SubmissionRequest{}, false
	}
	return s.submissions[len(s.submissions)-1], true
}

// LastCheck последний запрос Check
func (s *Stub) LastCheck() (models.CheckRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.checks) == 0 {
		return models.CheckRequest{}, false
	}
	return s.checks[len(s.checks)-1], true
}
