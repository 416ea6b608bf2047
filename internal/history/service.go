// Package history сохраняет итоги попыток и рассылает события о них.
// Работа идет на пуле воркеров, страница ее не ждет.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/events"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/worker"
)

var (
	ErrDisabled         = errors.New("history is disabled")
	ErrQuestionRequired = errors.New("question id is required")
)

const taskTimeout = 10 * time.Second

type Service struct {
	repo      repository.OutcomeRepository
	publisher events.Publisher
	pool      *worker.Pool
	logger    zerolog.Logger
}

// NewService repo может быть nil, тогда история выключена; publisher nil заменяется NopPublisher
func NewService(
	repo repository.OutcomeRepository,
	publisher events.Publisher,
	pool *worker.Pool,
	logger zerolog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		pool:      pool,
		logger:    logger,
	}
}

func (s *Service) Enabled() bool {
	return s.repo != nil
}

// Notify ставит сохранение и публикацию в очередь пула
func (s *Service) Notify(outcome models.Outcome) {
	err := s.pool.Submit(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, taskTimeout)
		defer cancel()
		s.Record(ctx, outcome)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("outcome_id", outcome.ID).Msg("Outcome dropped")
	}
}

// Record синхронно сохраняет итог и публикует событие. Ошибки только логируются.
func (s *Service) Record(ctx context.Context, outcome models.Outcome) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, &outcome); err != nil {
			s.logger.Error().Err(err).Str("outcome_id", outcome.ID).Msg("Failed to save outcome")
		}
	}

	event := events.NewEvent(outcome)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to publish outcome event")
	}
}

func (s *Service) List(ctx context.Context, questionID string, limit int) ([]models.Outcome, error) {
	if s.repo == nil {
		return nil, ErrDisabled
	}

	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, ErrQuestionRequired
	}

	outcomes, err := s.repo.ListByQuestion(ctx, questionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return outcomes, nil
}
