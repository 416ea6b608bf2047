// Package events публикует итоги отправок и проверок в RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

const (
	TypeSubmissionCreated = "submission.created"
	TypeCheckCompleted    = "check.completed"
	TypeSubmissionFailed  = "submission.failed"
	TypeCheckFailed       = "check.failed"
)

type Event struct {
	EventID    string         `json:"eventId"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Outcome    models.Outcome `json:"outcome"`
}

// NewEvent тип события и routing key определяются страницей и успехом попытки
func NewEvent(outcome models.Outcome) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType(outcome),
		OccurredAt: time.Now().UTC(),
		Outcome:    outcome,
	}
}

func eventType(outcome models.Outcome) string {
	switch {
	case outcome.Kind == models.FlowSubmit && outcome.Success:
		return TypeSubmissionCreated
	case outcome.Kind == models.FlowSubmit:
		return TypeSubmissionFailed
	case outcome.Success:
		return TypeCheckCompleted
	default:
		return TypeCheckFailed
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher используется, когда события выключены в конфиге
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
