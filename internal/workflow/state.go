package workflow

import (
	"errors"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/interpreter"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/validation"
)

var (
	ErrInFlight        = errors.New("request already in flight")
	ErrClosed          = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownKind     = errors.New("unknown flow kind")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid field value")
)

// Phase фаза конечного автомата страницы
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhasePending    Phase = "pending"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

func (p Phase) String() string {
	return string(p)
}

// Terminal фаза, из которой принимается новая попытка
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// State снимок состояния контроллера для слоя отображения.
// Submission заполнен только для страницы отправки, Check только для страницы проверки.
type State struct {
	ID             string                      `json:"id"`
	Kind           models.FlowKind             `json:"kind"`
	Phase          Phase                       `json:"phase"`
	Submission     *models.SubmissionForm      `json:"submission,omitempty"`
	Check          *models.CheckForm           `json:"check,omitempty"`
	LanguageLocked bool                        `json:"languageLocked"`
	HasCredential  bool                        `json:"hasCredential"`
	Errors         validation.Errors           `json:"errors"`
	Alert          *models.AlertClassification `json:"alert,omitempty"`
	Submitted      *models.SubmitResponse      `json:"submitted,omitempty"`
	Result         *models.DetectionResult     `json:"result,omitempty"`
	Report         *interpreter.Report         `json:"report,omitempty"`
}

func (s State) Pending() bool {
	return s.Phase == PhasePending
}
