// Package workflow ведет страницы отправки и проверки кода:
// валидация, один запрос к шлюзу за раз, разбор результата.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/interpreter"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/language"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/validation"
)

// Observer получает итог каждой попытки, дошедшей до шлюза.
// Вызывается вне блокировки контроллера и не должен блокироваться надолго.
type Observer interface {
	Notify(outcome models.Outcome)
}

type ObserverFunc func(outcome models.Outcome)

func (f ObserverFunc) Notify(outcome models.Outcome) {
	f(outcome)
}

type Option func(*Controller)

func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithCheckDefaults значения порога и лимита для новой формы проверки
func WithCheckDefaults(threshold float64, maxResults int) Option {
	return func(c *Controller) {
		if threshold > 0 {
			c.defaultThreshold = threshold
		}
		if maxResults > 0 {
			c.defaultMaxResults = maxResults
		}
	}
}

type Controller struct {
	id       uuid.UUID
	kind     models.FlowKind
	gateway  gateway.Gateway
	store    credential.Store
	observer Observer
	logger   zerolog.Logger

	defaultThreshold  float64
	defaultMaxResults int

	mu             sync.Mutex
	phase          Phase
	submitForm     models.SubmissionForm
	checkForm      models.CheckForm
	languageLocked bool
	credential     string
	errors         validation.Errors
	alert          *models.AlertClassification
	submitted      *models.SubmitResponse
	lastResult     *models.DetectionResult
	report         *interpreter.Report
	closed         bool
	lastActive     time.Time
}

// NewController монтирует страницу: состояние Idle, ключ читается из хранилища.
func NewController(
	kind models.FlowKind,
	gw gateway.Gateway,
	store credential.Store,
	logger zerolog.Logger,
	opts ...Option,
) (*Controller, error) {
	if !models.IsValidFlowKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	id := uuid.New()
	c := &Controller{
		id:                id,
		kind:              kind,
		gateway:           gw,
		store:             store,
		observer:          ObserverFunc(func(models.Outcome) {}),
		logger:            logger.With().Str("session_id", id.String()).Str("flow", kind.String()).Logger(),
		defaultThreshold:  models.DefaultSimilarityThreshold,
		defaultMaxResults: models.DefaultMaxResults,
		phase:             PhaseIdle,
		errors:            validation.Errors{},
		lastActive:        time.Now(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.resetForms()

	if store != nil {
		value, err := store.Get()
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to read stored credential")
		}
		c.credential = value
	}

	return c, nil
}

func (c *Controller) ID() uuid.UUID {
	return c.id
}

func (c *Controller) Kind() models.FlowKind {
	return c.kind
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return c.snapshot()
}

// SetField меняет одно поле формы и сразу снимает ошибку этого поля.
// Пустой language возвращает автоопределение языка.
func (c *Controller) SetField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.touch()

	if err := c.setField(field, value); err != nil {
		return err
	}

	delete(c.errors, field)
	return nil
}

// SetFields применяет несколько полей разом; language применяется последним.
// При ошибке в любом поле форма остается прежней.
func (c *Controller) SetFields(fields map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.touch()

	saved := c.saveForms()
	if err := c.applyFields(fields); err != nil {
		c.restoreForms(saved)
		return err
	}

	for field := range fields {
		delete(c.errors, field)
	}
	return nil
}

func (c *Controller) applyFields(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for field := range fields {
		if field != models.FieldLanguage {
			names = append(names, field)
		}
	}
	sort.Strings(names)

	for _, field := range names {
		if err := c.setField(field, fields[field]); err != nil {
			return err
		}
	}

	if lang, ok := fields[models.FieldLanguage]; ok {
		return c.setField(models.FieldLanguage, lang)
	}
	return nil
}

type formSnapshot struct {
	submit         models.SubmissionForm
	check          models.CheckForm
	languageLocked bool
}

func (c *Controller) saveForms() formSnapshot {
	return formSnapshot{
		submit:         c.submitForm,
		check:          c.checkForm,
		languageLocked: c.languageLocked,
	}
}

func (c *Controller) restoreForms(s formSnapshot) {
	c.submitForm = s.submit
	c.checkForm = s.check
	c.languageLocked = s.languageLocked
}

func (c *Controller) setField(field, value string) error {
	switch c.kind {
	case models.FlowSubmit:
		return c.setSubmitField(field, value)
	default:
		return c.setCheckField(field, value)
	}
}

func (c *Controller) setSubmitField(field, value string) error {
	switch field {
	case models.FieldStudentID:
		c.submitForm.StudentID = value
	case models.FieldQuestionID:
		c.submitForm.QuestionID = value
	case models.FieldCode:
		c.submitForm.Code = value
	case models.FieldLanguage:
		lang, locked, err := parseLanguage(value)
		if err != nil {
			return err
		}
		c.languageLocked = locked
		c.submitForm.Language = lang
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (c *Controller) setCheckField(field, value string) error {
	switch field {
	case models.FieldQuestionID:
		c.checkForm.QuestionID = value
	case models.FieldCode:
		c.checkForm.Code = value
		if !c.languageLocked {
			c.checkForm.Language = language.Classify(value)
		}
	case models.FieldLanguage:
		lang, locked, err := parseLanguage(value)
		if err != nil {
			return err
		}
		c.languageLocked = locked
		if !locked {
			lang = language.Classify(c.checkForm.Code)
		}
		c.checkForm.Language = lang
	case models.FieldSimilarityThreshold:
		threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", ErrInvalidValue, field)
		}
		c.checkForm.SimilarityThreshold = threshold
	case models.FieldMaxResults:
		maxResults, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", ErrInvalidValue, field)
		}
		c.checkForm.MaxResults = maxResults
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func parseLanguage(value string) (models.Language, bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return language.Default, false, nil
	}

	if !models.IsValidLanguage(value) {
		return "", false, fmt.Errorf("%w: unsupported language %q", ErrInvalidValue, value)
	}
	return models.Language(value), true, nil
}

// SetCredential сохраняет ключ; пустое значение удаляет его из хранилища.
func (c *Controller) SetCredential(value string) error {
	value = strings.TrimSpace(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.touch()

	if c.store != nil {
		var err error
		if value == "" {
			err = c.store.Clear()
		} else {
			err = c.store.Set(value)
		}
		if err != nil {
			return fmt.Errorf("failed to persist credential: %w", err)
		}
	}

	c.credential = value
	return nil
}

// Submit запускает попытку: Validating, затем Pending и вызов шлюза.
// Повторный вызов во время Pending возвращает ErrInFlight и шлюз не трогает.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}

	c.touch()

	if c.phase == PhasePending {
		state := c.snapshot()
		c.mu.Unlock()
		return state, ErrInFlight
	}

	c.phase = PhaseValidating
	if errs := c.validate(); !errs.Empty() {
		c.errors = errs
		c.alert = models.NewErrorAlert(validation.FormErrorMessage)
		c.phase = PhaseFailed
		state := c.snapshot()
		c.mu.Unlock()

		c.logger.Debug().Int("field_errors", len(errs)).Msg("Form validation failed")
		return state, nil
	}

	c.errors = validation.Errors{}
	c.alert = nil
	c.submitted = nil
	c.lastResult = nil
	c.report = nil
	c.phase = PhasePending

	if c.kind == models.FlowSubmit {
		req := c.submissionRequest()
		c.mu.Unlock()
		return c.finishSubmit(req, c.gateway.Submit(ctx, req))
	}

	req := c.checkRequest()
	c.mu.Unlock()
	return c.finishCheck(req, c.gateway.Check(ctx, req))
}

func (c *Controller) validate() validation.Errors {
	if c.kind == models.FlowSubmit {
		return validation.ValidateSubmission(c.submitForm)
	}
	return validation.ValidateCheck(c.checkForm)
}

func (c *Controller) annotate(code string, chosen models.Language) models.Language {
	if c.languageLocked && chosen != "" {
		return chosen
	}
	return language.Classify(code)
}

func (c *Controller) submissionRequest() models.SubmissionRequest {
	form := c.submitForm
	return models.SubmissionRequest{
		StudentID:  strings.TrimSpace(form.StudentID),
		QuestionID: strings.TrimSpace(form.QuestionID),
		Code:       form.Code,
		Language:   c.annotate(form.Code, form.Language),
		Credential: c.credential,
	}
}

func (c *Controller) checkRequest() models.CheckRequest {
	form := c.checkForm
	return models.CheckRequest{
		QuestionID:          strings.TrimSpace(form.QuestionID),
		Code:                form.Code,
		Language:            c.annotate(form.Code, form.Language),
		SimilarityThreshold: form.SimilarityThreshold,
		MaxResults:          form.MaxResults,
		Credential:          c.credential,
	}
}

func (c *Controller) finishSubmit(req models.SubmissionRequest, res gateway.Result[models.SubmitResponse]) (State, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		c.logger.Debug().Msg("Dropping response for closed session")
		return State{}, ErrClosed
	}
	c.touch()

	outcome := c.newOutcome(req.QuestionID, req.Language)
	outcome.StudentID = req.StudentID

	if data, ok := res.Unwrap(); ok {
		c.submitted = &data
		c.alert = &models.AlertClassification{
			Severity: models.SeveritySuccess,
			Message:  SubmitMessage(data),
		}
		c.phase = PhaseSucceeded
		c.submitForm = models.NewSubmissionForm()
		c.languageLocked = false

		outcome.SubmissionID = data.SubmissionID
		outcome.ChunkCount = data.ChunkCount
	} else {
		c.alert = models.NewErrorAlert(res.Error)
		c.phase = PhaseFailed
	}

	outcome.Success = res.Success
	outcome.Severity = c.alert.Severity
	outcome.Message = c.alert.Message
	state := c.snapshot()
	c.mu.Unlock()

	c.logger.Info().
		Bool("success", res.Success).
		Str("question_id", req.QuestionID).
		Msg("Submit flow finished")

	c.observer.Notify(outcome)
	return state, nil
}

func (c *Controller) finishCheck(req models.CheckRequest, res gateway.Result[models.DetectionResult]) (State, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		c.logger.Debug().Msg("Dropping response for closed session")
		return State{}, ErrClosed
	}
	c.touch()

	outcome := c.newOutcome(req.QuestionID, req.Language)

	if data, ok := res.Unwrap(); ok {
		report := interpreter.BuildReport(&data, req.SimilarityThreshold)
		c.lastResult = &data
		c.report = &report
		alert := report.Alert
		c.alert = &alert
		c.phase = PhaseSucceeded

		outcome.MatchCount = data.Summary.TotalMatchedSubmissions
		outcome.MaxSimilarity = data.Summary.MaxSimilarity
		if data.FinalDecision != nil {
			outcome.Decision = data.FinalDecision.Decision
		}
	} else {
		c.alert = models.NewErrorAlert(res.Error)
		c.phase = PhaseFailed
	}

	outcome.Success = res.Success
	outcome.Severity = c.alert.Severity
	outcome.Message = c.alert.Message
	state := c.snapshot()
	c.mu.Unlock()

	c.logger.Info().
		Bool("success", res.Success).
		Str("question_id", req.QuestionID).
		Str("severity", outcome.Severity.String()).
		Msg("Check flow finished")

	c.observer.Notify(outcome)
	return state, nil
}

func (c *Controller) newOutcome(questionID string, lang models.Language) models.Outcome {
	return models.Outcome{
		ID:         uuid.NewString(),
		SessionID:  c.id.String(),
		Kind:       c.kind,
		QuestionID: questionID,
		Language:   lang,
		CreatedAt:  time.Now().UTC(),
	}
}

// SubmitMessage текст подтверждения успешной отправки
func SubmitMessage(resp models.SubmitResponse) string {
	return fmt.Sprintf(
		"Code submitted successfully! Submission ID: %s. Generated %d code chunks.",
		resp.SubmissionID, resp.ChunkCount,
	)
}

// Reset очищает форму, ошибки, алерт и результат. Во время Pending запрещен.
func (c *Controller) Reset() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return State{}, ErrClosed
	}
	c.touch()
	if c.phase == PhasePending {
		return c.snapshot(), ErrInFlight
	}

	c.resetForms()
	c.errors = validation.Errors{}
	c.alert = nil
	c.submitted = nil
	c.lastResult = nil
	c.report = nil
	c.phase = PhaseIdle

	return c.snapshot(), nil
}

func (c *Controller) resetForms() {
	c.languageLocked = false
	c.submitForm = models.NewSubmissionForm()
	c.checkForm = models.NewCheckForm()
	c.checkForm.SimilarityThreshold = c.defaultThreshold
	c.checkForm.MaxResults = c.defaultMaxResults
}

// Close размонтирует страницу. Ответ, пришедший после Close, отбрасывается.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) touch() {
	c.lastActive = time.Now()
}

// IdleFor сколько контроллер не трогали; во время Pending всегда 0
func (c *Controller) IdleFor(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePending {
		return 0
	}
	return now.Sub(c.lastActive)
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) snapshot() State {
	state := State{
		ID:             c.id.String(),
		Kind:           c.kind,
		Phase:          c.phase,
		LanguageLocked: c.languageLocked,
		HasCredential:  c.credential != "",
		Errors:         c.errors.Clone(),
		Result:         c.lastResult,
		Report:         c.report,
	}

	if c.kind == models.FlowSubmit {
		form := c.submitForm
		state.Submission = &form
	} else {
		form := c.checkForm
		state.Check = &form
	}

	if c.alert != nil {
		alert := *c.alert
		state.Alert = &alert
	}
	if c.submitted != nil {
		submitted := *c.submitted
		state.Submitted = &submitted
	}

	return state
}
