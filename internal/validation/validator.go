// Package validation проверяет формы до отправки на сервис детекции.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

const FormErrorMessage = "Please fix the errors in the form"

// Errors ошибки по полям формы, ключ - имя поля из json тега
type Errors map[string]string

func (e Errors) Empty() bool {
	return len(e) == 0
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Clone копия, чтобы состояние контроллера не делилось с вызывающим
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

type fieldRule struct {
	field string
	tag   string
}

var messages = map[fieldRule]string{
	{models.FieldStudentID, "required"}:      "Student ID is required",
	{models.FieldQuestionID, "required"}:     "Question ID is required",
	{models.FieldCode, "required"}:           "Code cannot be empty",
	{models.FieldCode, "min"}:                "Code is too short (minimum 10 characters)",
	{models.FieldSimilarityThreshold, "gte"}: "Similarity threshold must be between 50% and 95%",
	{models.FieldSimilarityThreshold, "lte"}: "Similarity threshold must be between 50% and 95%",
	{models.FieldMaxResults, "gte"}:          "Maximum results must be between 1 and 20",
	{models.FieldMaxResults, "lte"}:          "Maximum results must be between 1 and 20",
}

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func get() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		translator, _ = uni.GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())

		// имена полей берем из json тегов
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	})
	return validate, translator
}

// ValidateSubmission проверяет форму отправки. Для кода достаточно непустого значения.
func ValidateSubmission(form models.SubmissionForm) Errors {
	form.StudentID = strings.TrimSpace(form.StudentID)
	form.QuestionID = strings.TrimSpace(form.QuestionID)
	form.Code = strings.TrimSpace(form.Code)

	return run(form)
}

// ValidateCheck проверяет форму проверки: код после trim не короче 10 символов.
func ValidateCheck(form models.CheckForm) Errors {
	form.QuestionID = strings.TrimSpace(form.QuestionID)
	form.Code = strings.TrimSpace(form.Code)

	return run(form)
}

func run(form interface{}) Errors {
	v, trans := get()

	errs := Errors{}
	err := v.Struct(form)
	if err == nil {
		return errs
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// сюда попадаем только при неверном типе формы
		errs["form"] = err.Error()
		return errs
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, exists := errs[field]; exists {
			continue
		}

		if msg, ok := messages[fieldRule{field, fe.Tag()}]; ok {
			errs[field] = msg
			continue
		}
		errs[field] = fe.Translate(trans)
	}

	return errs
}
