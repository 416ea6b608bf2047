package models

// Состояние форм двух страниц. Поля валидируются пакетом validation,
// теги json совпадают с ключами ошибок.

const (
	DefaultSimilarityThreshold = 0.75
	DefaultMaxResults          = 5

	MinSimilarityThreshold = 0.5
	MaxSimilarityThreshold = 0.95
	MinMaxResults          = 1
	MaxMaxResults          = 20
	MinCheckCodeLength     = 10
)

const (
	FieldStudentID           = "studentId"
	FieldQuestionID          = "questionId"
	FieldCode                = "code"
	FieldLanguage            = "language"
	FieldSimilarityThreshold = "similarityThreshold"
	FieldMaxResults          = "maxResults"
)

type SubmissionForm struct {
	StudentID  string   `json:"studentId" validate:"required"`
	QuestionID string   `json:"questionId" validate:"required"`
	Code       string   `json:"code" validate:"required"`
	Language   Language `json:"language"`
}

type CheckForm struct {
	QuestionID          string   `json:"questionId" validate:"required"`
	Code                string   `json:"code" validate:"required,min=10"`
	Language            Language `json:"language"`
	SimilarityThreshold float64  `json:"similarityThreshold" validate:"gte=0.5,lte=0.95"`
	MaxResults          int      `json:"maxResults" validate:"gte=1,lte=20"`
}

func NewSubmissionForm() SubmissionForm {
	return SubmissionForm{Language: LanguageJavaScript}
}

func NewCheckForm() CheckForm {
	return CheckForm{
		Language:            LanguageJavaScript,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxResults:          DefaultMaxResults,
	}
}
