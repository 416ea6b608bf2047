package models

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) String() string {
	return string(s)
}

type AlertClassification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// NewErrorAlert алерт уровня error с переданным текстом
func NewErrorAlert(message string) *AlertClassification {
	return &AlertClassification{
		Severity: SeverityError,
		Message:  message,
	}
}
