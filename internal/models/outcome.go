package models

import "time"

// FlowKind страница, на которой завершилась попытка
type FlowKind string

const (
	FlowSubmit FlowKind = "submit"
	FlowCheck  FlowKind = "check"
)

func (k FlowKind) String() string {
	return string(k)
}

func IsValidFlowKind(k FlowKind) bool {
	return k == FlowSubmit || k == FlowCheck
}

// Outcome итог одной попытки отправки или проверки.
// Уходит в историю и в очередь событий.
type Outcome struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Kind          FlowKind  `json:"kind"`
	StudentID     string    `json:"studentId,omitempty"`
	QuestionID    string    `json:"questionId"`
	Language      Language  `json:"language"`
	Success       bool      `json:"success"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`
	SubmissionID  ID        `json:"submissionId,omitempty"`
	ChunkCount    int       `json:"chunkCount,omitempty"`
	MatchCount    int       `json:"matchCount,omitempty"`
	MaxSimilarity float64   `json:"maxSimilarity,omitempty"`
	Decision      Decision  `json:"decision,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
