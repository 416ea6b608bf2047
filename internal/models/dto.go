package models

// Data Transfer Objects удаленного сервиса детекции

type SubmissionRequest struct {
	StudentID  string   `json:"studentId"`
	QuestionID string   `json:"questionId"`
	Code       string   `json:"code"`
	Language   Language `json:"language"`
	Credential string   `json:"-"` // уходит заголовком, не в теле
}

type SubmitResponse struct {
	SubmissionID ID     `json:"submissionId"`
	ChunkCount   int    `json:"chunkCount"`
	Message      string `json:"message,omitempty"`
}

type CheckRequest struct {
	QuestionID          string   `json:"questionId"`
	Code                string   `json:"code"`
	Language            Language `json:"language"`
	SimilarityThreshold float64  `json:"similarityThreshold"`
	MaxResults          int      `json:"maxResults"`
	Credential          string   `json:"-"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Submission struct {
	ID         ID       `json:"id"`
	StudentID  string   `json:"studentId"`
	QuestionID string   `json:"questionId"`
	Code       string   `json:"code,omitempty"`
	Language   Language `json:"language,omitempty"`
	ChunkCount int      `json:"chunkCount,omitempty"`
	CreatedAt  string   `json:"createdAt,omitempty"`
}

type SubmissionList struct {
	QuestionID  string       `json:"questionId,omitempty"`
	Count       int          `json:"count"`
	Submissions []Submission `json:"submissions"`
}

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
