package models

// DetectionResult ответ POST /api/check
type DetectionResult struct {
	Summary            Summary           `json:"summary"`
	SimilarSubmissions []SubmissionMatch `json:"similarSubmissions"`
	SimilarChunks      []ChunkMatch      `json:"similarChunks"`
	FinalDecision      *FinalDecision    `json:"final_decision,omitempty"`
	ExternalResult     *ExternalResult   `json:"external_result,omitempty"`
}

type Summary struct {
	TotalMatchedSubmissions int     `json:"totalMatchedSubmissions"`
	HighSimilarity          int     `json:"highSimilarity"`
	ModerateSimilarity      int     `json:"moderateSimilarity"`
	MaxSimilarity           float64 `json:"maxSimilarity"`
}

type SubmissionMatch struct {
	SubmissionID ID      `json:"submissionId"`
	StudentID    string  `json:"studentId"`
	Similarity   float64 `json:"similarity"`
	CodePreview  string  `json:"codePreview"`
	CodeLength   int     `json:"codeLength"`
}

type ChunkMatch struct {
	SubmissionID      ID      `json:"submissionId"`
	MatchedChunkIndex int     `json:"matchedChunkIndex"`
	Similarity        float64 `json:"similarity"`
	QueryChunkPreview string  `json:"queryChunkPreview,omitempty"`
	MatchedChunkText  string  `json:"matchedChunkText,omitempty"`
}

type Decision string

const (
	DecisionPlagiarismConfirmed Decision = "PLAGIARISM_CONFIRMED"
	DecisionPlagiarismLikely    Decision = "PLAGIARISM_LIKELY"
	DecisionSuspicious          Decision = "SUSPICIOUS"
	DecisionLowConfidenceMatch  Decision = "LOW_CONFIDENCE_MATCH"
)

func (d Decision) String() string {
	return string(d)
}

type FinalDecision struct {
	Decision             Decision `json:"decision"`
	Confidence           float64  `json:"confidence"`
	LocalMatchCount      int      `json:"localMatchCount"`
	ExternalAPIAvailable bool     `json:"externalApiAvailable"`
	ExternalMatchCount   int      `json:"externalMatchCount"`
	Reasons              []string `json:"reasons"`
}

// ExternalResult результат внешней двойной проверки (copy detection + AST)
type ExternalResult struct {
	Available        bool            `json:"available"`
	Matches          []ExternalMatch `json:"matches"`
	CopyDetect       *DetectorResult `json:"copyDetect,omitempty"`
	ASTDetect        *DetectorResult `json:"astDetect,omitempty"`
	TreeSitterPython *DetectorResult `json:"treeSitterPython,omitempty"`
	Error            string          `json:"error,omitempty"`
	Reason           string          `json:"reason,omitempty"`
}

type DetectorResult struct {
	MatchesFound bool            `json:"matchesFound"`
	Language     string          `json:"language,omitempty"`
	Matches      []ExternalMatch `json:"matches"`
}

type ExternalMatch struct {
	MatchedStudentID string  `json:"matchedStudentId"`
	SimilarityScore  float64 `json:"similarityScore"`
	MatchedCode      string  `json:"matchedCode,omitempty"`
}
