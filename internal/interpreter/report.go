package interpreter

import (
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

const (
	VeryHighSimilarity = 0.95
	HighSimilarity     = 0.85
	ModerateSimilarity = 0.75

	// PreviewLimit длина превью совпавшего кода во внешней проверке
	PreviewLimit = 150

	unavailableNotice = "External verification service is currently unavailable"
)

type SimilarityLevel string

const (
	LevelVeryHigh SimilarityLevel = "Very High"
	LevelHigh     SimilarityLevel = "High"
	LevelModerate SimilarityLevel = "Moderate"
	LevelLow      SimilarityLevel = "Low"
)

// Report все, что нужно слою отображения для страницы проверки
type Report struct {
	Alert       models.AlertClassification `json:"alert"`
	Verdict     *Verdict                   `json:"verdict,omitempty"`
	Summary     models.Summary             `json:"summary"`
	MaxLabel    string                     `json:"maxSimilarityLabel"`
	External    *ExternalSummary           `json:"external,omitempty"`
	Submissions []SubmissionView           `json:"submissions"`
	Chunks      []ChunkView                `json:"chunks"`
}

type SubmissionView struct {
	models.SubmissionMatch
	Level      SimilarityLevel `json:"level"`
	Percentage string          `json:"percentage"`
}

type ChunkView struct {
	models.ChunkMatch
	High       bool   `json:"high"`
	Percentage string `json:"percentage"`
}

type ExternalSummary struct {
	Available    bool          `json:"available"`
	TotalMatches int           `json:"totalMatches"`
	Notice       string        `json:"notice,omitempty"`
	CopyDetect   *DetectorView `json:"copyDetect,omitempty"`
	ASTDetect    *DetectorView `json:"astDetect,omitempty"`
}

type DetectorView struct {
	MatchesFound bool        `json:"matchesFound"`
	Language     string      `json:"language,omitempty"`
	Matches      []MatchView `json:"matches"`
}

type MatchView struct {
	StudentID  string `json:"studentId"`
	Percentage string `json:"percentage"`
	Preview    string `json:"preview,omitempty"`
}

// Level уровень похожести для карточки совпадения
func Level(score float64) SimilarityLevel {
	switch {
	case score >= VeryHighSimilarity:
		return LevelVeryHigh
	case score >= HighSimilarity:
		return LevelHigh
	case score >= ModerateSimilarity:
		return LevelModerate
	default:
		return LevelLow
	}
}

// BuildReport собирает отчет. Ничего не меняет в result.
func BuildReport(result *models.DetectionResult, threshold float64) Report {
	report := Report{
		Alert:       Interpret(result, threshold),
		Submissions: []SubmissionView{},
		Chunks:      []ChunkView{},
	}
	if result == nil {
		return report
	}

	report.Summary = result.Summary
	report.MaxLabel = Percent(result.Summary.MaxSimilarity, 1)
	report.Verdict = NewVerdict(result.FinalDecision)
	report.External = Summarize(result.ExternalResult)

	for _, s := range result.SimilarSubmissions {
		report.Submissions = append(report.Submissions, SubmissionView{
			SubmissionMatch: s,
			Level:           Level(s.Similarity),
			Percentage:      Percent(s.Similarity, 1),
		})
	}

	for _, c := range result.SimilarChunks {
		report.Chunks = append(report.Chunks, ChunkView{
			ChunkMatch: c,
			High:       c.Similarity >= HighSimilarity,
			Percentage: Percent(c.Similarity, 1),
		})
	}

	return report
}

// Summarize сводка внешней проверки. Недоступность сервиса не ошибка всей проверки:
// возвращается уведомление, локальные результаты остаются.
func Summarize(external *models.ExternalResult) *ExternalSummary {
	if external == nil {
		return nil
	}

	if !external.Available {
		notice := external.Error
		if notice == "" {
			notice = external.Reason
		}
		if notice == "" {
			notice = unavailableNotice
		}
		return &ExternalSummary{Notice: notice}
	}

	summary := &ExternalSummary{
		Available:    true,
		TotalMatches: len(external.Matches),
		CopyDetect:   detectorView(external.CopyDetect),
	}

	// astDetect приоритетнее устаревшего treeSitterPython
	ast := external.ASTDetect
	if ast == nil {
		ast = external.TreeSitterPython
	}
	summary.ASTDetect = detectorView(ast)
	if summary.ASTDetect != nil && external.ASTDetect != nil && external.TreeSitterPython != nil {
		summary.ASTDetect.MatchesFound = external.ASTDetect.MatchesFound || external.TreeSitterPython.MatchesFound
		if len(summary.ASTDetect.Matches) == 0 {
			summary.ASTDetect.Matches = matchViews(external.TreeSitterPython.Matches)
		}
	}

	return summary
}

func detectorView(d *models.DetectorResult) *DetectorView {
	if d == nil {
		return nil
	}
	return &DetectorView{
		MatchesFound: d.MatchesFound,
		Language:     strings.ToUpper(d.Language),
		Matches:      matchViews(d.Matches),
	}
}

func matchViews(matches []models.ExternalMatch) []MatchView {
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchView{
			StudentID:  m.MatchedStudentID,
			Percentage: Percent(m.SimilarityScore, 1),
			Preview:    Preview(m.MatchedCode, PreviewLimit),
		})
	}
	return out
}

// Preview обрезает код до limit символов и добавляет "..."
func Preview(code string, limit int) string {
	runes := []rune(code)
	if len(runes) <= limit {
		return code
	}
	return string(runes[:limit]) + "..."
}
