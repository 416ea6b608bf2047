package interpreter

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

// BannerLevel уровень баннера итогового решения
type BannerLevel string

const (
	BannerDanger  BannerLevel = "danger"
	BannerWarning BannerLevel = "warning"
	BannerCaution BannerLevel = "caution"
	BannerSuccess BannerLevel = "success"
)

func (b BannerLevel) String() string {
	return string(b)
}

type Verdict struct {
	Decision             models.Decision `json:"decision"`
	Label                string          `json:"label"`
	Level                BannerLevel     `json:"level"`
	Confidence           float64         `json:"confidence"`
	ConfidenceLabel      string          `json:"confidenceLabel"`
	LocalMatchCount      int             `json:"localMatchCount"`
	ExternalAPIAvailable bool            `json:"externalApiAvailable"`
	ExternalMatchCount   int             `json:"externalMatchCount"`
	ExternalLabel        string          `json:"externalLabel"`
	Reasons              []string        `json:"reasons"`
}

// DecisionLevel отображает решение сервиса в уровень баннера
func DecisionLevel(decision models.Decision) BannerLevel {
	switch decision {
	case models.DecisionPlagiarismConfirmed:
		return BannerDanger
	case models.DecisionPlagiarismLikely, models.DecisionSuspicious:
		return BannerWarning
	case models.DecisionLowConfidenceMatch:
		return BannerCaution
	default:
		return BannerSuccess
	}
}

// NewVerdict nil, если сервис не вернул итоговое решение
func NewVerdict(decision *models.FinalDecision) *Verdict {
	if decision == nil {
		return nil
	}

	v := &Verdict{
		Decision:             decision.Decision,
		Label:                strings.ReplaceAll(decision.Decision.String(), "_", " "),
		Level:                DecisionLevel(decision.Decision),
		Confidence:           decision.Confidence,
		ConfidenceLabel:      Percent(decision.Confidence, 0),
		LocalMatchCount:      decision.LocalMatchCount,
		ExternalAPIAvailable: decision.ExternalAPIAvailable,
		ExternalMatchCount:   decision.ExternalMatchCount,
		ExternalLabel:        "Not available",
		Reasons:              append([]string(nil), decision.Reasons...),
	}

	if decision.ExternalAPIAvailable {
		v.ExternalLabel = pluralMatches(decision.ExternalMatchCount)
	}
	if v.Reasons == nil {
		v.Reasons = []string{}
	}

	return v
}

func pluralMatches(n int) string {
	return fmt.Sprintf("%d matches found", n)
}
