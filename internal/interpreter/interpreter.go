// Package interpreter превращает ответ проверки в вердикт для пользователя.
//
// Алерт по сводке и баннер итогового решения считаются независимо
// и могут противоречить друг другу; показываются оба.
package interpreter

import (
	"fmt"
	"math"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

// Interpret классифицирует сводку локального поиска. Первое совпавшее правило побеждает.
func Interpret(result *models.DetectionResult, threshold float64) models.AlertClassification {
	if result == nil {
		return models.AlertClassification{
			Severity: models.SeverityError,
			Message:  "No detection result received",
		}
	}

	summary := result.Summary

	switch {
	case summary.TotalMatchedSubmissions == 0:
		return models.AlertClassification{
			Severity: models.SeveritySuccess,
			Message:  originalMessage(threshold),
		}
	case summary.HighSimilarity > 0:
		return models.AlertClassification{
			Severity: models.SeverityWarning,
			Message: fmt.Sprintf(
				"Found %d highly similar submission(s)! Please review the matches below.",
				summary.HighSimilarity,
			),
		}
	default:
		count := summary.ModerateSimilarity
		if count == 0 {
			count = summary.TotalMatchedSubmissions
		}
		return models.AlertClassification{
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Found %d moderately similar submission(s).", count),
		}
	}
}

func originalMessage(threshold float64) string {
	if threshold <= 0 {
		return "No similar submissions found! This code appears to be original."
	}
	return fmt.Sprintf(
		"No similar submissions found at the %s threshold! This code appears to be original.",
		Percent(threshold, 0),
	)
}

// Percent 0.756 -> "75.6%" при digits=1
func Percent(value float64, digits int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return fmt.Sprintf("%.*f%%", digits, value*100)
}
