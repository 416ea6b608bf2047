// Package language определяет язык исходного кода по сигнатурам.
//
// Правила проверяются строго по порядку, первое сработавшее определяет язык.
// Паттерны пересекаются (class Foo: похож и на Python, и на JavaScript),
// поэтому порядок в rules менять нельзя.
package language

import (
	"regexp"
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

// Default язык, если ни одно правило не сработало
const Default = models.LanguageJavaScript

type Rule struct {
	Name     string
	Language models.Language
	Match    func(code string) bool
}

var (
	pythonKeywordRe = regexp.MustCompile(`(?m)^(?:(?:def|class|import|from)\s|if __name__)`)
	pythonColonRe   = regexp.MustCompile(`(?m):[ \t]*$`)
	pythonPrintRe   = regexp.MustCompile(`\bprint\(`)
	javaRe          = regexp.MustCompile(`public\s+(class|static|void)|import\s+java\.|System\.out`)
	cppRe           = regexp.MustCompile(`#include\s*<|std::|\bcout\b|\bcin\b|\bnamespace\b`)
	javascriptRe    = regexp.MustCompile(`\bfunction\b|\b(const|let|var)\s+\w+\s*=|=>|console\.log`)
	pythonIndentRe  = regexp.MustCompile(`(?m)^ {4}[a-z]`)
)

var rules = []Rule{
	{
		Name:     "python-signature",
		Language: models.LanguagePython,
		Match: func(code string) bool {
			return pythonKeywordRe.MatchString(code) ||
				pythonColonRe.MatchString(code) ||
				pythonPrintRe.MatchString(code)
		},
	},
	{Name: "java-signature", Language: models.LanguageJava, Match: javaRe.MatchString},
	{Name: "cpp-signature", Language: models.LanguageCPP, Match: cppRe.MatchString},
	{Name: "javascript-signature", Language: models.LanguageJavaScript, Match: javascriptRe.MatchString},
	{Name: "python-indentation", Language: models.LanguagePython, Match: pythonIndentRe.MatchString},
}

// Rules возвращает копию упорядоченного списка правил
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify возвращает язык кода. Никогда не падает, по умолчанию javascript.
func Classify(code string) models.Language {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Default
	}

	for _, rule := range rules {
		if rule.Match(trimmed) {
			return rule.Language
		}
	}

	return Default
}
