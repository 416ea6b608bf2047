package models

type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageOther      Language = "other"
)

func (l Language) String() string {
	return string(l)
}

func IsValidLanguage(language string) bool {
	switch Language(language) {
	case LanguageJavaScript, LanguagePython, LanguageJava, LanguageCPP, LanguageOther:
		return true
	default:
		return false
	}
}
