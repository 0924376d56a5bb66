package miztl

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageNames maps DCS localization codes to human-readable names for AI
// prompts. The codes are the directory names used under l10n/ in missions.
var LanguageNames = map[string]string{
	"EN": "English",
	"RU": "Russian",
	"DE": "German",
	"FR": "French",
	"ES": "Spanish",
	"IT": "Italian",
	"CS": "Czech",
	"CN": "Simplified Chinese",
	"JP": "Japanese",
	"KO": "Korean",
}

// dcsCodes maps ISO 639-1 base languages whose DCS code differs from the
// upper-cased ISO code.
var dcsCodes = map[string]string{
	"zh": "CN",
	"ja": "JP",
}

// NormalizeLangCode converts a language code to the DCS form used in l10n
// paths: "zh", "zh_CN" and "zh-Hans" become "CN", "ja" becomes "JP", and
// known codes are upper-cased. Unknown codes are returned upper-cased.
func NormalizeLangCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	upper := strings.ToUpper(code)
	if _, ok := LanguageNames[upper]; ok || upper == "DEFAULT" {
		return upper
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return upper
	}
	base, _ := tag.Base()
	if dcs, ok := dcsCodes[base.String()]; ok {
		return dcs
	}
	return strings.ToUpper(base.String())
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(code string) string {
	if name, ok := LanguageNames[NormalizeLangCode(code)]; ok {
		return name
	}
	return code
}

// IsSupportedLanguage reports whether code maps to a language DCS ships
// localization for.
func IsSupportedLanguage(code string) bool {
	_, ok := LanguageNames[NormalizeLangCode(code)]
	return ok
}
