package llm

import "strings"

// SupportedLanguages maps the language codes the prompts and the heuristic
// recognise to their display names.
var SupportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"hi": "Hindi",
	"zh": "Chinese",
	"ja": "Japanese",
}

// languageMarkers are common function words and particles per language, used
// when the model cannot be asked. A handful of high-frequency tokens is enough
// to separate these languages in practice; anything inconclusive stays "en".
var languageMarkers = map[string][]string{
	"es": {" el ", " la ", " los ", " que ", " tengo ", " dolor ", " muy ", " estoy "},
	"fr": {" le ", " les ", " une ", " je ", " j'ai ", " mal ", " très ", " suis "},
	"de": {" der ", " die ", " das ", " ich ", " habe ", " und ", " nicht ", " schmerzen "},
	"it": {" il ", " gli ", " che ", " ho ", " sono ", " dolore ", " molto ", " della "},
	"pt": {" o ", " os ", " que ", " eu ", " tenho ", " dor ", " muito ", " estou "},
	"hi": {"है", "मैं", "दर्द", "और", "मुझे"},
	"zh": {"我", "的", "疼", "痛", "了"},
	"ja": {"です", "ます", "痛い", "が", "私"},
}

// GuessLanguage applies the keyword heuristic to the text and returns a
// supported language code, defaulting to "en" when nothing matches.
func GuessLanguage(text string) string {
	padded := " " + strings.ToLower(text) + " "
	best := "en"
	bestHits := 0
	for code, markers := range languageMarkers {
		hits := 0
		for _, m := range markers {
			if strings.Contains(padded, m) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = code, hits
		}
	}
	return best
}

// normalizeLanguage validates a model-reported code against the supported
// set, falling back to "en".
func normalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) > 2 {
		code = code[:2]
	}
	if _, ok := SupportedLanguages[code]; ok {
		return code
	}
	return "en"
}
