package domain

import "strings"

// MatchMode selects how a keyword is compared against product text.
type MatchMode int

const (
	// MatchSubstring matches the keyword anywhere inside the text.
	MatchSubstring MatchMode = iota
	// MatchWholeTag matches the keyword as a complete hyphen-delimited segment
	// of a category tag, so "gin" matches "en:gin-tonic" but not "en:virgin-cocktail".
	MatchWholeTag
	// MatchWholeWord matches the keyword as a complete whitespace-delimited word.
	MatchWholeWord
)

// KeywordRule is a single data-driven matching rule: a keyword list evaluated
// with one match mode. All category, allergen, dietary-restriction, and alcohol
// detection in the scoring pipeline goes through this matcher so the general and
// personalized paths cannot drift apart.
type KeywordRule struct {
	Keywords []string
	Mode     MatchMode
}

// Matches reports whether any keyword of the rule matches any of the given
// texts. Matching is case-insensitive.
func (r KeywordRule) Matches(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range r.Keywords {
			if matchOne(lower, kw, r.Mode) {
				return true
			}
		}
	}
	return false
}

// MatchesAny is a convenience wrapper over a slice of texts.
func (r KeywordRule) MatchesAny(texts []string) bool {
	return r.Matches(texts...)
}

func matchOne(text, keyword string, mode MatchMode) bool {
	switch mode {
	case MatchWholeTag:
		return text == keyword ||
			strings.HasPrefix(text, keyword+"-") ||
			strings.HasSuffix(text, "-"+keyword) ||
			strings.Contains(text, "-"+keyword+"-")
	case MatchWholeWord:
		for _, word := range strings.Fields(text) {
			if word == keyword {
				return true
			}
		}
		return false
	default:
		return strings.Contains(text, keyword)
	}
}
