package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/query-router/internal/core/domain"
)

const (
	matchWeightExact       = 0.3
	matchWeightSingleWord  = 0.3
	matchWeightMultiWord   = 0.5
	matchWeightConsecutive = 0.5

	minQueryWordRunes        = 3
	minAcronymWordRunes      = 2
	minFilenameWordRunes     = 2
	minSingleWordMatchRunes  = 4
	minConsecutiveQueryWords = 2
)

var parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)

// documentMatcher resolves filename references in free text.
type documentMatcher struct {
	extensions []string
}

// bestMatch returns the first document, in catalog order, that satisfies any
// matching rule. The catalog order decides which filename is reported.
func (m documentMatcher) bestMatch(query string, documents []domain.Document) (domain.DocumentMatch, bool) {
	if len(documents) == 0 {
		return domain.DocumentMatch{}, false
	}
	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryWords := queryTerms(query, true)
	longQueryWords := queryTerms(query, false)

	for _, doc := range documents {
		score := m.score(m.baseName(doc.Filename), queryLower, queryWords, longQueryWords)
		if score > 0 {
			return domain.DocumentMatch{
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				Score:      score,
			}, true
		}
	}
	return domain.DocumentMatch{}, false
}

// score applies the rules in order and reports the weight of the first one
// that fires: exact substring, word overlap, then the consecutive fallback.
func (m documentMatcher) score(base, queryLower string, queryWords, longQueryWords []string) float64 {
	if base != "" && strings.Contains(queryLower, base) {
		return matchWeightExact
	}

	fileWords := filenameWords(base)
	switch overlap := countOverlapping(fileWords, queryWords); {
	case overlap >= 2:
		return matchWeightMultiWord
	case overlap == 1:
		return matchWeightSingleWord
	}

	// Filename words only need to overlap some query word each; adjacency is not checked.
	if len(longQueryWords) >= minConsecutiveQueryWords && countOverlapping(fileWords, longQueryWords) >= 2 {
		return matchWeightConsecutive
	}
	return 0
}

// matchingIDs evaluates every document independently and returns all matches
// in catalog order.
func (m documentMatcher) matchingIDs(query string, documents []domain.Document) []string {
	ids := make([]string, 0)
	if len(documents) == 0 {
		return ids
	}
	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryWords := queryTerms(query, false)

	for _, doc := range documents {
		base := m.baseName(doc.Filename)
		if base != "" && queryLower != "" &&
			(strings.Contains(queryLower, base) || strings.Contains(base, queryLower)) {
			ids = append(ids, doc.ID)
			continue
		}

		overlapping := overlappingWords(filenameWords(base), queryWords)
		if len(overlapping) >= 2 ||
			(len(overlapping) == 1 && utf8.RuneCountInString(overlapping[0]) >= minSingleWordMatchRunes) {
			ids = append(ids, doc.ID)
		}
	}
	return ids
}

// baseName lowercases a filename, strips one known extension and removes
// parenthetical disambiguators: "Untitled design (34).png" -> "untitled design".
func (m documentMatcher) baseName(filename string) string {
	name := strings.ToLower(strings.TrimSpace(filename))
	for _, ext := range m.extensions {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	name = parentheticalPattern.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}

func filenameWords(base string) []string {
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) >= minFilenameWordRunes {
			out = append(out, part)
		}
	}
	return out
}

// queryTerms splits the raw query on whitespace, trims punctuation and keeps
// words of three or more runes. With allowAcronyms, two-rune words carrying an
// uppercase letter ("AI", "Q3") are kept too.
func queryTerms(query string, allowAcronyms bool) []string {
	fields := strings.Fields(query)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		n := utf8.RuneCountInString(word)
		switch {
		case n >= minQueryWordRunes:
		case allowAcronyms && n == minAcronymWordRunes && hasUpper(word):
		default:
			continue
		}
		out = append(out, strings.ToLower(word))
	}
	return out
}

func hasUpper(word string) bool {
	for _, r := range word {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func overlappingWords(fileWords, queryWords []string) []string {
	out := make([]string, 0, len(fileWords))
	for _, fileWord := range fileWords {
		for _, queryWord := range queryWords {
			if strings.Contains(queryWord, fileWord) || strings.Contains(fileWord, queryWord) {
				out = append(out, fileWord)
				break
			}
		}
	}
	return out
}

func countOverlapping(fileWords, queryWords []string) int {
	return len(overlappingWords(fileWords, queryWords))
}
