package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/query-router/internal/core/domain"
)

const (
	bonusKeyword             = 0.5
	bonusQuestion            = 0.3
	bonusDocumentName        = 0.4
	bonusCatalog             = 0.3
	bonusCatalogWithKeyword  = 0.2
	bonusAbout               = 0.2
	bonusTellMe              = 0.2
	bonusDetails             = 0.3
	bonusSearchMyDocuments   = 0.3
	bonusNamedDocumentPhrase = 0.4

	thresholdDocument = 0.5
	thresholdHybrid   = 0.3

	confidenceMemory  = 0.7
	confidenceCommand = 0.8
	confidenceWeb     = 0.5

	minKeywordRunes = 3
)

var namedDocumentPhrase = regexp.MustCompile(`\b(\w{2,})\s+(?:document|documents|file|files|pdf)\b`)

var (
	tellMePhrases          = []string{"tell me", "what can you tell"}
	detailsPhrases         = []string{"details on", "details about", "what are the details"}
	searchDocumentsPhrases = []string{"search my documents", "find in my documents"}
	storeMemoryPhrases     = []string{"remember", "store", "save"}
	queryMemoryPhrases     = []string{"what did", "what i told"}
)

// QueryClassifier decides which downstream tool should serve a query. It holds
// only immutable compiled rules and is safe for concurrent use.
type QueryClassifier struct {
	rules   compiledRules
	matcher documentMatcher
}

func NewQueryClassifier(rules ClassifierRules) (*QueryClassifier, error) {
	compiled, err := rules.compile()
	if err != nil {
		return nil, err
	}
	return &QueryClassifier{
		rules:   compiled,
		matcher: documentMatcher{extensions: compiled.fileExtensions},
	}, nil
}

// NewDefaultQueryClassifier builds a classifier from the built-in tables,
// which are known to compile.
func NewDefaultQueryClassifier() *QueryClassifier {
	classifier, err := NewQueryClassifier(DefaultClassifierRules())
	if err != nil {
		panic(err)
	}
	return classifier
}

func (c *QueryClassifier) Classify(query string, documents []domain.Document) domain.QueryClassification {
	classification, _, _ := c.classify(query, documents)
	return classification
}

// MatchingDocumentIDs returns every catalog document the query refers to.
func (c *QueryClassifier) MatchingDocumentIDs(query string, documents []domain.Document) []string {
	return c.matcher.matchingIDs(query, documents)
}

// BestDocumentMatch returns the first catalog document the query refers to.
func (c *QueryClassifier) BestDocumentMatch(query string, documents []domain.Document) (domain.DocumentMatch, bool) {
	return c.matcher.bestMatch(query, documents)
}

func (c *QueryClassifier) classify(query string, documents []domain.Document) (domain.QueryClassification, domain.DocumentMatch, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))

	mentionsDocument := containsAny(normalized, c.rules.documentKeywords)
	mentionsFile := containsAny(normalized, c.rules.fileKeywords)
	mentionsUpload := containsAny(normalized, c.rules.uploadKeywords)
	keywordHit := mentionsDocument || mentionsFile
	questionHit := c.matchesQuestionPattern(normalized)
	hasCatalog := len(documents) > 0

	confidence := 0.0
	match, matched := c.matcher.bestMatch(query, documents)
	if matched {
		confidence += match.Score
	}

	if keywordHit {
		confidence += bonusKeyword
	}
	if questionHit {
		confidence += bonusQuestion
	}
	if matched {
		confidence += bonusDocumentName
	}
	if hasCatalog {
		confidence += bonusCatalog
		if keywordHit {
			confidence += bonusCatalogWithKeyword
		}
	}
	if keywordHit && strings.Contains(normalized, "about") {
		confidence += bonusAbout
	}
	if keywordHit && containsAny(normalized, tellMePhrases) {
		confidence += bonusTellMe
	}
	if keywordHit && containsAny(normalized, detailsPhrases) {
		confidence += bonusDetails
	}
	if containsAny(normalized, searchDocumentsPhrases) {
		confidence += bonusSearchMyDocuments
	}
	if hasCatalog && namedDocumentReferenced(normalized, documents) {
		confidence += bonusNamedDocumentPhrase
	}

	ctx := domain.ClassificationContext{
		MentionsDocument: mentionsDocument,
		MentionsFile:     mentionsFile,
		MentionsUpload:   mentionsUpload,
		IsQuestion:       strings.HasSuffix(normalized, "?") || questionHit,
		Keywords:         extractKeywords(normalized),
	}
	if matched {
		ctx.DocumentName = match.Filename
	}

	intent, tool, confidence := decideIntent(normalized, confidence)
	return domain.QueryClassification{
		Intent:        intent,
		Confidence:    confidence,
		SuggestedTool: tool,
		Context:       ctx,
	}, match, matched
}

// decideIntent applies the threshold bands in order. Below the hybrid band the
// accumulated score is discarded and a fixed confidence is reported.
func decideIntent(normalized string, confidence float64) (domain.QueryIntent, domain.RouteTool, float64) {
	// A leading slash is an explicit command and is never reinterpreted.
	if strings.HasPrefix(normalized, "/") {
		return domain.IntentCommand, domain.ToolMCPProxy, confidenceCommand
	}

	switch {
	case confidence >= thresholdDocument:
		return domain.IntentDocument, domain.ToolSearchDocuments, confidence
	case confidence >= thresholdHybrid:
		return domain.IntentHybrid, domain.ToolSearchDocuments, confidence
	case containsAny(normalized, storeMemoryPhrases):
		return domain.IntentMemory, domain.ToolStoreMemory, confidenceMemory
	case containsAny(normalized, queryMemoryPhrases):
		return domain.IntentMemory, domain.ToolQueryMemory, confidenceMemory
	case strings.Contains(normalized, "command"):
		return domain.IntentCommand, domain.ToolMCPProxy, confidenceCommand
	default:
		return domain.IntentWeb, domain.ToolWebSearch, confidenceWeb
	}
}

func (c *QueryClassifier) matchesQuestionPattern(normalized string) bool {
	for _, pattern := range c.rules.questionPatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// namedDocumentReferenced checks phrases like "the budget document": the word
// before the noun must occur in some catalog filename.
func namedDocumentReferenced(normalized string, documents []domain.Document) bool {
	groups := namedDocumentPhrase.FindStringSubmatch(normalized)
	if len(groups) < 2 {
		return false
	}
	word := groups[1]
	for _, doc := range documents {
		if strings.Contains(strings.ToLower(doc.Filename), word) {
			return true
		}
	}
	return false
}

func extractKeywords(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= minKeywordRunes {
			out = append(out, field)
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
