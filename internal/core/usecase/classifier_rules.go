package usecase

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// ClassifierRules holds the phrase tables that drive query classification.
type ClassifierRules struct {
	DocumentKeywords []string `yaml:"document_keywords"`
	FileKeywords     []string `yaml:"file_keywords"`
	UploadKeywords   []string `yaml:"upload_keywords"`
	QuestionPatterns []string `yaml:"question_patterns"`
	FileExtensions   []string `yaml:"file_extensions"`
}

func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		DocumentKeywords: []string{
			"document", "documents", "doc ", "docs", "pdf", "report", "spreadsheet", "presentation",
			"what i uploaded", "i uploaded", "i just uploaded", "i've uploaded", "my upload", "my uploads",
			"tell me about", "what can you tell", "what does it say", "what does the", "according to",
			"summarize", "summarise", "summary of", "give me a summary",
			"details on", "details about", "what are the details", "key points", "main points",
			"search my documents", "find in my documents", "in my documents", "in my docs", "in my files",
			"from my documents", "from the document", "in the document", "in the report",
			"my document", "my documents", "the document", "this document", "that document",
		},
		FileKeywords: []string{
			"file", "files", "upload", "uploaded", "uploads", "attachment", "attachments", "attached",
			"csv", "docx", "txt",
		},
		UploadKeywords: []string{
			"upload", "uploaded", "uploading", "attached", "attachment", "i sent", "i shared",
		},
		QuestionPatterns: []string{
			`(?i)what (does|can|is|are).*say`,
			`(?i)summari[sz]e.*`,
			`(?i)what('s| is) in (the|my|this|that)`,
			`(?i)(tell|show) me (about|what)`,
			`(?i)(explain|describe) (the|this|that|my)`,
			`(?i)what are the (details|key points|main points)`,
			`(?i)according to`,
			`(?i)(find|search|look up) .*(in|from) (the|my)`,
		},
		FileExtensions: []string{
			".pdf", ".doc", ".docx", ".txt", ".csv", ".png", ".jpg", ".jpeg", ".gif", ".webp",
		},
	}
}

// LoadClassifierRules reads rules from a YAML file. Sections missing from the
// file fall back to the built-in tables. An empty path yields the defaults.
func LoadClassifierRules(path string) (ClassifierRules, error) {
	defaults := DefaultClassifierRules()
	path = strings.TrimSpace(path)
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ClassifierRules{}, fmt.Errorf("read classifier rules: %w", err)
	}
	var rules ClassifierRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return ClassifierRules{}, domain.WrapError(domain.ErrInvalidInput, "parse classifier rules", err)
	}
	return rules.withDefaults(defaults), nil
}

func (r ClassifierRules) withDefaults(def ClassifierRules) ClassifierRules {
	out := r
	if len(out.DocumentKeywords) == 0 {
		out.DocumentKeywords = def.DocumentKeywords
	}
	if len(out.FileKeywords) == 0 {
		out.FileKeywords = def.FileKeywords
	}
	if len(out.UploadKeywords) == 0 {
		out.UploadKeywords = def.UploadKeywords
	}
	if len(out.QuestionPatterns) == 0 {
		out.QuestionPatterns = def.QuestionPatterns
	}
	if len(out.FileExtensions) == 0 {
		out.FileExtensions = def.FileExtensions
	}
	return out
}

type compiledRules struct {
	documentKeywords []string
	fileKeywords     []string
	uploadKeywords   []string
	questionPatterns []*regexp.Regexp
	fileExtensions   []string
}

func (r ClassifierRules) compile() (compiledRules, error) {
	patterns := make([]*regexp.Regexp, 0, len(r.QuestionPatterns))
	for _, raw := range r.QuestionPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return compiledRules{}, domain.WrapError(domain.ErrInvalidInput, "compile question pattern", fmt.Errorf("%q: %w", raw, err))
		}
		patterns = append(patterns, re)
	}

	extensions := make([]string, 0, len(r.FileExtensions))
	for _, ext := range r.FileExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}

	return compiledRules{
		documentKeywords: normalizeKeywords(r.DocumentKeywords),
		fileKeywords:     normalizeKeywords(r.FileKeywords),
		uploadKeywords:   normalizeKeywords(r.UploadKeywords),
		questionPatterns: patterns,
		fileExtensions:   extensions,
	}, nil
}

// normalizeKeywords lowercases entries but keeps surrounding spaces, which
// some phrases use as a cheap word boundary ("doc ").
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if strings.TrimSpace(keyword) == "" {
			continue
		}
		out = append(out, strings.ToLower(keyword))
	}
	return out
}
