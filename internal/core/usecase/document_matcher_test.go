package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/query-router/internal/core/domain"
)

func newTestMatcher() documentMatcher {
	return NewDefaultQueryClassifier().matcher
}

func completedDoc(id, filename string) domain.Document {
	return domain.Document{ID: id, Filename: filename, Status: domain.StatusCompleted}
}

func TestBaseNameStripsExtensionAndParentheticals(t *testing.T) {
	m := newTestMatcher()
	cases := map[string]string{
		"Untitled design (34).png": "untitled design",
		"UAOL Report (12).pdf":     "uaol report",
		"Quarterly Plan":           "quarterly plan",
		"archive.tar.gz":           "archive.tar.gz",
		"notes.TXT":                "notes",
	}
	for in, want := range cases {
		if got := m.baseName(in); got != want {
			t.Fatalf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBestMatchFirstDocumentWins(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{
		completedDoc("b", "Budget Summary.pdf"),
		completedDoc("f", "Budget Forecast.pdf"),
	}

	match, ok := m.bestMatch("show me the budget", docs)
	if !ok {
		t.Fatalf("expected a match")
	}
	if match.DocumentID != "b" {
		t.Fatalf("expected first catalog document to win, got %s", match.DocumentID)
	}

	reversed := []domain.Document{docs[1], docs[0]}
	match, ok = m.bestMatch("show me the budget", reversed)
	if !ok || match.DocumentID != "f" {
		t.Fatalf("expected catalog order to decide the winner, got %+v", match)
	}
}

func TestBestMatchWeights(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{completedDoc("u", "UAOL Report (12).pdf")}

	match, ok := m.bestMatch("summary of the report on UAOL", docs)
	if !ok || match.Score != matchWeightMultiWord {
		t.Fatalf("expected two-word overlap weight %.1f, got %+v", matchWeightMultiWord, match)
	}

	match, ok = m.bestMatch("what is in UAOL", docs)
	if !ok || match.Score != matchWeightSingleWord {
		t.Fatalf("expected single-word weight %.1f, got %+v", matchWeightSingleWord, match)
	}
}

func TestBestMatchExactSubstringFiresFirst(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{completedDoc("b", "Budget Summary.pdf")}

	// Both words overlap too, but the exact-substring rule is checked first.
	match, ok := m.bestMatch("budget summary", docs)
	if !ok || match.Score != matchWeightExact {
		t.Fatalf("expected exact substring weight %.1f, got %+v", matchWeightExact, match)
	}
}

func TestBestMatchShortQueryOnlyUsesExactSubstring(t *testing.T) {
	m := newTestMatcher()

	match, ok := m.bestMatch("ai", []domain.Document{completedDoc("a", "AI.pdf")})
	if !ok || match.Score != matchWeightExact {
		t.Fatalf("expected exact substring match, got %+v ok=%v", match, ok)
	}

	if _, ok := m.bestMatch("go", []domain.Document{completedDoc("g", "Golang Guide.pdf")}); ok {
		t.Fatalf("short query must not match through word overlap")
	}
}

func TestBestMatchAcceptsUppercaseTwoLetterWords(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{completedDoc("h", "HR Handbook.docx")}

	if _, ok := m.bestMatch("the hr rules", docs); ok {
		t.Fatalf("lowercase two-letter words are not acronyms")
	}
	match, ok := m.bestMatch("the HR rules", docs)
	if !ok || match.DocumentID != "h" {
		t.Fatalf("expected acronym to match, got %+v ok=%v", match, ok)
	}
}

func TestBestMatchEmptyCatalog(t *testing.T) {
	if _, ok := newTestMatcher().bestMatch("anything at all", nil); ok {
		t.Fatalf("empty catalog must not match")
	}
}

func TestMatchingIDsEvaluatesEveryDocument(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{
		completedDoc("b", "Budget Summary.pdf"),
		completedDoc("n", "Notes.txt"),
		completedDoc("u", "UAOL Report.pdf"),
	}

	got := m.matchingIDs("tell me about budget and UAOL", docs)
	want := []string{"b", "u"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("matchingIDs() = %v, want %v", got, want)
	}
}

func TestMatchingIDsRequiresLongSingleWord(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{completedDoc("t", "Tax Plan.pdf")}

	if got := m.matchingIDs("my tax numbers", docs); len(got) != 0 {
		t.Fatalf("a single three-letter overlap must not match, got %v", got)
	}
	if got := m.matchingIDs("tax plan", docs); !reflect.DeepEqual(got, []string{"t"}) {
		t.Fatalf("exact name must match, got %v", got)
	}
}

func TestMatchingIDsBaseContainsQuery(t *testing.T) {
	m := newTestMatcher()
	docs := []domain.Document{completedDoc("q", "Quarterly Revenue Plan.xlsx")}

	if got := m.matchingIDs("revenue", docs); !reflect.DeepEqual(got, []string{"q"}) {
		t.Fatalf("expected base-contains-query match, got %v", got)
	}
}
