// Package parse turns the model's free-form responses into typed
// pipeline results. The recognizers are permissive about formatting
// noise (bullets, numbering, markdown emphasis) but strict about
// judgment vocabulary: an unrecognized judgment is a ParseError, never
// a guessed default.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/prompt"
)

// ParseError means the model output did not match any recognized shape.
// Raw carries the full response text for diagnostics.
type ParseError struct {
	Op     string // claims, verdict, questions, report
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Op, e.Reason)
}

// listMarker matches numbered and bulleted list prefixes
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// stripMarker removes a leading list marker and surrounding emphasis
func stripMarker(line string) string {
	s := listMarker.ReplaceAllString(line, "")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	s = strings.TrimSpace(s)
	// Models sometimes quote excerpts
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// listItems extracts discrete items from a list-shaped response. When
// some lines carry list markers, unmarked lines are treated as
// boilerplate lead-in/lead-out and dropped. When no line carries a
// marker, every non-empty line is an item (so already-clean input
// passes through unchanged).
func listItems(raw string) []string {
	lines := strings.Split(raw, "\n")

	marked := false
	for _, line := range lines {
		if listMarker.MatchString(line) {
			marked = true
			break
		}
	}

	var items []string
	for _, line := range lines {
		if marked && !listMarker.MatchString(line) {
			continue
		}
		item := stripMarker(line)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// isNoClaims recognizes the "nothing found" sentinel in its common
// variations
func isNoClaims(raw string) bool {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"*.`))
	return s == strings.ToLower(strings.TrimSuffix(prompt.NoClaimsSentinel, ".")) ||
		strings.HasPrefix(s, "no explicit claims") ||
		strings.HasPrefix(s, "no testable claims")
}

// Claims splits an extraction response into discrete claims. Zero
// claims is a valid outcome, not an error.
func Claims(raw string) ([]model.Claim, error) {
	if strings.TrimSpace(raw) == "" || isNoClaims(raw) {
		return nil, nil
	}

	items := listItems(raw)

	var claims []model.Claim
	for _, item := range items {
		if isNoClaims(item) {
			continue
		}
		claims = append(claims, model.Claim{Text: item, Index: len(claims)})
	}
	return claims, nil
}

// Questions splits a suggestion response into research questions,
// truncated to at most 3. An empty or sentinel response yields an
// empty sequence.
func Questions(raw string) ([]model.ResearchQuestion, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var questions []model.ResearchQuestion
	for _, item := range listItems(raw) {
		lower := strings.ToLower(strings.TrimSuffix(item, "."))
		if lower == strings.ToLower(strings.TrimSuffix(prompt.NoQuestionsSentinel, ".")) {
			continue
		}
		questions = append(questions, model.ResearchQuestion{Text: item})
		if len(questions) == 3 {
			break
		}
	}
	return questions, nil
}

// Report treats the full response as the report body after trimming a
// leading restatement of the question.
func Report(raw string, question model.ResearchQuestion) (*model.Report, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return nil, &ParseError{Op: "report", Reason: "empty report body", Raw: raw}
	}

	lines := strings.SplitN(body, "\n", 2)
	first := stripMarker(strings.TrimPrefix(stripMarker(lines[0]), "Question:"))
	if len(lines) == 2 && strings.EqualFold(strings.TrimSpace(first), strings.TrimSpace(question.Text)) {
		body = strings.TrimSpace(lines[1])
	}

	return &model.Report{Question: question, Body: body}, nil
}
