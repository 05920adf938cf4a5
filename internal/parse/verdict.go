package parse

import (
	"regexp"
	"strings"

	"github.com/scicheck/scicheck/internal/model"
)

// judgmentTokens maps recognized judgment vocabulary onto the closed
// judgment set. The longer aliases come from earlier prompt revisions
// that models still occasionally echo.
var judgmentTokens = map[string]model.Judgment{
	"supported":           model.JudgmentSupported,
	"verified":            model.JudgmentSupported,
	"refuted":             model.JudgmentRefuted,
	"contradicted":        model.JudgmentRefuted,
	"mixed":               model.JudgmentMixed,
	"mixed/unclear":       model.JudgmentMixed,
	"unclear":             model.JudgmentMixed,
	"inconclusive":        model.JudgmentMixed,
	"partially supported": model.JudgmentMixed,
}

var (
	// judgmentLabel matches "Judgment: X" and "**Verdict:** X" style lines
	judgmentLabel = regexp.MustCompile(`(?im)^\s*\**\s*(?:judgment|verdict)\s*:?\**\s*:?\s*(.+?)\s*$`)

	// explanationLabel matches the explanation/justification label
	explanationLabel = regexp.MustCompile(`(?im)^\s*\**\s*(?:explanation|justification)\s*:?\**\s*:?\s*`)

	// sourcesLabel matches the sources label, with or without entries on
	// the same line
	sourcesLabel = regexp.MustCompile(`(?im)^\s*\**\s*sources\s*:?\**\s*:?\s*`)

	// titledSource matches [Title|URL] citation entries
	titledSource = regexp.MustCompile(`\[([^|\[\]]+)\|\s*(https?://[^\]\s]+)\s*\]`)

	// bareURL matches plain URL citations
	bareURL = regexp.MustCompile(`https?://[^\s\)\]]+`)
)

// Verdict extracts judgment, explanation and sources from a
// verification response. An unrecognized judgment token yields a
// ParseError rather than a default.
func Verdict(raw string, claim model.Claim) (*model.Verdict, error) {
	m := judgmentLabel.FindStringSubmatch(raw)
	if m == nil {
		return nil, &ParseError{Op: "verdict", Reason: "no judgment line found", Raw: raw}
	}

	token := strings.ToLower(strings.TrimSpace(strings.Trim(m[1], "*_ .")))
	judgment, ok := judgmentTokens[token]
	if !ok {
		// Models sometimes echo the prompt's parenthetical after the
		// token, e.g. "MIXED (mixed or unclear evidence)"
		if head, _, found := strings.Cut(token, "("); found {
			judgment, ok = judgmentTokens[strings.TrimSpace(strings.Trim(head, "*_ ."))]
		}
	}
	if !ok {
		return nil, &ParseError{Op: "verdict", Reason: "unrecognized judgment: " + m[1], Raw: raw}
	}

	return &model.Verdict{
		Claim:       claim,
		Judgment:    judgment,
		Explanation: extractExplanation(raw),
		Sources:     extractSources(raw),
	}, nil
}

// extractExplanation returns the text between the explanation label and
// the sources section (or end of response)
func extractExplanation(raw string) string {
	loc := explanationLabel.FindStringIndex(raw)
	if loc == nil {
		return ""
	}

	rest := raw[loc[1]:]
	if srcLoc := sourcesLabel.FindStringIndex(rest); srcLoc != nil {
		rest = rest[:srcLoc[0]]
	}
	return strings.TrimSpace(rest)
}

// extractSources collects citations from the sources section. Entries in
// [Title|URL] form keep their title; bare URLs are kept without one.
func extractSources(raw string) []model.Source {
	section := raw
	if loc := sourcesLabel.FindStringIndex(raw); loc != nil {
		section = raw[loc[1]:]
	} else {
		// Without a sources header, only titled entries are unambiguous
		section = ""
		for _, m := range titledSource.FindAllStringSubmatch(raw, -1) {
			section += m[0] + "\n"
		}
	}

	var sources []model.Source
	seen := make(map[string]bool)

	rest := section
	for _, m := range titledSource.FindAllStringSubmatch(section, -1) {
		url := strings.TrimRight(m[2], ".,;:!?")
		if !seen[url] {
			seen[url] = true
			sources = append(sources, model.Source{Title: strings.TrimSpace(m[1]), URL: url})
		}
		rest = strings.Replace(rest, m[0], "", 1)
	}

	for _, url := range bareURL.FindAllString(rest, -1) {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			sources = append(sources, model.Source{URL: url})
		}
	}

	return sources
}
