// Package prompt builds the instructions sent to the completion model.
// Builders are pure functions of their inputs so tests can assert on
// literal prompt text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/scicheck/scicheck/internal/model"
)

// focusClause returns the extraction lens for a focus mode
func focusClause(focus model.FocusMode) string {
	switch focus {
	case model.FocusScientific:
		return "explicit, testable claims related to science"
	case model.FocusTechnological:
		return "explicit, testable claims related to technology or innovation"
	default:
		return "explicit, scientifically testable claims"
	}
}

// NoClaimsSentinel is the exact phrase the model is told to emit when
// the text contains no extractable claims.
const NoClaimsSentinel = "No explicit claims found."

// NoQuestionsSentinel is the exact phrase for an empty question list.
const NoQuestionsSentinel = "No further questions."

// Extract builds the claim-extraction prompt. The article text is
// embedded unmodified.
func Extract(focus model.FocusMode, articleText string) string {
	return fmt.Sprintf(`You will be given a text. Extract a numbered list of %s.

Strict rules:
- ONLY include claims that appear in the text, stated explicitly and verbatim.
- Each claim must be an exact excerpt of the text. DO NOT infer, paraphrase, generalize, or use external knowledge.
- If no relevant testable claims exist, output exactly: "%s"
- Output ONLY the claims formatted as a numbered list, or "%s"

TEXT:
%s

OUTPUT:
`, focusClause(focus), NoClaimsSentinel, NoClaimsSentinel, articleText)
}

// Verify builds the verification prompt for a single claim. The output
// format is a labeled block the parser recognizes.
func Verify(claim model.Claim) string {
	return fmt.Sprintf(`Assess the accuracy of the following claim. Provide:

1. A judgment: SUPPORTED, REFUTED, or MIXED (mixed or unclear evidence).
2. A concise explanation (max 1000 characters).
3. Relevant source citations as [Title|URL] entries with full URLs.

Claim: "%s"

Output format:
Judgment: <JUDGMENT>
Explanation: <short explanation>
Sources:
- [Title|https://example.com/source]
- [Title|https://example.com/source]
`, claim.Text)
}

// VerifyEnriched builds the verification prompt with supplemental
// scholarly links from Crossref and CORE.
func VerifyEnriched(claim model.Claim, supplemental []string) string {
	if len(supplemental) == 0 {
		return Verify(claim)
	}

	var links strings.Builder
	for _, s := range supplemental {
		links.WriteString("- ")
		links.WriteString(s)
		links.WriteString("\n")
	}

	return fmt.Sprintf(`Assess the accuracy of the following claim, taking into account these supplemental research links:

%s
Claim: "%s"

Provide:
1. A judgment: SUPPORTED, REFUTED, or MIXED (mixed or unclear evidence).
2. A concise explanation (max 1000 characters).
3. Relevant source citations as [Title|URL] entries with full URLs.

Output format:
Judgment: <JUDGMENT>
Explanation: <short explanation>
Sources:
- [Title|https://example.com/source]
- [Title|https://example.com/source]
`, links.String(), claim.Text)
}

// Questions builds the follow-up question prompt for a claim
func Questions(claim model.Claim) string {
	return fmt.Sprintf(`Given the following claim, suggest at most 3 follow-up research questions that would help verify or deepen it.

Strict rules:
- Output ONLY the questions as a numbered list, one per line.
- Never suggest more than 3 questions.
- If no meaningful follow-up exists, output exactly: "%s"

Claim: "%s"

OUTPUT:
`, NoQuestionsSentinel, claim.Text)
}

// Report builds the research-summary prompt for one question. The
// article text is embedded unmodified.
func Report(article model.Article, question model.ResearchQuestion) string {
	return fmt.Sprintf(`You will be given an article and a research question about it. Write a short, self-contained research summary (max 300 words) answering the question, grounded in the article and general knowledge.

Do not restate the question. Output only the summary text.

ARTICLE:
%s

QUESTION:
%s

OUTPUT:
`, article.Text, question.Text)
}
