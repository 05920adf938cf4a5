package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scicheck/scicheck/internal/model"
)

// Renderer writes an analysis to JSON and Markdown files and a short
// stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the analysis as indented JSON
func (r *Renderer) RenderJSON(analysis *model.Analysis, path string) error {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(analysis *model.Analysis, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(analysis)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Markdown renders the analysis as a Markdown document
func (r *Renderer) Markdown(analysis *model.Analysis) string {
	var b strings.Builder

	b.WriteString("# SciCheck Analysis\n\n")
	if analysis.Article.SourceURL != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", analysis.Article.SourceURL)
	}
	fmt.Fprintf(&b, "- Focus: %s\n", analysis.Focus)
	if analysis.Model != "" {
		fmt.Fprintf(&b, "- Model: %s\n", analysis.Model)
	}
	fmt.Fprintf(&b, "- Analyzed: %s\n\n", analysis.AnalyzedAt.Format("2006-01-02 15:04 UTC"))

	s := analysis.Stats
	fmt.Fprintf(&b, "**%d claims**: %d supported, %d refuted, %d mixed/unclear, %d failed\n\n",
		s.Claims, s.Supported, s.Refuted, s.Mixed, s.Failed)

	if len(analysis.Claims) == 0 {
		b.WriteString("No explicit claims found.\n")
	}

	for i, ca := range analysis.Claims {
		fmt.Fprintf(&b, "## Claim %d\n\n> %s\n\n", i+1, ca.Claim.Text)
		if !ca.Claim.Verbatim {
			b.WriteString("*Not found verbatim in the source text.*\n\n")
		}

		if ca.Error != "" {
			fmt.Fprintf(&b, "Verification failed: %s\n\n", ca.Error)
			continue
		}

		if v := ca.Verdict; v != nil {
			fmt.Fprintf(&b, "**Judgment:** %s\n\n", strings.ToUpper(string(v.Judgment)))
			if v.Explanation != "" {
				fmt.Fprintf(&b, "%s\n\n", v.Explanation)
			}
			if len(v.Sources) > 0 {
				b.WriteString("Sources:\n")
				for _, src := range v.Sources {
					if src.Title != "" {
						fmt.Fprintf(&b, "- [%s](%s)\n", src.Title, src.URL)
					} else {
						fmt.Fprintf(&b, "- <%s>\n", src.URL)
					}
				}
				b.WriteString("\n")
			}
		}

		if len(ca.Questions) > 0 {
			b.WriteString("Follow-up questions:\n")
			for j, q := range ca.Questions {
				fmt.Fprintf(&b, "%d. %s\n", j+1, q.Text)
			}
			b.WriteString("\n")
		}

		for _, report := range ca.Reports {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", report.Question.Text, report.Body)
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by SciCheck. Verdicts reflect model output, not ground truth.\n")
	}

	return b.String()
}

// Summary prints a one-screen overview
func (r *Renderer) Summary(w io.Writer, analysis *model.Analysis) {
	s := analysis.Stats
	fmt.Fprintf(w, "\nClaims: %d (supported %d, refuted %d, mixed %d, failed %d)\n",
		s.Claims, s.Supported, s.Refuted, s.Mixed, s.Failed)

	for i, ca := range analysis.Claims {
		status := "?"
		switch {
		case ca.Error != "":
			status = "error"
		case ca.Verdict != nil:
			status = string(ca.Verdict.Judgment)
		}
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, status, truncate(ca.Claim.Text, 80))
	}
}

// truncate shortens on rune boundaries; article text is routinely
// non-ASCII
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
