package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/pipeline"
)

var (
	focusFlag     string
	enrichFlag    bool
	questionsFlag bool
	reportsFlag   bool
	outJSON       string
	outMD         string
	runTimeout    time.Duration
	noFooter      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url|file|->",
	Short: "Extract and verify the claims of an article",
	Long: `Analyze runs the full pipeline for one article:
- Acquire the text (fetch a URL, read a file, or read stdin with "-")
- Extract explicit, verbatim claims with the chosen focus
- Verify each claim concurrently, with judgment and source citations
- Suggest follow-up research questions (and optionally short reports)

Example:
  scicheck analyze https://example.com/article
  scicheck analyze article.txt --focus scientific --enrich
  cat article.txt | scicheck analyze - --reports --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&focusFlag, "focus", "general", "analysis focus (general, scientific, technological)")
	analyzeCmd.Flags().BoolVar(&enrichFlag, "enrich", false, "supplement verification with Crossref and CORE papers")
	analyzeCmd.Flags().BoolVar(&questionsFlag, "questions", true, "suggest follow-up research questions per claim")
	analyzeCmd.Flags().BoolVar(&reportsFlag, "reports", false, "generate a research report per suggested question")

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall analysis timeout")

	analyzeCmd.Flags().DurationVar(&httpTimeout, "fetch-timeout", 30*time.Second, "timeout for the article fetch")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")

	analyzeCmd.Flags().StringVar(&llmProvider, "provider", "", "completion provider (perplexity, openrouter, openai)")
	analyzeCmd.Flags().StringVar(&llmModel, "model", "", "completion model name")
	analyzeCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom OpenAI-compatible endpoint URL")
	analyzeCmd.Flags().DurationVar(&llmTimeout, "llm-timeout", 0, "timeout per completion call")
	analyzeCmd.Flags().BoolVar(&noRetry, "no-retry", false, "disable the single retry on transient completion failures")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]

	focus, err := model.ParseFocusMode(focusFlag)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Enrich.Enabled = enrichFlag

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	p := pipeline.New(cfg, completer)

	article, err := acquireInput(ctx, p, input)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Article: %d characters", len(article.Text))
		if article.SourceURL != "" {
			fmt.Fprintf(os.Stderr, " from %s", article.SourceURL)
		}
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Focus: %s, model: %s/%s\n\n", focus, cfg.LLM.Provider, cfg.LLM.Model)
	}

	analysis, err := p.Analyze(ctx, article, focus, pipeline.AnalyzeOptions{
		Questions: questionsFlag,
		Reports:   reportsFlag,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer(!noFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(analysis, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(analysis, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.Summary(os.Stdout, analysis)
	return nil
}

// acquireInput resolves the positional argument: URL, file path, or "-"
// for stdin
func acquireInput(ctx context.Context, p *pipeline.Pipeline, input string) (model.Article, error) {
	switch {
	case input == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return model.Article{}, fmt.Errorf("read stdin: %w", err)
		}
		return p.AcquireText(string(data)), nil

	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		return p.AcquireURL(ctx, input)

	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return model.Article{}, fmt.Errorf("read file: %w", err)
		}
		return p.AcquireText(string(data)), nil
	}
}
