package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scicheck/scicheck/internal/pipeline"
	"github.com/scicheck/scicheck/internal/server"
)

var (
	serveAddr    string
	serveOrigins []string
	serveEnrich  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline as a JSON HTTP API",
	Long: `Serve starts an HTTP server exposing the pipeline to the browser UI:

  POST /api/extract    {text|url, focus}            -> claims
  POST /api/verify     {claim}                      -> verdict
  POST /api/questions  {claim}                      -> research questions
  POST /api/report     {question, article}          -> research report
  POST /api/analyze    {text|url, focus, questions, reports} -> full analysis

Example:
  scicheck serve --addr :8080 --origins http://localhost:5173`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origins", nil, "allowed CORS origins for the browser UI")
	serveCmd.Flags().BoolVar(&serveEnrich, "enrich", false, "supplement verification with Crossref and CORE papers")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetches)")

	serveCmd.Flags().StringVar(&llmProvider, "provider", "", "completion provider (perplexity, openrouter, openai)")
	serveCmd.Flags().StringVar(&llmModel, "model", "", "completion model name")
	serveCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom OpenAI-compatible endpoint URL")
	serveCmd.Flags().DurationVar(&llmTimeout, "llm-timeout", 0, "timeout per completion call")
	serveCmd.Flags().BoolVar(&noRetry, "no-retry", false, "disable the single retry on transient completion failures")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Enrich.Enabled = serveEnrich

	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, completer)
	srv := server.New(p, serveOrigins)

	fmt.Fprintf(os.Stderr, "Listening on %s (model %s/%s)\n", serveAddr, cfg.LLM.Provider, cfg.LLM.Model)

	return srv.ListenAndServe(ctx, serveAddr)
}
