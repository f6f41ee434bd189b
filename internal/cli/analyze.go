package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/chatlens/internal/analyzer"
	"github.com/raphaelgruber/chatlens/internal/config"
	"github.com/raphaelgruber/chatlens/internal/llm"
	"github.com/raphaelgruber/chatlens/internal/parser"
)

var (
	analyzeProvider    string
	analyzeModel       string
	analyzeHost        string
	analyzeParticipant string
	analyzeStartDate   string
	analyzeEndDate     string
	analyzeMaxChars    int
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SOURCE",
	Short: "Run full LLM-powered analysis on a chat export",
	Long: `Run full LLM-powered analysis on a chat export.

SOURCE can be a file path (.txt, .pdf, .docx, .png/.jpg) or raw pasted text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyAnalyzeFlags()

		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		defer cleanup()

		client, err := llm.NewModel(cfg)
		if err != nil {
			return fmt.Errorf("init llm: %w", err)
		}

		vision, err := llm.NewVisionModel(cfg)
		if err != nil {
			logger.Warn("vision model unavailable, screenshots fall back to OCR", "error", err)
			vision = nil
		}

		opts, err := buildFilterOptions()
		if err != nil {
			return err
		}

		a := analyzer.New(client, visionOrNil(vision), cfg.MaxChunkChars, logger, nil)

		fmt.Fprintln(os.Stderr, hintStyle.Render("Parsing input..."))
		result, err := a.Analyze(context.Background(), args[0], opts)
		if err != nil {
			if errors.Is(err, parser.ErrUnrecognizedInput) {
				exitWithError("%v", err)
			}
			if errors.Is(err, llm.ErrBackend) {
				fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("LLM Error: %v", err)))
				fmt.Fprintln(os.Stderr, hintStyle.Render("Make sure Ollama is running (ollama serve) and the model is pulled."))
				os.Exit(1)
			}
			return err
		}

		if analyzeJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		fmt.Println(result.FormatReport())
		return nil
	},
}

func applyAnalyzeFlags() {
	if analyzeProvider != "" {
		cfg.LLMProvider = analyzeProvider
	}
	if analyzeModel != "" {
		cfg.LLMModel = analyzeModel
	}
	if analyzeHost != "" {
		cfg.OllamaHost = analyzeHost
	}
	if analyzeMaxChars > 0 {
		cfg.MaxChunkChars = analyzeMaxChars
	}
}

func buildFilterOptions() (analyzer.FilterOptions, error) {
	opts := analyzer.FilterOptions{Participant: analyzeParticipant}

	if analyzeStartDate != "" {
		t, err := time.Parse("2006-01-02", analyzeStartDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --start-date (want YYYY-MM-DD): %w", err)
		}
		opts.StartDate = &t
	}
	if analyzeEndDate != "" {
		t, err := time.Parse("2006-01-02", analyzeEndDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --end-date (want YYYY-MM-DD): %w", err)
		}
		opts.EndDate = &t
	}
	return opts, nil
}

// visionOrNil keeps a typed-nil *VisionModel from leaking into the
// interface value.
func visionOrNil(v *llm.VisionModel) parser.VisionExtractor {
	if v == nil {
		return nil
	}
	return v
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider (ollama, openai, anthropic)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "model name")
	analyzeCmd.Flags().StringVar(&analyzeHost, "host", "", "Ollama server URL")
	analyzeCmd.Flags().StringVar(&analyzeParticipant, "participant", "", "filter by participant name")
	analyzeCmd.Flags().StringVar(&analyzeStartDate, "start-date", "", "start date filter (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeEndDate, "end-date", "", "end date filter (YYYY-MM-DD)")
	analyzeCmd.Flags().IntVar(&analyzeMaxChars, "max-chars", 0, "chunk size bound in characters")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output JSON instead of the report")
}
