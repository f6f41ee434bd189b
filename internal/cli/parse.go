package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/chatlens/internal/analyzer"
	"github.com/raphaelgruber/chatlens/internal/config"
	"github.com/raphaelgruber/chatlens/internal/parser"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse SOURCE",
	Short: "Parse a chat export without LLM analysis",
	Long: `Parse a chat export without LLM analysis (no Ollama required).

SOURCE can be a file path (.txt, .pdf, .docx, .png/.jpg) or raw pasted text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		defer cleanup()

		// No LLM client: screenshots use the OCR fallback only.
		a := analyzer.New(nil, nil, cfg.MaxChunkChars, logger, nil)

		conversation, err := a.Parse(args[0])
		if err != nil {
			if errors.Is(err, parser.ErrUnrecognizedInput) {
				exitWithError("%v", err)
			}
			return err
		}

		if parseJSON {
			return json.NewEncoder(os.Stdout).Encode(conversation)
		}

		fmt.Println(statStyle.Render(fmt.Sprintf("Parsed %d messages", conversation.Len())))
		fmt.Printf("Participants: %s\n", strings.Join(conversation.Participants(), ", "))

		if start, ok := conversation.StartDate(); ok {
			end, _ := conversation.EndDate()
			fmt.Printf("Date range: %s to %s\n",
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}

		divider := strings.Repeat("─", 40)
		fmt.Println("\n" + divider)
		fmt.Println(headerStyle.Render("MESSAGES"))
		fmt.Println(divider)

		for _, msg := range conversation.Messages {
			fmt.Println(msg.String())
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output JSON instead of text")
}
