package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kexuanli/askdocs/internal/rag"
)

var runCmd = &cobra.Command{
	Use:   "run [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Answers a question using retrieved passages from the ingested documents,
citing the sources that grounded the answer. Without a question argument
it starts an interactive chat session that carries conversation history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("json", false, "output the answer as JSON")
	runCmd.Flags().Bool("timings", false, "show retrieval and generation timings")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timings, _ := cmd.Flags().GetBool("timings")

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := s.newEngine()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		answer, err := engine.Ask(cmd.Context(), args[0], "")
		if err != nil {
			return err
		}
		return printAnswer(answer, jsonOutput, timings)
	}

	return chatLoop(cmd, engine, timings)
}

// chatLoop runs an interactive session, feeding prior turns back into the
// prompt so follow-up questions resolve against the conversation.
func chatLoop(cmd *cobra.Command, engine *rag.Engine, timings bool) error {
	fmt.Println("Interactive mode. Type a question, or 'exit' to quit.")

	var history strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := engine.Ask(cmd.Context(), question, history.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		if err := printAnswer(answer, false, timings); err != nil {
			return err
		}

		fmt.Fprintf(&history, "User: %s\nAssistant: %s\n", question, answer.Text)
	}
	return scanner.Err()
}

func printAnswer(answer *rag.Answer, jsonOutput, timings bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nCited passages:")
		seen := make(map[string]bool)
		for _, c := range answer.Citations {
			key := c.Source + "|" + c.Locator
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Printf("  - %s (%s)\n", c.Source, c.Locator)
		}
	}
	if timings {
		fmt.Printf("\n[retrieval %.0fms, generation %.0fms]\n", answer.RetrievalMS, answer.GenerationMS)
	}
	return nil
}
