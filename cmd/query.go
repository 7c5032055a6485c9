package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [hiring query]",
	Short: "Run a talent match query from the command line",
	Long:  `Runs the full matching pipeline for a natural-language hiring query and prints the ranked matches with their reasons.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Bool("json", false, "output the full response as JSON")
	queryCmd.Flags().Bool("trail", false, "print the conversation trail after the matches")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	jsonOutput, _ := cmd.Flags().GetBool("json")
	showTrail, _ := cmd.Flags().GetBool("trail")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	resp, err := application.orch.ProcessQuery(ctx, queryText)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Matches) == 0 {
		fmt.Printf("No matches (query %s). Is the candidate store seeded?\n", resp.QueryID)
		return nil
	}

	fmt.Printf("Query %s: %d matches\n\n", resp.QueryID, len(resp.Matches))
	for i, m := range resp.Matches {
		title := ""
		if m.Title != "" {
			title = fmt.Sprintf(" (%s)", m.Title)
		}
		fmt.Printf("  %d. [%.2f] %s%s\n", i+1, m.Score, m.Name, title)
		for _, r := range m.Reasons {
			fmt.Printf("     - %s\n", r)
		}
	}

	if showTrail {
		fmt.Println("\nConversation trail:")
		for _, e := range resp.Conversation {
			fmt.Printf("  [%s] %s\n", e.Stage, e.Message)
		}
	}

	return nil
}
