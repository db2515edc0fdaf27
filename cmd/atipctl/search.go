package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/atip/dashboard/internal/suggest"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Suggest researchers matching a name or affiliation",
	Long: `Suggest researchers matching a name or affiliation.

The match is a case-insensitive substring of either field and at most the
configured number of suggestions is returned.

Examples:
  atipctl search "sarah"
  atipctl search "stanford" --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	e := mustLoadEnv()
	engine := suggest.NewEngine(e.client, e.cfg.Suggest.Limit, e.logger, nil)

	query := strings.Join(args, " ")
	sugs, err := engine.Suggest(cmd.Context(), query)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if sugs == nil {
		sugs = []suggest.Suggestion{}
	}

	if !humanOutput {
		return outputJSON(sugs)
	}
	if len(sugs) == 0 {
		outputHuman("No researchers found\n")
		return nil
	}
	for _, s := range sugs {
		outputHuman("%-12s %s  %s\n", s.ID, pad(s.Name, NameColumnLen), s.Affiliation)
	}
	return nil
}
