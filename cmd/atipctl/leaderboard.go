package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/atip/dashboard/internal/leaderboard"
)

var (
	lbMetric      string
	lbAffiliation string
	lbCareer      string
	lbOrder       string
	lbTop         int
)

func init() {
	leaderboardCmd.Flags().StringVar(&lbMetric, "metric", "anci", "Ranking metric: anci, cagr or pqi")
	leaderboardCmd.Flags().StringVar(&lbAffiliation, "affiliation", "", "Affiliation substring filter")
	leaderboardCmd.Flags().StringVar(&lbCareer, "career", "", "Career stage: all, early, mid or senior")
	leaderboardCmd.Flags().StringVar(&lbOrder, "order", "", "Score order: desc or asc")
	leaderboardCmd.Flags().IntVar(&lbTop, "top", 0, "Print only the first N rows (0 prints all)")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Print a filtered metric leaderboard",
	Long: `Print a filtered metric leaderboard.

Filters apply in the same order as on the leaderboards page: affiliation,
career stage, then score order.

Examples:
  atipctl leaderboard --metric pqi --career early
  atipctl lb --affiliation stanford --order asc --human`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	q.Set("metric", lbMetric)
	q.Set("affiliation", lbAffiliation)
	q.Set("career", lbCareer)
	q.Set("order", lbOrder)
	f, err := leaderboard.ParseFilter(q)
	if err != nil {
		exitWithError(ExitError, "invalid filter: %v", err)
	}

	e := mustLoadEnv()
	svc := leaderboard.NewService(e.client, e.cfg.Leaderboard.Limit, e.logger, nil)
	v, err := svc.View(cmd.Context(), f)
	if err != nil {
		exitWithError(ExitError, "%s: %v", leaderboard.ErrorMessage, err)
	}
	if lbTop > 0 && len(v.Rows) > lbTop {
		v.Rows = v.Rows[:lbTop]
	}

	if !humanOutput {
		return outputJSON(v)
	}
	if len(v.Rows) == 0 {
		outputHuman("No researchers match the filters\n")
		return nil
	}
	outputHuman("%s leaderboard (%d researchers)\n\n", v.MetricLabel, len(v.Rows))
	for _, row := range v.Rows {
		mark := " "
		if row.Trophy {
			mark = "*"
		}
		outputHuman("%s%4d  %s  %s  %8s  papers %-6s cites %s\n",
			mark, row.Rank, pad(row.Name, NameColumnLen), pad(row.Affiliation, AffilColumnLen),
			row.Score, row.Papers, row.Citations)
	}
	return nil
}
