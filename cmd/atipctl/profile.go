package main

import (
	"github.com/spf13/cobra"

	"github.com/atip/dashboard/internal/profile"
)

var profileSort string

func init() {
	profileCmd.Flags().StringVar(&profileSort, "sort", string(profile.SortCitations), "Publication order: citations, year or venue")
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <author-id>",
	Short: "Print a researcher profile",
	Long: `Print a researcher profile: headline stats, metric panel, publications
and co-authors.

Examples:
  atipctl profile 143977260
  atipctl profile 143977260 --sort year --human`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	e := mustLoadEnv()
	svc := profile.NewService(e.client, e.logger, nil)
	v, err := svc.View(cmd.Context(), args[0], profile.ParseSortMode(profileSort), profile.Expansion{})
	if err != nil {
		if profile.IsNotFound(err) {
			exitWithError(ExitNotFound, "%s: %s", profile.NotFoundTitle, args[0])
		}
		exitWithError(ExitError, "%s: %v", profile.ErrorMessage, err)
	}

	if !humanOutput {
		return outputJSON(v)
	}

	a := v.Author
	outputHuman("%s (%s)\n", a.Name, a.ID)
	outputHuman("  %s\n", a.Affiliation)
	outputHuman("  papers %s  citations %s  h-index %s  career %s\n",
		a.TotalPapers, a.TotalCitations, a.HIndex, a.CareerLength)
	if v.HasMetricData {
		outputHuman("\nMetrics:\n")
		for _, m := range a.Metrics {
			outputHuman("  %-28s %s\n", m.Label, m.Value)
		}
	}

	outputHuman("\nPublications by %s (%d):\n", v.Sort.Label(), len(v.Publications))
	for i, p := range v.Publications {
		outputHuman("[%d] %s\n", i+1, truncateString(p.Title, TitleMaxLen))
		outputHuman("    %s, %s, %s citations\n", p.Venue, p.Year, p.Citations)
	}

	if len(v.Coauthors) > 0 {
		outputHuman("\nCo-authors:\n")
		for _, c := range v.Coauthors {
			outputHuman("  %s  %d shared\n", pad(c.Name, NameColumnLen), c.SharedPapers)
		}
	}
	return nil
}
