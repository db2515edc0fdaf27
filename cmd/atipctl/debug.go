package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/atip/dashboard/internal/apidebug"
)

var (
	debugAuthorID string
	debugPaperID  string
	debugExport   bool
)

func init() {
	debugCmd.Flags().StringVar(&debugAuthorID, "author", "", "Author id used by the checks (overrides config)")
	debugCmd.Flags().StringVar(&debugPaperID, "paper", "", "Paper id used by the checks (overrides config)")
	debugCmd.Flags().BoolVar(&debugExport, "export", false, "Also write the report to atip-api-debug-<date>.json")
	rootCmd.AddCommand(debugCmd)
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Call every ATIP API endpoint and report the results",
	Long: `Call every ATIP API endpoint concurrently and report status, latency and
payload size per endpoint. Exits with a non-zero code when any check fails.

Examples:
  atipctl debug --human
  atipctl debug --author 143977260 --paper 219965343 --export`,
	Args: cobra.NoArgs,
	RunE: runDebug,
}

func runDebug(cmd *cobra.Command, args []string) error {
	e := mustLoadEnv()
	authorID, paperID := e.cfg.Debug.AuthorID, e.cfg.Debug.PaperID
	if debugAuthorID != "" {
		authorID = debugAuthorID
	}
	if debugPaperID != "" {
		paperID = debugPaperID
	}

	report := apidebug.NewRunner(e.client, authorID, paperID, e.logger, nil).Run(cmd.Context())

	if debugExport {
		data, err := apidebug.Export(report)
		if err != nil {
			exitWithError(ExitError, "encoding report: %v", err)
		}
		name := apidebug.ExportFilename(report.Timestamp)
		if err := os.WriteFile(name, data, 0o644); err != nil {
			exitWithError(ExitError, "writing %s: %v", name, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", name)
	}

	if humanOutput {
		outputHuman("%d/%d checks passed\n\n", report.Passed(), len(report.Results))
		for _, r := range report.Results {
			status := "ok"
			detail := humanize.Bytes(uint64(len(r.Data)))
			if !r.OK() {
				status = "FAIL"
				detail = r.Error
			}
			outputHuman("%-4s %-28s %6dms  %s\n", status, r.Name, r.DurationMS, detail)
		}
	} else if err := outputJSON(report); err != nil {
		return err
	}

	if report.Passed() != len(report.Results) {
		os.Exit(ExitChecksFail)
	}
	return nil
}
