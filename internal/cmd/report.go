package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/contrastscan/internal/store"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise a recorded scan",
	Long:  `Print the totals of a scan recorded with "scan --db" and list its failing colours.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("db", "results.sqlite", "SQLite results database")
	reportCmd.Flags().Int64("run", 0, "Run id (default: latest)")
	reportCmd.Flags().String("level", "", "Only list findings at this level (fail-small, fail-large)")
	reportCmd.Flags().Int("limit", 0, "Maximum findings to list (0 = all, -1 = none)")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, reportCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("report.db", "db")
	mustBind("report.run", "run")
	mustBind("report.level", "level")
	mustBind("report.limit", "limit")
}

func runReport(cmd *cobra.Command, args []string) error {
	var level *wcag.Level
	if s := viper.GetString("report.level"); s != "" {
		l, ok := wcag.ParseLevel(s)
		if !ok {
			return fmt.Errorf("unknown level %q", s)
		}
		level = &l
	}

	r, err := store.OpenReader(viper.GetString("report.db"))
	if err != nil {
		return err
	}
	defer r.Close()

	return writeReport(cmd.OutOrStdout(), r, viper.GetInt64("report.run"), level, viper.GetInt("report.limit"))
}

func writeReport(w io.Writer, r *store.Reader, runID int64, level *wcag.Level, limit int) error {
	runs, err := r.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return store.ErrNoRuns
	}

	run := runs[0]
	if runID != 0 {
		found := false
		for _, candidate := range runs {
			if candidate.ID == runID {
				run, found = candidate, true
				break
			}
		}
		if !found {
			return fmt.Errorf("run %d not found", runID)
		}
	}

	fmt.Fprintf(w, "Run %d started %s, channels %d-%d\n",
		run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Meta.MinChannel, run.Meta.MaxChannel)
	if run.Finished {
		fmt.Fprintf(w, "Scanned %s colours: %s pass, %s fail at small size, %s fail at large/bold size (%s)\n",
			humanize.Comma(int64(run.Stats.Scanned)),
			humanize.Comma(int64(run.Stats.Pass)),
			humanize.Comma(int64(run.Stats.FailSmall)),
			humanize.Comma(int64(run.Stats.FailLarge)),
			run.Stats.Elapsed)
	} else {
		fmt.Fprintln(w, "Run did not finish; totals unavailable")
	}

	if limit < 0 {
		return nil
	}

	findings, err := r.Findings(run.ID, level, limit)
	if err != nil {
		return err
	}
	for _, f := range findings {
		if _, err := fmt.Fprintln(w, f.Line()); err != nil {
			return err
		}
	}
	return nil
}
