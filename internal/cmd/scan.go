package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/store"
	"github.com/MeKo-Tech/contrastscan/internal/worker"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan all brand colours and report AA failures",
	Long: `Scan every brand colour with channels in [min-channel, max-channel] (0..254 by
default; 255 is excluded) and print one line per colour whose derived
secondary/text pair fails WCAG AA. Lines are ordered by R, G, B ascending.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntP("workers", "w", 1, "Number of parallel workers (0 = number of CPUs)")
	scanCmd.Flags().Bool("progress", false, "Show progress bar on stderr")
	scanCmd.Flags().Int("min-channel", 0, "Lowest channel value scanned")
	scanCmd.Flags().Int("max-channel", scan.DefaultMaxChannel, "Highest channel value scanned")
	scanCmd.Flags().String("db", "", "Also record findings in this SQLite database")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"scan.workers", "workers"},
		{"scan.progress", "progress"},
		{"scan.min_channel", "min-channel"},
		{"scan.max_channel", "max-channel"},
		{"scan.db", "db"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, scanCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// scanConfig holds the resolved scan settings.
type scanConfig struct {
	DBPath       string
	MinChannel   int
	MaxChannel   int
	Workers      int
	ShowProgress bool
}

func scanConfigFromViper() scanConfig {
	cfg := scanConfig{
		Workers:      viper.GetInt("scan.workers"),
		ShowProgress: viper.GetBool("scan.progress"),
		MinChannel:   viper.GetInt("scan.min_channel"),
		MaxChannel:   viper.GetInt("scan.max_channel"),
		DBPath:       viper.GetString("scan.db"),
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg
}

func runScan(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := executeScan(ctx, cmd.OutOrStdout(), scanConfigFromViper())
	return err
}

// executeScan runs the scan, writing report lines to out and, when configured,
// findings to the results database.
func executeScan(ctx context.Context, out io.Writer, cfg scanConfig) (stats scan.Stats, err error) {
	if logger == nil {
		initLogging()
	}

	side := cfg.MaxChannel - cfg.MinChannel + 1
	progress := worker.NewProgress(side, side*side, cfg.ShowProgress)
	s, err := scan.New(scan.Options{
		MinChannel: cfg.MinChannel,
		MaxChannel: cfg.MaxChannel,
		Workers:    cfg.Workers,
		OnProgress: progress.Callback(),
		Logger:     logger,
	})
	if err != nil {
		return scan.Stats{}, fmt.Errorf("invalid scan range: %w", err)
	}

	bw := bufio.NewWriterSize(out, 64*1024)
	emit := scan.LineWriter(bw)

	var results *store.Writer
	if cfg.DBPath != "" {
		results, err = store.New(cfg.DBPath, store.RunMeta{
			StartedAt:  time.Now(),
			MinChannel: cfg.MinChannel,
			MaxChannel: cfg.MaxChannel,
			Workers:    cfg.Workers,
		})
		if err != nil {
			return scan.Stats{}, fmt.Errorf("failed to open results database: %w", err)
		}
		defer func() {
			if closeErr := results.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close results database: %w", closeErr)
			}
		}()
		emit = scan.Tee(emit, results.Write)
	}

	logger.Info("Starting scan",
		"range", fmt.Sprintf("%d-%d", cfg.MinChannel, cfg.MaxChannel),
		"colours", humanize.Comma(int64(s.Total())),
		"workers", cfg.Workers,
		"db", cfg.DBPath,
	)

	stats, err = s.Run(ctx, emit)
	progress.Done()
	if flushErr := bw.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write report: %w", flushErr)
	}
	if err != nil {
		return stats, err
	}

	if results != nil {
		if err := results.Finish(stats); err != nil {
			return stats, fmt.Errorf("failed to record run: %w", err)
		}
		logger.Info("Findings recorded", "db", cfg.DBPath, "run", results.RunID())
	}

	logger.Info(progress.Summary(),
		"fail_small", humanize.Comma(int64(stats.FailSmall)),
		"fail_large", humanize.Comma(int64(stats.FailLarge)),
	)

	return stats, nil
}
