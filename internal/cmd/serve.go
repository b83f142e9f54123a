package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/contrastscan/internal/server"
	"github.com/MeKo-Tech/contrastscan/internal/swatch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve derivations, swatches and recorded findings over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("db", "", "SQLite results database for /api/findings (optional)")
	serveCmd.Flags().Int("scale", swatch.DefaultScale, "Default swatch scale")
	serveCmd.Flags().String("cache-control", "public, max-age=86400", "Cache-Control header for derivations and swatches")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.db", "db")
	mustBind("serve.scale", "scale")
	mustBind("serve.cache_control", "cache-control")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	dbPath := viper.GetString("serve.db")

	sw := server.NewSwatches(server.SwatchesConfig{
		Scale:        viper.GetInt("serve.scale"),
		CacheControl: viper.GetString("serve.cache_control"),
	}, logger)

	var findings *server.FindingsHandler
	if dbPath != "" {
		var err error
		findings, err = server.NewFindingsHandler(server.FindingsConfig{DBPath: dbPath}, logger)
		if err != nil {
			return err
		}
		defer findings.Close()
	}

	logger.Info("server listening",
		"addr", addr,
		"db", dbPath,
	)

	srv := &http.Server{Addr: addr, Handler: server.NewMux(sw, findings), ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
