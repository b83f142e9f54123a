package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/server"
)

var checkCmd = &cobra.Command{
	Use:   "check <#RRGGBB>...",
	Short: "Derive and check individual brand colours",
	Long: `Derive the secondary navigation colour and text colour for each brand colour
and report the contrast ratio and WCAG AA verdict.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("json", false, "Print results as JSON lines")

	if err := viper.BindPFlag("check.json", checkCmd.Flags().Lookup("json")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	brands := make([]colour.RGB, 0, len(args))
	for _, arg := range args {
		c, err := colour.ParseHex(arg)
		if err != nil {
			return err
		}
		brands = append(brands, c)
	}

	return writeChecks(cmd.OutOrStdout(), brands, viper.GetBool("check.json"))
}

func writeChecks(w io.Writer, brands []colour.RGB, asJSON bool) error {
	enc := json.NewEncoder(w)
	for _, brand := range brands {
		f := scan.Evaluate(brand)
		if asJSON {
			if err := enc.Encode(server.NewDeriveResponse(f)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, formatCheck(f)); err != nil {
			return err
		}
	}
	return nil
}

// formatCheck renders one human-readable check result.
func formatCheck(f scan.Finding) string {
	return fmt.Sprintf("%s: secondary %s, text %s, ratio %.4f (%s)",
		f.Brand.Hex(), f.Secondary.Hex(), f.Text.Hex(), f.Ratio, f.Level)
}
