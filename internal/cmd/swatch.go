package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/swatch"
)

var swatchCmd = &cobra.Command{
	Use:   "swatch <#RRGGBB>",
	Short: "Render a PNG preview of a brand colour's derived colours",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwatch,
}

func init() {
	rootCmd.AddCommand(swatchCmd)

	swatchCmd.Flags().StringP("output", "o", "", "Output PNG path (default: <RRGGBB>.png)")
	swatchCmd.Flags().Int("scale", swatch.DefaultScale, fmt.Sprintf("Integer scale factor (1..%d)", swatch.MaxScale))

	if err := viper.BindPFlag("swatch.output", swatchCmd.Flags().Lookup("output")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("swatch.scale", swatchCmd.Flags().Lookup("scale")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runSwatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	brand, err := colour.ParseHex(args[0])
	if err != nil {
		return err
	}

	output := viper.GetString("swatch.output")
	if output == "" {
		output = strings.TrimPrefix(brand.Hex(), "#") + ".png"
	}

	return writeSwatch(output, brand, viper.GetInt("swatch.scale"))
}

func writeSwatch(path string, brand colour.RGB, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	finding, err := swatch.Encode(f, brand, scale)
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Swatch written", "path", path, "brand", brand.Hex(), "label", swatch.Label(finding))
	return nil
}
