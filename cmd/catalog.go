package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/carprice/config"
	"github.com/kilianp07/carprice/core/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List brands, models and brand defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Default()
		if cmd.Flag("config").Changed && cfgPath != "" {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Catalog.Path != "" {
				if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
					return err
				}
			}
		}
		return printCatalog(cmd.OutOrStdout(), cat)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func printCatalog(out io.Writer, cat *catalog.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BRAND\tMODELS\tENGINE CC\tPOWER BHP\tTANK L\tLUXURY")
	for _, name := range cat.Brands() {
		b, _ := cat.Brand(name)
		luxury := ""
		if b.Luxury {
			luxury = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", b.Name, strings.Join(b.Models, ", "),
			b.Defaults.EngineCC, b.Defaults.MaxPowerBHP, b.Defaults.FuelTankLiters, luxury)
	}
	return w.Flush()
}
