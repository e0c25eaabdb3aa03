package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/carprice/config"
	"github.com/kilianp07/carprice/core/pricing/history"
	"github.com/kilianp07/carprice/pkg/export"
)

var (
	historyFormat string
	historyBrand  string
	historyLimit  int
	historySince  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export recorded estimates and rejections",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVarP(&historyFormat, "format", "f", "csv", "output format: "+strings.Join(export.Formats, ", "))
	f.StringVar(&historyBrand, "brand", "", "only records for this brand")
	f.IntVar(&historyLimit, "limit", 0, "keep only the most recent records (0 for all)")
	f.DurationVar(&historySince, "since", 0, "only records newer than this duration")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.History.Backend == "none" {
		return fmt.Errorf("history is disabled in %s", cfgPath)
	}
	store, err := history.Open(cfg.History.Store())
	if err != nil {
		return err
	}
	defer store.Close()

	q := history.Query{Brand: historyBrand, Limit: historyLimit}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), historyFormat, recs)
}
