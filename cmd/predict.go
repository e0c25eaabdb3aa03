package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/carprice/core/advisory"
	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/pricing"
)

var (
	predictReq  pricing.Request
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate the price of one vehicle",
	Long: "Estimate the price of one vehicle described by flags. Unset engine, power " +
		"and tank values are taken from the brand defaults.",
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictReq.Brand, "brand", "", "vehicle brand")
	f.StringVar(&predictReq.Model, "model", "", "vehicle model")
	f.IntVar(&predictReq.Year, "year", 0, "model year")
	f.IntVar(&predictReq.OdometerKM, "km", 0, "odometer reading in km")
	f.IntVar(&predictReq.EngineCC, "engine-cc", 0, "engine capacity in cc")
	f.IntVar(&predictReq.MaxPowerBHP, "power", 0, "max power in bhp")
	f.IntVar(&predictReq.FuelTankLiters, "tank", 0, "fuel tank capacity in liters")
	f.StringVar(&predictReq.Transmission, "transmission", "", "Manual or Automatic (default: first offered by the brand)")
	f.StringVar(&predictReq.FuelType, "fuel", string(model.FuelPetrol), "Petrol, Diesel, Electric or CNG")
	f.StringVar(&predictReq.Owner, "owner", string(model.OwnerFirst), "First Owner, Second Owner or Third Owner")
	f.StringVar(&predictReq.Color, "color", string(model.ColorWhite), "exterior color")
	f.BoolVar(&predictJSON, "json", false, "print the estimate as JSON")
	_ = predictCmd.MarkFlagRequired("brand")
	_ = predictCmd.MarkFlagRequired("model")
	_ = predictCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	est, err := svc.Pricing.EstimateRequest(context.Background(), predictReq)
	if err != nil {
		return err
	}
	if predictJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	return printEstimate(cmd.OutOrStdout(), est)
}

func printEstimate(w io.Writer, est model.PriceEstimate) error {
	v := est.Vehicle
	if _, err := fmt.Fprintf(w, "%s %s (%d, %d km)\n", v.Brand, v.Model, v.Year, v.OdometerKM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Estimated price: %s\nRange: %s - %s\n",
		formatUSD(est.Mean), formatUSD(est.Lower), formatUSD(est.Upper)); err != nil {
		return err
	}
	for _, msg := range advisory.Messages(est) {
		if _, err := fmt.Fprintf(w, "Warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

var usd = message.NewPrinter(language.English)

// formatUSD renders whole dollars with thousands separators: "$12,345 USD".
func formatUSD(v float64) string {
	return usd.Sprintf("$%d %s", int64(math.Round(v)), model.Currency)
}
