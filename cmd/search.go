package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/dashboard"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap"
)

func searchCmd() *cobra.Command {
	var (
		units  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <city>",
		Short: "Show current conditions and the 5-day outlook for a city",
		Long:  `Run one search, print the result and record the city in the recent-search list. --units switches and persists the unit preference first.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, config.GetConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			if units != "" {
				want, err := weather.ParseUnits(units)
				if err != nil {
					return err
				}
				if a.ctrl.State().Units != want {
					if _, err := a.ctrl.ToggleUnits(ctx); err != nil {
						return err
					}
				}
			}

			city := strings.Join(args, " ")
			if err := a.ctrl.Submit(ctx, city); err != nil {
				log.Debug("Search failed", zap.String("city", city), zap.Error(err))
				return err
			}

			view := dashboard.Render(a.ctrl.State())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&units, "units", "u", "", "temperature units: celsius or fahrenheit (persisted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rendered view as JSON")

	return cmd
}

func printView(w io.Writer, v dashboard.View) {
	if v.Current == nil {
		return
	}
	c := v.Current

	fmt.Fprintf(w, "%s  %s\n", c.Location, c.ObservedAt)
	fmt.Fprintf(w, "  %s, %s (feels like %s)\n", c.Temperature, c.Description, c.FeelsLike)
	fmt.Fprintf(w, "  Min/Max     %s\n", c.MinMax)
	fmt.Fprintf(w, "  Humidity    %s\n", c.Humidity)
	fmt.Fprintf(w, "  Wind        %s\n", c.WindSpeed)
	fmt.Fprintf(w, "  Pressure    %s\n", c.Pressure)
	fmt.Fprintf(w, "  Visibility  %s\n", c.Visibility)

	if len(v.Forecast) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, day := range v.Forecast {
		fmt.Fprintf(w, "  %s %s  %s / %s  %s\n", day.Weekday, day.Date, day.High, day.Low, day.Description)
	}
}
