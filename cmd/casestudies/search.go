package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/on-the-ground/composable_go/casestudies/weather"
	"github.com/on-the-ground/composable_go/store"
)

func searchCmd(a *app) *cobra.Command {
	var forecast bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search locations and print the forecast of the best match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.New(weather.State{}, traced(a, weather.Search(weather.OptionsFrom(a.cfg.Weather))), a.storeOptions("weather")...)
			defer s.Close()

			ctx := cmd.Context()
			if err := s.Send(weather.SearchQueryChanged{Query: strings.Join(args, " ")}).Wait(ctx); err != nil {
				return err
			}
			state := s.State()
			if state.Err != nil {
				return state.Err
			}
			printResults(cmd.OutOrStdout(), state.Results)
			if !forecast || len(state.Results) == 0 {
				return nil
			}

			if err := s.Send(weather.SearchResultTapped{Location: state.Results[0]}).Wait(ctx); err != nil {
				return err
			}
			state = s.State()
			if state.Err != nil {
				return state.Err
			}
			printForecast(cmd.OutOrStdout(), state.Results[0], state.Weather)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&forecast, "forecast", "f", false, "also print the forecast of the first result")
	return cmd
}

func printResults(w io.Writer, results []weather.Location) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no matching location")
		return
	}
	for _, loc := range results {
		fmt.Fprintf(w, "%s (%.2f, %.2f)\n", loc, loc.Latitude, loc.Longitude)
	}
}

func printForecast(w io.Writer, loc weather.Location, forecast *weather.Weather) {
	if forecast == nil {
		return
	}
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(loc.String()))
	for _, day := range forecast.Days {
		fmt.Fprintf(w, "  %s  %5.1f%s / %5.1f%s\n",
			day.Date.Format("Mon Jan 2"), day.TemperatureMax, day.Unit, day.TemperatureMin, day.Unit)
	}
}
