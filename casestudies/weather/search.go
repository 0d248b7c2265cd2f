package weather

import (
	"context"
	"errors"
	"time"

	"github.com/on-the-ground/composable_go/config"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/reducer"
)

var ErrForecastTimeout = errors.New("forecast timed out")

type State struct {
	SearchQuery             string
	Results                 []Location
	ForecastRequestInFlight *Location
	Weather                 *Weather
	Err                     error
}

type Weather struct {
	LocationID int
	Days       []Day
}

type Action interface {
	weatherAction()
}

type (
	SearchQueryChanged struct{ Query string }
	SearchResponse     struct{ Result effects.Result[[]Location] }
	SearchResultTapped struct{ Location Location }
	ForecastResponse   struct {
		LocationID int
		Result     effects.Result[Forecast]
	}
	ForecastTimedOut struct{ LocationID int }
)

func (SearchQueryChanged) weatherAction() {}
func (SearchResponse) weatherAction()     {}
func (SearchResultTapped) weatherAction() {}
func (ForecastResponse) weatherAction()   {}
func (ForecastTimedOut) weatherAction()   {}

var (
	locationID = effects.NewToken("weather.location")
	forecastID = effects.NewToken("weather.forecast")
)

type Options struct {
	// Debounce is the quiet period after the last keystroke before searching.
	Debounce time.Duration
	// Timeout bounds a forecast request.
	Timeout time.Duration
}

// OptionsFrom reads the weather section of the runtime settings.
func OptionsFrom(cfg config.WeatherConfig) Options {
	return Options{Debounce: cfg.Debounce, Timeout: cfg.Timeout}
}

// Search searches locations as the query changes and loads the forecast of
// the tapped result. Only the latest query and the latest tapped location
// are ever fetched to completion.
func Search(opts Options) reducer.Reducer[State, Action] {
	return reducer.Reduce[State, Action](func(state *State, action Action) effects.Effect[Action] {
		switch action := action.(type) {
		case SearchQueryChanged:
			state.SearchQuery = action.Query
			if action.Query == "" {
				state.Results = nil
				state.Weather = nil
				return effects.Cancel[Action](locationID)
			}
			query := action.Query
			return effects.Debounce(
				effects.Try(
					func(ctx context.Context) ([]Location, error) {
						client, err := From(ctx)
						if err != nil {
							return nil, err
						}
						return client.Search(ctx, query)
					},
					func(r effects.Result[[]Location]) Action { return SearchResponse{Result: r} },
					effects.Named[Action]("search"),
				),
				locationID,
				opts.Debounce,
			)

		case SearchResponse:
			results, err := action.Result.Get()
			state.Results = results
			state.Err = err
			return effects.None[Action]()

		case SearchResultTapped:
			loc := action.Location
			state.ForecastRequestInFlight = &loc
			state.Err = nil
			forecast := effects.Try(
				func(ctx context.Context) (Forecast, error) {
					client, err := From(ctx)
					if err != nil {
						return Forecast{}, err
					}
					return client.Forecast(ctx, loc)
				},
				func(r effects.Result[Forecast]) Action {
					return ForecastResponse{LocationID: loc.ID, Result: r}
				},
				effects.Named[Action]("forecast"),
			)
			if opts.Timeout <= 0 {
				return forecast.Cancellable(forecastID, true)
			}
			return effects.Timeout(forecast, forecastID, opts.Timeout, Action(ForecastTimedOut{LocationID: loc.ID}))

		case ForecastResponse:
			state.ForecastRequestInFlight = nil
			forecast, err := action.Result.Get()
			if err != nil {
				state.Weather = nil
				state.Err = err
				return effects.None[Action]()
			}
			state.Weather = &Weather{LocationID: action.LocationID, Days: forecast.Days}
			return effects.None[Action]()

		case ForecastTimedOut:
			state.ForecastRequestInFlight = nil
			state.Weather = nil
			state.Err = ErrForecastTimeout
			return effects.None[Action]()

		default:
			panic("exhaustive match fallback, weather action")
		}
	})
}
