// Package weather is the weather search case study: a debounced location
// search and a forecast request with cancel-in-flight and a timeout.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
)

// Key binds a Client in a dependency.Values bundle.
const Key = "casestudies.weather"

var ErrRequest = errors.New("weather request failed")

type Location struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) String() string {
	if l.Admin1 == "" {
		return l.Name + ", " + l.Country
	}
	return l.Name + ", " + l.Admin1 + ", " + l.Country
}

type Day struct {
	Date           time.Time
	TemperatureMax float64
	TemperatureMin float64
	Unit           string
}

type Forecast struct {
	Days []Day
}

type Client struct {
	Search   dependency.Fetch[string, []Location]
	Forecast dependency.Fetch[Location, Forecast]
}

func From(ctx context.Context) (Client, error) {
	return dependency.Lookup[Client](ctx, Key)
}

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com"
	DefaultForecastURL  = "https://api.open-meteo.com"
)

// Live queries the open-meteo geocoding and forecast APIs.
func Live(httpClient *http.Client, geocodingURL, forecastURL string) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	geocodingURL = strings.TrimSuffix(geocodingURL, "/")
	forecastURL = strings.TrimSuffix(forecastURL, "/")

	return Client{
		Search: func(ctx context.Context, query string) ([]Location, error) {
			var body struct {
				Results []Location `json:"results"`
			}
			q := url.Values{"name": {query}, "count": {"10"}}
			if err := getJSON(ctx, httpClient, geocodingURL+"/v1/search?"+q.Encode(), &body); err != nil {
				return nil, err
			}
			return body.Results, nil
		},
		Forecast: func(ctx context.Context, loc Location) (Forecast, error) {
			var body struct {
				Daily struct {
					Time           []string  `json:"time"`
					TemperatureMax []float64 `json:"temperature_2m_max"`
					TemperatureMin []float64 `json:"temperature_2m_min"`
				} `json:"daily"`
				DailyUnits struct {
					TemperatureMax string `json:"temperature_2m_max"`
				} `json:"daily_units"`
			}
			q := url.Values{
				"latitude":  {strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
				"longitude": {strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
				"daily":     {"temperature_2m_max,temperature_2m_min"},
				"timezone":  {"auto"},
			}
			if err := getJSON(ctx, httpClient, forecastURL+"/v1/forecast?"+q.Encode(), &body); err != nil {
				return Forecast{}, err
			}

			daily := body.Daily
			n := min(len(daily.Time), len(daily.TemperatureMax), len(daily.TemperatureMin))
			days := make([]Day, 0, n)
			for i := 0; i < n; i++ {
				date, err := time.Parse(time.DateOnly, daily.Time[i])
				if err != nil {
					return Forecast{}, fmt.Errorf("%w: date %q: %w", ErrRequest, daily.Time[i], err)
				}
				days = append(days, Day{
					Date:           date,
					TemperatureMax: daily.TemperatureMax[i],
					TemperatureMin: daily.TemperatureMin[i],
					Unit:           body.DailyUnits.TemperatureMax,
				})
			}
			return Forecast{Days: days}, nil
		},
	}
}

func getJSON(ctx context.Context, httpClient *http.Client, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrRequest, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrRequest, err)
	}
	return nil
}
