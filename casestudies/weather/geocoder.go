package weather

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/on-the-ground/composable_go/dependency"
)

// Cities is the location table Offline searches by default.
var Cities = []Location{
	{ID: 5391959, Name: "San Francisco", Country: "United States", Admin1: "California", Latitude: 37.77493, Longitude: -122.41942},
	{ID: 5392171, Name: "San Jose", Country: "United States", Admin1: "California", Latitude: 37.33939, Longitude: -121.89496},
	{ID: 5391811, Name: "San Diego", Country: "United States", Admin1: "California", Latitude: 32.71571, Longitude: -117.16472},
	{ID: 3109718, Name: "Santander", Country: "Spain", Admin1: "Cantabria", Latitude: 43.46472, Longitude: -3.80444},
	{ID: 3871336, Name: "Santiago", Country: "Chile", Latitude: -33.45694, Longitude: -70.64827},
	{ID: 1835848, Name: "Seoul", Country: "South Korea", Latitude: 37.566, Longitude: 126.9784},
	{ID: 1850147, Name: "Tokyo", Country: "Japan", Latitude: 35.6895, Longitude: 139.69171},
	{ID: 2643743, Name: "London", Country: "United Kingdom", Admin1: "England", Latitude: 51.50853, Longitude: -0.12574},
	{ID: 2988507, Name: "Paris", Country: "France", Admin1: "Île-de-France", Latitude: 48.85341, Longitude: 2.3488},
	{ID: 5128581, Name: "New York", Country: "United States", Admin1: "New York", Latitude: 40.71427, Longitude: -74.00597},
}

// maxTypos is how many edits a query may be away from the start of a name.
func maxTypos(query string) int {
	return len([]rune(query)) / 4
}

// Offline searches locations by fuzzy prefix and forecasts from latitude and
// day of year, so the search demo works without a network.
func Offline(locations ...Location) Client {
	if len(locations) == 0 {
		locations = Cities
	}
	return Client{
		Search: func(ctx context.Context, query string) ([]Location, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return fuzzySearch(locations, query), nil
		},
		Forecast: func(ctx context.Context, loc Location) (Forecast, error) {
			if err := ctx.Err(); err != nil {
				return Forecast{}, err
			}
			return syntheticForecast(loc, dependency.FromContext(ctx).Clock.Now()), nil
		},
	}
}

func fuzzySearch(locations []Location, query string) []Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	qr := []rune(q)

	type match struct {
		loc      Location
		distance int
	}
	var matches []match
	for _, loc := range locations {
		name := []rune(strings.ToLower(loc.Name))
		if len(name) > len(qr) {
			name = name[:len(qr)]
		}
		d := levenshtein.ComputeDistance(q, string(name))
		if d <= maxTypos(q) {
			matches = append(matches, match{loc: loc, distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].loc.Name < matches[j].loc.Name
	})

	out := make([]Location, len(matches))
	for i, m := range matches {
		out[i] = m.loc
	}
	return out
}

func syntheticForecast(loc Location, now time.Time) Forecast {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	base := 30 - math.Abs(loc.Latitude)/2
	days := make([]Day, 7)
	for i := range days {
		date := start.AddDate(0, 0, i)
		season := 8 * math.Cos(2*math.Pi*float64(date.YearDay()-200)/365)
		if loc.Latitude < 0 {
			season = -season
		}
		high := math.Round((base+season)*10) / 10
		days[i] = Day{
			Date:           date,
			TemperatureMax: high,
			TemperatureMin: math.Round((high-8)*10) / 10,
			Unit:           "°C",
		}
	}
	return Forecast{Days: days}
}
