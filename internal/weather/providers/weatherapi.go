package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

// WeatherAPIProvider fetches hourly history from the WeatherAPI.com History
// API. The API serves one day per request, so a range fetch issues one call
// per day. Requires an API key.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	rc      *resilientClient
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/history.json",
		rc:      newResilientClient(client, "weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Supports(gran timeseries.Granularity) bool {
	return gran == timeseries.Hourly
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, station stations.Station, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}
	if !p.Supports(gran) {
		return nil, fmt.Errorf("weatherapi does not support %s data", gran)
	}

	result := map[timeseries.Parameter]timeseries.Series{
		timeseries.ParamTemp:     timeseries.NewSeries(),
		timeseries.ParamDewPoint: timeseries.NewSeries(),
		timeseries.ParamHumidity: timeseries.NewSeries(),
		timeseries.ParamPrecip:   timeseries.NewSeries(),
		timeseries.ParamWindSpd:  timeseries.NewSeries(),
		timeseries.ParamWindDir:  timeseries.NewSeries(),
		timeseries.ParamPressure: timeseries.NewSeries(),
	}

	day := time.Date(start.UTC().Year(), start.UTC().Month(), start.UTC().Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(end.UTC()) {
		if err := p.fetchDay(ctx, station, day, start, end, result); err != nil {
			return nil, err
		}
		day = day.AddDate(0, 0, 1)
	}

	for param, series := range result {
		if series.Len() == 0 {
			delete(result, param)
		}
	}
	return result, nil
}

func (p *WeatherAPIProvider) fetchDay(ctx context.Context, station stations.Station, day, start, end time.Time, result map[timeseries.Parameter]timeseries.Series) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", fmt.Sprintf("%f,%f", station.Latitude, station.Longitude))
		values.Set("dt", day.Format("2006-01-02"))

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch  int64   `json:"time_epoch"`
					TempC      float64 `json:"temp_c"`
					DewPointC  float64 `json:"dewpoint_c"`
					Humidity   float64 `json:"humidity"`
					PrecipMm   float64 `json:"precip_mm"`
					WindKph    float64 `json:"wind_kph"`
					WindDegree float64 `json:"wind_degree"`
					PressureMb float64 `json:"pressure_mb"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	for _, fd := range payload.Forecast.ForecastDay {
		for _, h := range fd.Hour {
			ts := time.Unix(h.TimeEpoch, 0).UTC()
			if ts.Before(start) || ts.After(end) {
				continue
			}

			set := func(param timeseries.Parameter, v float64) {
				result[param].Set(ts, timeseries.Observation{Value: v, Source: p.name})
			}
			set(timeseries.ParamTemp, h.TempC)
			set(timeseries.ParamDewPoint, h.DewPointC)
			set(timeseries.ParamHumidity, h.Humidity)
			set(timeseries.ParamPrecip, h.PrecipMm)
			set(timeseries.ParamWindSpd, h.WindKph/3.6) // kph to m/s
			set(timeseries.ParamWindDir, h.WindDegree)
			set(timeseries.ParamPressure, h.PressureMb)
		}
	}
	return nil
}
