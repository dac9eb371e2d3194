package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

// openMeteoHourly maps Open-Meteo archive variable names to parameters.
// Order is the order they appear in the request URL.
var openMeteoHourly = []struct {
	field string
	param timeseries.Parameter
}{
	{"temperature_2m", timeseries.ParamTemp},
	{"dew_point_2m", timeseries.ParamDewPoint},
	{"relative_humidity_2m", timeseries.ParamHumidity},
	{"precipitation", timeseries.ParamPrecip},
	{"wind_speed_10m", timeseries.ParamWindSpd},
	{"wind_direction_10m", timeseries.ParamWindDir},
	{"surface_pressure", timeseries.ParamPressure},
}

var openMeteoDaily = []struct {
	field string
	param timeseries.Parameter
}{
	{"temperature_2m_mean", timeseries.ParamTemp},
	{"temperature_2m_min", timeseries.ParamTempMin},
	{"temperature_2m_max", timeseries.ParamTempMax},
	{"precipitation_sum", timeseries.ParamPrecip},
	{"wind_speed_10m_max", timeseries.ParamWindSpd},
	{"wind_direction_10m_dominant", timeseries.ParamWindDir},
}

// OpenMeteoProvider fetches historical station data from the Open-Meteo
// archive API, queried at the station's coordinates. No API key required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	rc      *resilientClient
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		rc:      newResilientClient(client, "openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Supports(gran timeseries.Granularity) bool {
	return gran == timeseries.Hourly || gran == timeseries.Daily
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, station stations.Station, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	if !p.Supports(gran) {
		return nil, fmt.Errorf("openmeteo does not support %s data", gran)
	}

	fields := openMeteoHourly
	if gran == timeseries.Daily {
		fields = openMeteoDaily
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.field
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", station.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", station.Longitude))
		values.Set("start_date", start.UTC().Format("2006-01-02"))
		values.Set("end_date", end.UTC().Format("2006-01-02"))
		values.Set("timezone", "UTC")
		values.Set("wind_speed_unit", "ms")
		values.Set(string(gran), strings.Join(names, ","))

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := p.rc.do(ctx, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
		Daily  map[string]json.RawMessage `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	block := payload.Hourly
	timeLayout := "2006-01-02T15:04"
	if gran == timeseries.Daily {
		block = payload.Daily
		timeLayout = "2006-01-02"
	}
	if block == nil {
		return nil, fmt.Errorf("openmeteo response missing %s block", gran)
	}

	var rawTimes []string
	if err := json.Unmarshal(block["time"], &rawTimes); err != nil {
		return nil, fmt.Errorf("openmeteo time axis: %w", err)
	}
	times := make([]time.Time, len(rawTimes))
	for i, s := range rawTimes {
		t, err := time.Parse(timeLayout, s)
		if err != nil {
			return nil, fmt.Errorf("openmeteo timestamp %q: %w", s, err)
		}
		times[i] = t.UTC()
	}

	result := make(map[timeseries.Parameter]timeseries.Series, len(fields))
	for _, f := range fields {
		raw, ok := block[f.field]
		if !ok {
			continue
		}
		// Missing observations arrive as JSON null.
		var vals []*float64
		if err := json.Unmarshal(raw, &vals); err != nil {
			return nil, fmt.Errorf("openmeteo field %s: %w", f.field, err)
		}

		series := timeseries.NewSeries()
		for i, v := range vals {
			if v == nil || i >= len(times) {
				continue
			}
			series.Set(times[i], timeseries.Observation{Value: *v, Source: p.name})
		}
		if series.Len() > 0 {
			result[f.param] = series
		}
	}

	return result, nil
}
