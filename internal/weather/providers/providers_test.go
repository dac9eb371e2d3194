package providers

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

func hour(h int) time.Time {
	return time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC)
}

func TestOpenMeteoFetchHourly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50.050000", r.URL.Query().Get("latitude"))
		assert.Equal(t, "2024-01-10", r.URL.Query().Get("start_date"))
		assert.Contains(t, r.URL.Query().Get("hourly"), "temperature_2m")

		w.Header().Set("Content-Type", "application/json")
		// Second temperature is null: the observation must be absent, not zero.
		w.Write([]byte(`{
			"hourly": {
				"time": ["2024-01-10T00:00", "2024-01-10T01:00", "2024-01-10T02:00"],
				"temperature_2m": [3.4, null, 2.9],
				"surface_pressure": [1013.2, 1013.0, null]
			}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL

	st := stations.Station{ID: "10637", Latitude: 50.05, Longitude: 8.6}
	got, err := p.Fetch(context.Background(), st, timeseries.Hourly, hour(0), hour(23))
	require.NoError(t, err)

	temp := got[timeseries.ParamTemp]
	require.Equal(t, 2, temp.Len())

	o, ok := temp.At(hour(0))
	require.True(t, ok)
	assert.Equal(t, 3.4, o.Value)
	assert.Equal(t, "openmeteo", o.Source)

	_, ok = temp.At(hour(1))
	assert.False(t, ok)

	pres := got[timeseries.ParamPressure]
	assert.Equal(t, 2, pres.Len())
}

func TestOpenMeteoRejectsMonthly(t *testing.T) {
	p := NewOpenMeteoProvider(http.DefaultClient)
	_, err := p.Fetch(context.Background(), stations.Station{}, timeseries.Monthly, hour(0), hour(1))
	assert.Error(t, err)
}

func TestBulkFetchHourly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hourly/2024/10637.csv.gz", r.URL.Path)

		gz := gzip.NewWriter(w)
		defer gz.Close()
		// date,hour,temp,dwpt,rhum,prcp,snow,wdir,wspd,wpgt,pres,tsun,coco
		gz.Write([]byte("2024-01-10,0,3.4,1.2,86,0.0,,240,12.5,,1013.2,,3\n"))
		gz.Write([]byte("2024-01-10,1,3.1,,85,,,,,,,,\n"))
		gz.Write([]byte("2024-02-01,0,9.9,,,,,,,,,,\n")) // outside requested range
	}))
	defer srv.Close()

	p := NewBulkProvider(srv.Client())
	p.hourlyEndpoint = srv.URL + "/hourly/%d/%s.csv.gz"

	st := stations.Station{ID: "10637"}
	got, err := p.Fetch(context.Background(), st, timeseries.Hourly, hour(0), hour(23))
	require.NoError(t, err)

	temp := got[timeseries.ParamTemp]
	require.Equal(t, 2, temp.Len())

	o, ok := temp.At(hour(1))
	require.True(t, ok)
	assert.Equal(t, 3.1, o.Value)
	assert.Equal(t, "bulk", o.Source)

	// Empty fields stay absent.
	dwpt := got[timeseries.ParamDewPoint]
	assert.Equal(t, 1, dwpt.Len())

	coco := got[timeseries.ParamCondCode]
	o, ok = coco.At(hour(0))
	require.True(t, ok)
	assert.Equal(t, 3.0, o.Value)
}

func TestBulkFetchMonthly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monthly/10637.csv.gz", r.URL.Path)

		gz := gzip.NewWriter(w)
		defer gz.Close()
		// year,month,tavg,tmin,tmax,prcp,wspd,pres,tsun
		gz.Write([]byte("2024,1,2.8,-1.3,6.9,58.2,13.1,1014.9,\n"))
	}))
	defer srv.Close()

	p := NewBulkProvider(srv.Client())
	p.monthlyEndpoint = srv.URL + "/monthly/%s.csv.gz"

	st := stations.Station{ID: "10637"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	got, err := p.Fetch(context.Background(), st, timeseries.Monthly, start, end)
	require.NoError(t, err)

	temp := got[timeseries.ParamTemp]
	o, ok := temp.At(start)
	require.True(t, ok)
	assert.Equal(t, 2.8, o.Value)

	tmin := got[timeseries.ParamTempMin]
	o, ok = tmin.At(start)
	require.True(t, ok)
	assert.Equal(t, -1.3, o.Value)
}

func TestWeatherAPIRequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	_, err := p.Fetch(context.Background(), stations.Station{}, timeseries.Hourly, hour(0), hour(1))
	assert.Error(t, err)
}

func TestWeatherAPIFetchHourly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "2024-01-10", r.URL.Query().Get("dt"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"forecast": {"forecastday": [{"hour": [
				{"time_epoch": 1704844800, "temp_c": 3.4, "dewpoint_c": 1.2, "humidity": 86,
				 "precip_mm": 0.0, "wind_kph": 18.0, "wind_degree": 240, "pressure_mb": 1013.2}
			]}]}
		}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	st := stations.Station{ID: "10637", Latitude: 50.05, Longitude: 8.6}
	got, err := p.Fetch(context.Background(), st, timeseries.Hourly, hour(0), hour(0))
	require.NoError(t, err)

	temp := got[timeseries.ParamTemp]
	o, ok := temp.At(hour(0))
	require.True(t, ok)
	assert.Equal(t, 3.4, o.Value)
	assert.Equal(t, "weatherapi", o.Source)

	wspd := got[timeseries.ParamWindSpd]
	o, _ = wspd.At(hour(0))
	assert.InDelta(t, 5.0, o.Value, 1e-9) // 18 kph = 5 m/s
}
