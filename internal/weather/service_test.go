package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-weather/internal/geo"
	"point-weather/internal/interp"
	"point-weather/internal/stations"
	"point-weather/internal/store"
	"point-weather/internal/timeseries"
)

// fakeProvider serves canned series and records how often it was asked.
type fakeProvider struct {
	name   string
	data   map[string]map[timeseries.Parameter]timeseries.Series
	calls  int
	fail   bool
}

func (f *fakeProvider) Name() string                                { return f.name }
func (f *fakeProvider) Supports(gran timeseries.Granularity) bool   { return true }
func (f *fakeProvider) Fetch(_ context.Context, st stations.Station, _ timeseries.Granularity, _, _ time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return f.data[st.ID], nil
}

func elev(v float64) *float64 { return &v }

func hour(h int) time.Time {
	return time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC)
}

func tempSeries(source string, values map[time.Time]float64) map[timeseries.Parameter]timeseries.Series {
	s := timeseries.NewSeries()
	for t, v := range values {
		s.Set(t, timeseries.Observation{Value: v, Source: source})
	}
	return map[timeseries.Parameter]timeseries.Series{timeseries.ParamTemp: s}
}

func testService(p Provider) *PointService {
	ix := stations.NewIndex([]stations.Station{
		{ID: "A", Latitude: 50.1, Longitude: 8.5, Elevation: elev(111)},
		{ID: "B", Latitude: 50.3, Longitude: 8.8, Elevation: elev(250)},
	})
	return NewPointService(
		ix,
		[]Provider{p},
		store.NewMemoryStore(time.Hour),
		interp.New(interp.DefaultConfig()),
		4, 0,
	)
}

func TestInterpolatedMergesNearbyStations(t *testing.T) {
	prov := &fakeProvider{
		name: "fake",
		data: map[string]map[timeseries.Parameter]timeseries.Series{
			"A": tempSeries("fake", map[time.Time]float64{hour(0): 10.0}),
			"B": tempSeries("fake", map[time.Time]float64{hour(0): 20.0}),
		},
	}
	svc := testService(prov)

	point, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	got, err := svc.Interpolated(context.Background(), point, timeseries.Hourly, hour(0), hour(23),
		[]timeseries.Parameter{timeseries.ParamTemp}, interp.MethodIDW, 0, 0)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)

	// Both stations contribute; A is closer so it dominates.
	v := got.Rows[0].Values[timeseries.ParamTemp]
	assert.Greater(t, v, 10.0)
	assert.Less(t, v, 20.0)
	assert.Less(t, v, 15.0)
	assert.Len(t, got.Rows[0].Sources[timeseries.ParamTemp], 2)
}

func TestInterpolatedCachesStationSeries(t *testing.T) {
	prov := &fakeProvider{
		name: "fake",
		data: map[string]map[timeseries.Parameter]timeseries.Series{
			"A": tempSeries("fake", map[time.Time]float64{hour(0): 10.0}),
			"B": tempSeries("fake", map[time.Time]float64{hour(0): 20.0}),
		},
	}
	svc := testService(prov)

	point, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	_, err = svc.Interpolated(context.Background(), point, timeseries.Hourly, hour(0), hour(23),
		nil, interp.MethodIDW, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, prov.calls)

	// Second identical request is served from the cache.
	_, err = svc.Interpolated(context.Background(), point, timeseries.Hourly, hour(0), hour(23),
		nil, interp.MethodIDW, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, prov.calls)
}

func TestInterpolatedAllFetchesFail(t *testing.T) {
	prov := &fakeProvider{name: "fake", fail: true}
	svc := testService(prov)

	point, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	got, err := svc.Interpolated(context.Background(), point, timeseries.Hourly, hour(0), hour(23),
		nil, interp.MethodIDW, 0, 0)
	assert.ErrorIs(t, err, interp.ErrInsufficientData)
	assert.True(t, got.Empty())
}

func TestNearbyAppliesDefaults(t *testing.T) {
	prov := &fakeProvider{name: "fake"}
	svc := testService(prov)

	point, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	got := svc.Nearby(point, 0, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)

	got = svc.Nearby(point, 1, 0)
	assert.Len(t, got, 1)
}
