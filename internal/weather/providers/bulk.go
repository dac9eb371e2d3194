package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

// Column layouts of the bulk CSV files. An empty parameter skips the column.
var (
	bulkHourlyColumns = []timeseries.Parameter{
		"", "", // date, hour
		timeseries.ParamTemp,
		timeseries.ParamDewPoint,
		timeseries.ParamHumidity,
		timeseries.ParamPrecip,
		timeseries.ParamSnowDpth,
		timeseries.ParamWindDir,
		timeseries.ParamWindSpd,
		"", // peak gust
		timeseries.ParamPressure,
		"", // sunshine
		timeseries.ParamCondCode,
	}
	bulkDailyColumns = []timeseries.Parameter{
		"", // date
		timeseries.ParamTemp,
		timeseries.ParamTempMin,
		timeseries.ParamTempMax,
		timeseries.ParamPrecip,
		timeseries.ParamSnowDpth,
		timeseries.ParamWindDir,
		timeseries.ParamWindSpd,
		"", // peak gust
		timeseries.ParamPressure,
		"", // sunshine
	}
	bulkMonthlyColumns = []timeseries.Parameter{
		"", "", // year, month
		timeseries.ParamTemp,
		timeseries.ParamTempMin,
		timeseries.ParamTempMax,
		timeseries.ParamPrecip,
		timeseries.ParamWindSpd,
		timeseries.ParamPressure,
		"", // sunshine
	}
)

// BulkProvider fetches the Meteostat bulk archive: gzipped CSV files per
// station, split by year for hourly and daily data.
type BulkProvider struct {
	name            string
	hourlyEndpoint  string // expects year, station
	dailyEndpoint   string // expects year, station
	monthlyEndpoint string // expects station
	rc              *resilientClient
}

func NewBulkProvider(client *http.Client) *BulkProvider {
	return &BulkProvider{
		name:            "bulk",
		hourlyEndpoint:  "https://data.meteostat.net/hourly/%d/%s.csv.gz",
		dailyEndpoint:   "https://data.meteostat.net/daily/%d/%s.csv.gz",
		monthlyEndpoint: "https://data.meteostat.net/monthly/%s.csv.gz",
		rc:              newResilientClient(client, "bulk"),
	}
}

func (p *BulkProvider) Name() string {
	return p.name
}

func (p *BulkProvider) Supports(timeseries.Granularity) bool {
	return true
}

func (p *BulkProvider) Fetch(ctx context.Context, station stations.Station, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	result := make(map[timeseries.Parameter]timeseries.Series)

	if gran == timeseries.Monthly {
		u := fmt.Sprintf(p.monthlyEndpoint, station.ID)
		if err := p.fetchFile(ctx, u, gran, start, end, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	endpoint := p.hourlyEndpoint
	if gran == timeseries.Daily {
		endpoint = p.dailyEndpoint
	}
	for year := start.UTC().Year(); year <= end.UTC().Year(); year++ {
		u := fmt.Sprintf(endpoint, year, station.ID)
		if err := p.fetchFile(ctx, u, gran, start, end, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *BulkProvider) fetchFile(ctx context.Context, u string, gran timeseries.Granularity, start, end time.Time, result map[timeseries.Parameter]timeseries.Series) error {
	resp, err := p.rc.do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("gunzip %s: %w", u, err)
	}
	defer gz.Close()

	columns := bulkHourlyColumns
	switch gran {
	case timeseries.Daily:
		columns = bulkDailyColumns
	case timeseries.Monthly:
		columns = bulkMonthlyColumns
	}

	r := csv.NewReader(gz)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", u, err)
		}

		t, err := parseBulkTime(gran, record)
		if err != nil {
			continue // malformed row, skip
		}
		if t.Before(start) || t.After(end) {
			continue
		}

		for i, param := range columns {
			if param == "" || i >= len(record) || record[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				continue
			}
			series, ok := result[param]
			if !ok {
				series = timeseries.NewSeries()
				result[param] = series
			}
			series.Set(t, timeseries.Observation{Value: v, Source: p.name})
		}
	}
	return nil
}

func parseBulkTime(gran timeseries.Granularity, record []string) (time.Time, error) {
	switch gran {
	case timeseries.Hourly:
		if len(record) < 2 {
			return time.Time{}, fmt.Errorf("short record")
		}
		d, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return time.Time{}, err
		}
		h, err := strconv.Atoi(record[1])
		if err != nil {
			return time.Time{}, err
		}
		return d.Add(time.Duration(h) * time.Hour).UTC(), nil
	case timeseries.Daily:
		if len(record) < 1 {
			return time.Time{}, fmt.Errorf("short record")
		}
		return time.Parse("2006-01-02", record[0])
	case timeseries.Monthly:
		if len(record) < 2 {
			return time.Time{}, fmt.Errorf("short record")
		}
		year, err := strconv.Atoi(record[0])
		if err != nil {
			return time.Time{}, err
		}
		month, err := strconv.Atoi(record[1])
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unknown granularity %s", gran)
}
