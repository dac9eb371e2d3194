package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kelvins/geocoder"

	"point-weather/internal/geo"
	"point-weather/internal/interp"
	"point-weather/internal/timeseries"
	"point-weather/internal/weather"
)

var validate = validator.New()

// Options carries the per-deployment defaults the handlers apply.
type Options struct {
	Params        interp.Config
	DefaultMethod interp.Method
	GeocoderKey   string // empty disables city lookups
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.PointService, opts Options) {
	v1 := app.Group("/api/v1")

	v1.Get("/point/:granularity", func(c *fiber.Ctx) error {
		gran, err := parseGranularity(c.Params("granularity"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var req pointQuery
		if err := req.bind(c, opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		method := opts.DefaultMethod
		if req.Method != "" {
			method, err = interp.ParseMethod(req.Method)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		merged, err := service.Interpolated(c.Context(), req.Point, gran, req.Start, req.End,
			nil, method, req.Limit, req.Radius)
		if err != nil {
			switch {
			case errors.Is(err, interp.ErrInsufficientData):
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested point")
			case errors.Is(err, interp.ErrInvalidInput):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to interpolate weather data")
		}

		return c.JSON(fiber.Map{
			"point": fiber.Map{
				"latitude":  req.Point.Latitude,
				"longitude": req.Point.Longitude,
				"elevation": req.Point.Elevation,
			},
			"granularity": gran,
			"method":      method,
			"rows":        renderRows(merged, opts.Params, req.Sources),
		})
	})

	v1.Get("/stations/nearby", func(c *fiber.Ctx) error {
		var req nearbyQuery
		if err := req.bind(c, opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		found := service.Nearby(req.Point, req.Limit, req.Radius)
		if len(found) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no stations near requested point")
		}

		return c.JSON(fiber.Map{
			"point": fiber.Map{
				"latitude":  req.Point.Latitude,
				"longitude": req.Point.Longitude,
			},
			"stations": found,
		})
	})
}

// row is the wire shape of one output timestamp. Values carry the merged
// parameters rounded to their display precision; absent parameters are
// simply missing keys.
type row struct {
	Time    string                                           `json:"time"`
	Values  map[timeseries.Parameter]float64                 `json:"values"`
	Sources map[timeseries.Parameter][]timeseries.SourceWeight `json:"sources,omitempty"`
}

func renderRows(merged timeseries.MergedSeries, params interp.Config, withSources bool) []row {
	rows := make([]row, len(merged.Rows))
	for i, r := range merged.Rows {
		values := make(map[timeseries.Parameter]float64, len(r.Values))
		for param, v := range r.Values {
			values[param] = params.Round(v, param)
		}
		rows[i] = row{Time: r.Time.Format(time.RFC3339), Values: values}
		if withSources {
			rows[i].Sources = r.Sources
		}
	}
	return rows
}

// pointQuery holds the query parameters of a point interpolation request.
type pointQuery struct {
	Point   geo.Point
	Start   time.Time `validate:"required"`
	End     time.Time `validate:"required,gtefield=Start"`
	Method  string
	Limit   int     `validate:"min=0,max=20"`
	Radius  float64 `validate:"min=0"`
	Sources bool
}

func (q *pointQuery) bind(c *fiber.Ctx, opts Options) error {
	p, err := parsePoint(c, opts)
	if err != nil {
		return err
	}
	q.Point = p

	fromStr := c.Query("start")
	toStr := c.Query("end")
	if fromStr == "" || toStr == "" {
		return errors.New("start and end query parameters are required")
	}
	start, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	end, err := parseTime(toStr)
	if err != nil {
		return err
	}
	q.Start = start
	q.End = end

	q.Method = c.Query("method")
	q.Sources = c.QueryBool("sources")
	q.Limit = c.QueryInt("limit")
	q.Radius = c.QueryFloat("radius")
	return nil
}

// nearbyQuery holds the query parameters of a station lookup.
type nearbyQuery struct {
	Point  geo.Point
	Limit  int
	Radius float64
}

func (q *nearbyQuery) bind(c *fiber.Ctx, opts Options) error {
	p, err := parsePoint(c, opts)
	if err != nil {
		return err
	}
	q.Point = p
	q.Limit = c.QueryInt("limit")
	q.Radius = c.QueryFloat("radius")
	return nil
}

// parsePoint builds the query target from lat/lon (+ optional elev) query
// parameters, or resolves city/country through the geocoder when configured.
func parsePoint(c *fiber.Ctx, opts Options) (geo.Point, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" && lonStr == "" {
		return geocodePoint(c.Query("city"), c.Query("country"), opts)
	}
	if latStr == "" || lonStr == "" {
		return geo.Point{}, errors.New("lat and lon query parameters are both required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Point{}, errors.New("invalid lat query parameter")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Point{}, errors.New("invalid lon query parameter")
	}

	if elevStr := c.Query("elev"); elevStr != "" {
		elev, err := strconv.ParseFloat(elevStr, 64)
		if err != nil {
			return geo.Point{}, errors.New("invalid elev query parameter")
		}
		return geo.NewPointWithElevation(lat, lon, elev)
	}
	return geo.NewPoint(lat, lon)
}

func geocodePoint(city, country string, opts Options) (geo.Point, error) {
	if city == "" {
		return geo.Point{}, errors.New("either lat/lon or city query parameters are required")
	}
	if opts.GeocoderKey == "" {
		return geo.Point{}, errors.New("city lookups are not configured; use lat/lon")
	}

	geocoder.ApiKey = opts.GeocoderKey
	location, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return geo.Point{}, errors.New("failed to resolve city to coordinates")
	}
	return geo.NewPoint(location.Latitude, location.Longitude)
}

func parseGranularity(s string) (timeseries.Granularity, error) {
	switch timeseries.Granularity(s) {
	case timeseries.Hourly, timeseries.Daily, timeseries.Monthly:
		return timeseries.Granularity(s), nil
	}
	return "", errors.New("granularity must be hourly, daily or monthly")
}

// parseTime tries RFC3339, a plain date, or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
