package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"point-weather/internal/geo"
	"point-weather/internal/timeseries"
	"point-weather/internal/weather"
)

// Purger drops expired cache entries between runs.
type Purger interface {
	Purge()
}

// Scheduler periodically warms the station-series cache for configured points
// so interactive queries rarely wait on provider round-trips.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.PointService
	cache     Purger
	points    []geo.Point
	interval  time.Duration
}

// New creates a Scheduler prefetching data for the given points.
func New(points []geo.Point, interval time.Duration, service *weather.PointService, cache Purger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cache:     cache,
		points:    points,
		interval:  interval,
	}
}

// Start schedules the periodic prefetch job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.points) == 0 {
		log.Println("scheduler: no prefetch points configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running prefetch job")

		now := time.Now().UTC()
		hourlyStart := now.Add(-48 * time.Hour)
		dailyStart := now.AddDate(0, 0, -30)

		var wg sync.WaitGroup
		for _, p := range s.points {
			p := p
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				s.service.Prefetch(ctx, p, timeseries.Hourly, hourlyStart, now)
				s.service.Prefetch(ctx, p, timeseries.Daily, dailyStart, now)
			}()
		}
		wg.Wait()

		if s.cache != nil {
			s.cache.Purge()
		}
		log.Println("scheduler: completed prefetch job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
