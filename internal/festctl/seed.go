package festctl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/sync/errgroup"

	"github.com/okian/fest/internal/domain/catalog"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/pkg/logger"
)

// SeedConfig sizes a generated festival.
type SeedConfig struct {
	Seed     uint64
	Teams    int
	Students int
	Events   int
	Workers  int
	// Results records podium placings for every generated event.
	Results bool
}

// Plan is a generated festival ready to be submitted.
type Plan struct {
	Events        []EventInput
	Registrations []model.Registration
	Results       []ResultInput
}

var (
	teamNames  = []string{"PYRA", "ZETA", "NOVA", "ORION", "VEGA", "LYRA", "ATLAS", "HELIX"}
	categories = []string{"A", "B", "C"}
	grades     = []string{"A+", "A", "B", "C", ""}
	podium     = []string{"first", "second", "third"}
)

// NewPlan generates a festival from cfg. The same seed yields the same plan.
func NewPlan(cfg SeedConfig) Plan {
	faker := gofakeit.New(cfg.Seed)

	teams := teamNames
	if cfg.Teams > 0 && cfg.Teams < len(teams) {
		teams = teams[:cfg.Teams]
	}

	entries := catalog.Entries()
	faker.ShuffleAnySlice(entries)
	if cfg.Events > 0 && cfg.Events < len(entries) {
		entries = entries[:cfg.Events]
	}

	var plan Plan
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	for i, e := range entries {
		plan.Events = append(plan.Events, EventInput{
			Name:     e.Name,
			Category: categories[faker.Number(0, len(categories)-1)],
			Venue:    "Stage " + strconv.Itoa(faker.Number(1, 4)),
			Date:     day.AddDate(0, 0, i%3).Format(time.DateOnly),
		})
	}

	for i := 0; i < cfg.Students; i++ {
		reg := model.Registration{
			FullName:    faker.Name(),
			CICNumber:   faker.Numerify("CIC-####"),
			ChestNumber: strconv.Itoa(100 + i),
			Team:        teams[faker.Number(0, len(teams)-1)],
		}
		for j := faker.Number(1, 3); j > 0 && len(entries) > 0; j-- {
			e := entries[faker.Number(0, len(entries)-1)]
			switch {
			case e.IsGeneral:
				reg.GeneralEvents = append(reg.GeneralEvents, e.Name)
			case e.StageType == catalog.OnStage:
				reg.OnStageEvents = append(reg.OnStageEvents, e.Name)
			default:
				reg.OffStageEvents = append(reg.OffStageEvents, e.Name)
			}
		}
		plan.Registrations = append(plan.Registrations, reg)
	}

	if !cfg.Results || len(plan.Registrations) < len(podium) {
		return plan
	}
	for _, ev := range plan.Events {
		picked := make(map[int]struct{}, len(podium))
		for _, placing := range podium {
			idx := faker.Number(0, len(plan.Registrations)-1)
			for {
				if _, dup := picked[idx]; !dup {
					break
				}
				idx = (idx + 1) % len(plan.Registrations)
			}
			picked[idx] = struct{}{}
			st := plan.Registrations[idx]
			plan.Results = append(plan.Results, ResultInput{
				EventName:   ev.Name,
				Placing:     placing,
				Grade:       grades[faker.Number(0, len(grades)-1)],
				StudentName: st.FullName,
				ChestNumber: st.ChestNumber,
				Team:        st.Team,
			})
		}
	}
	return plan
}

// SeedStats counts what a seed run did.
type SeedStats struct {
	EventsCreated  int64
	EventsSkipped  int64
	Registered     int64
	ResultsCreated int64
	Failed         int64
	Duration       time.Duration
}

// Seed submits plan through c with up to workers concurrent requests. Events
// go first since results take their category from them. Events that exist
// already are skipped. Authentication and rate limit failures stop the run.
func Seed(ctx context.Context, c *Client, plan Plan, workers int, log logger.Logger) (SeedStats, error) {
	start := time.Now()
	if workers < 1 {
		workers = 1
	}
	var stats SeedStats
	var created, skipped, registered, recorded, failed atomic.Int64

	run := func(n int, submit func(ctx context.Context, i int) error) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				err := submit(gctx, i)
				if err == nil {
					return nil
				}
				if fatal(err) {
					return err
				}
				failed.Add(1)
				log.Warn(gctx, "seed request failed", logger.Error(err))
				return nil
			})
		}
		return g.Wait()
	}

	err := run(len(plan.Events), func(ctx context.Context, i int) error {
		_, err := c.CreateEvent(ctx, plan.Events[i])
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			skipped.Add(1)
			return nil
		}
		if err == nil {
			created.Add(1)
		}
		return err
	})
	if err == nil {
		err = run(len(plan.Registrations), func(ctx context.Context, i int) error {
			_, err := c.Register(ctx, plan.Registrations[i])
			if err == nil {
				registered.Add(1)
			}
			return err
		})
	}
	if err == nil {
		err = run(len(plan.Results), func(ctx context.Context, i int) error {
			_, err := c.CreateResult(ctx, plan.Results[i], true)
			if err == nil {
				recorded.Add(1)
			}
			return err
		})
	}

	stats.EventsCreated = created.Load()
	stats.EventsSkipped = skipped.Load()
	stats.Registered = registered.Load()
	stats.ResultsCreated = recorded.Load()
	stats.Failed = failed.Load()
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("seed: %w", err)
	}
	return stats, nil
}

// fatal reports errors that would fail every following request too.
func fatal(err error) bool {
	return errors.Is(err, ErrUnreachable) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
