// Package retention prunes old job documents from the store. A job's age is
// derived from the timestamp encoded in its jid, so no extra bookkeeping
// fields are written at store time.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/jid"
)

// Sweeper periodically deletes job metadata and returns older than the keep
// window. Events are left untouched; they carry no jid to derive age from.
type Sweeper struct {
	resolver database.Resolver
	opts     database.Options
	keep     time.Duration
	schedule cron.Schedule
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a sweeper. keep is how long job documents are retained;
// cronExpr is a standard five-field cron expression for sweep times.
func New(resolver database.Resolver, opts database.Options, keep time.Duration, cronExpr string) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		resolver: resolver,
		opts:     opts,
		keep:     keep,
		schedule: schedule,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("Starting retention sweeper", "keep", s.keep)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop signals the loop to exit and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	slog.Info("Retention sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			if deleted, err := s.SweepOnce(ctx); err != nil {
				slog.Error("Retention sweep failed", "error", err)
			} else if deleted > 0 {
				slog.Info("Retention sweep completed", "deleted", deleted)
			}
		case <-s.stopChan:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// SweepOnce deletes all job documents whose jid timestamp is older than the
// keep window. Candidate jids are gathered from both the jobs and returns
// collections, so returns whose load was never saved are pruned too. It
// returns the number of documents removed across the two collections. Jids
// that do not parse are left alone.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	db, err := s.resolver.Resolve(ctx, s.opts)
	if err != nil {
		return 0, err
	}
	defer db.Close(ctx)

	cutoff := time.Now().Add(-s.keep)

	jobs := db.Collection(database.CollectionJobs)
	returns := db.Collection(database.CollectionReturns)

	known, err := jobs.GroupFirst(ctx, "jid")
	if err != nil {
		return 0, err
	}

	retJids, err := returns.Distinct(ctx, "jid")
	if err != nil {
		return 0, err
	}

	candidates := make(map[string]struct{}, len(known)+len(retJids))
	for j := range known {
		candidates[j] = struct{}{}
	}
	for _, j := range retJids {
		candidates[j] = struct{}{}
	}

	var deleted int64
	for j := range candidates {
		t, err := jid.ParseTime(j)
		if err != nil || !t.Before(cutoff) {
			continue
		}

		filter := bson.M{"jid": j}
		n, err := jobs.Delete(ctx, filter)
		if err != nil {
			return deleted, err
		}
		deleted += n

		n, err = returns.Delete(ctx, filter)
		if err != nil {
			return deleted, err
		}
		deleted += n

		slog.Debug("Pruned job", "jid", j)
	}

	return deleted, nil
}
