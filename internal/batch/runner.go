package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hualin/docpack/internal/logger"
)

// Config holds drive-loop settings.
type Config struct {
	// Delay is the pause inserted after each processed unit to respect
	// rate limits of the external system. Zero skips the pause.
	Delay time.Duration

	// CheckpointEvery saves the ledger every N processed units. Zero or
	// negative uses DefaultCheckpointEvery. A final save always happens
	// when the loop ends, interruption included.
	CheckpointEvery int

	// MaxUnits caps the nominal job size (applied before the resume
	// filter). Discovered units count against the same cap. Zero means
	// no cap.
	MaxUnits int

	// Resume loads the previous ledger so completed units are skipped.
	// When false the run starts from an empty ledger.
	Resume bool
}

// DefaultCheckpointEvery is the periodic checkpoint interval.
const DefaultCheckpointEvery = 10

// Stats summarizes one run of the drive loop.
type Stats struct {
	Total       int
	Processed   int
	Completed   int
	Failed      int
	Interrupted bool
	StartTime   time.Time
	EndTime     time.Time
}

// Duration returns the wall-clock time of the run.
func (s *Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Runner owns a unit-of-work list, a persisted ledger, and the sequential
// drive loop. One unit is processed start-to-finish before the next
// begins; ledger mutations happen strictly after each unit's outcome is
// known and before the next unit starts.
type Runner struct {
	store *Store
	cfg   Config
	log   *logger.Logger
}

// NewRunner creates a runner over the given ledger store.
// Parameters:
//   - store: ledger persistence.
//   - cfg: drive-loop configuration.
//   - log: logger; nil uses the default logger.
//
// Returns:
//   - *Runner: runner instance.
func NewRunner(store *Store, cfg Config, log *logger.Logger) *Runner {
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = DefaultCheckpointEvery
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Runner{store: store, cfg: cfg, log: log}
}

// Run executes the drive loop over units with the injected processor.
// Context cancellation is a graceful, resumable stop: the ledger reflects
// exactly the units resolved before the interrupt and Stats.Interrupted
// is set. Run never fails because some units failed; ledger I/O errors
// are logged and absorbed.
func (r *Runner) Run(ctx context.Context, units []Unit, proc Processor) (*Stats, *Ledger) {
	runID := uuid.NewString()[:8]
	log := r.log.WithField(logger.FieldRunID, runID)
	ctx = logger.SetRunID(ctx, runID)

	var led *Ledger
	if r.cfg.Resume {
		led = r.store.Load()
		if led.CompletedCount() > 0 {
			log.WithField("completed", led.CompletedCount()).Info("Resuming from previous progress")
		}
	} else {
		led = NewLedger()
	}

	if r.cfg.MaxUnits > 0 && len(units) > r.cfg.MaxUnits {
		units = units[:r.cfg.MaxUnits]
	}
	led.Total = len(units)

	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		seen[u.ID] = struct{}{}
	}

	queue := Remaining(units, led, 0)

	stats := &Stats{
		Total:     led.Total,
		StartTime: time.Now(),
	}

	log.WithFields(logger.Fields{
		"total":     led.Total,
		"remaining": len(queue),
		"delay":     r.cfg.Delay.String(),
	}).Info("Starting batch run")

	processed := 0
	for i := 0; i < len(queue); i++ {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}

		unit := queue[i]
		outcome := r.process(ctx, proc, unit)

		if outcome.Err != nil && errors.Is(outcome.Err, context.Canceled) {
			// The in-flight unit was cut short; leave it unrecorded so a
			// resumed run retries it.
			stats.Interrupted = true
			break
		}

		processed++
		stats.Processed++

		if outcome.Err != nil {
			led.MarkFailed(unit, outcome.Err)
			stats.Failed++
			log.WithFields(logger.Fields{
				logger.FieldUnitID: unit.ID,
				"progress":         fmt.Sprintf("%d/%d", i+1, len(queue)),
			}).WithError(outcome.Err).Error("Unit failed")
		} else {
			led.MarkCompleted(unit.ID)
			stats.Completed++
			log.WithFields(logger.Fields{
				logger.FieldUnitID: unit.ID,
				"progress":         fmt.Sprintf("%d/%d", i+1, len(queue)),
			}).Info("Unit completed")
		}

		for _, d := range outcome.Discovered {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			if r.cfg.MaxUnits > 0 && led.Total >= r.cfg.MaxUnits {
				break
			}
			seen[d.ID] = struct{}{}
			queue = append(queue, d)
			led.Total++
			stats.Total++
		}

		if processed%r.cfg.CheckpointEvery == 0 {
			r.checkpoint(log, led, processed, len(queue))
		}

		if r.cfg.Delay > 0 && i < len(queue)-1 {
			if !sleepCtx(ctx, r.cfg.Delay) {
				stats.Interrupted = true
				break
			}
		}
	}

	// Unconditional final save, including on interruption.
	if err := r.store.Save(led); err != nil {
		log.WithError(err).Warn("Could not save progress")
	}

	stats.EndTime = time.Now()

	log.WithFields(logger.Fields{
		"total":       stats.Total,
		"completed":   stats.Completed,
		"failed":      stats.Failed,
		"interrupted": stats.Interrupted,
		"duration":    stats.Duration().String(),
	}).Info("Batch run finished")

	return stats, led
}

// process invokes the processor with a panic guard so one broken unit
// cannot take down the loop.
func (r *Runner) process(ctx context.Context, proc Processor, unit Unit) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Outcome{Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return proc.Process(ctx, unit)
}

func (r *Runner) checkpoint(log *logger.Logger, led *Ledger, processed, total int) {
	if err := r.store.Save(led); err != nil {
		log.WithError(err).Warn("Could not save progress")
		return
	}
	log.WithFields(logger.Fields{
		"processed": processed,
		"queued":    total,
	}).Info("Progress checkpoint saved")
}

// sleepCtx waits for d or until ctx is canceled. It reports false when
// the wait was cut short.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
