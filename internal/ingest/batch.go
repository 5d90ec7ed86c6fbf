package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"datajobs/internal/domain/posting"
	"datajobs/internal/repository"

	"github.com/google/uuid"
)

// Notifier receives progress events while a batch runs. The websocket hub
// implements it; a nil notifier is fine.
type Notifier interface {
	BatchProgress(runID uuid.UUID, done, total int, outcome posting.Outcome)
}

// BatchReport summarizes one finished run. Outcomes is indexed by the
// record's position in the submitted batch.
type BatchReport struct {
	RunID    uuid.UUID
	Total    int
	Tally    map[posting.OutcomeKind]int
	Outcomes []posting.Outcome
}

// BatchRunner drives a slice of raw records through the coordinator on a
// worker pool, retrying transient store failures per record and recording
// the run and its tally.
type BatchRunner struct {
	coord    *Coordinator
	runs     repository.RunRepository
	notifier Notifier
	workers  int
	attempts int
	backoff  time.Duration
	logger   *log.Logger
}

func NewBatchRunner(coord *Coordinator, runs repository.RunRepository, notifier Notifier, workers, attempts int, backoff time.Duration, logger *log.Logger) *BatchRunner {
	if workers <= 0 {
		workers = 1
	}
	if attempts <= 0 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BatchRunner{
		coord:    coord,
		runs:     runs,
		notifier: notifier,
		workers:  workers,
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
	}
}

// Run ingests the batch. A record whose store writes keep failing after
// all retries is reported rejected with the failure as its reason; the
// rest of the batch is unaffected.
func (b *BatchRunner) Run(ctx context.Context, source string, records []posting.RawRecord) (BatchReport, error) {
	runID, err := b.runs.CreateRun(ctx, source)
	if err != nil {
		return BatchReport{}, fmt.Errorf("create run: %w", err)
	}

	report := BatchReport{
		RunID:    runID,
		Total:    len(records),
		Tally:    make(map[posting.OutcomeKind]int),
		Outcomes: make([]posting.Outcome, len(records)),
	}

	pool := NewWorkerPool(b.workers, len(records))
	for i, raw := range records {
		i, raw := i, raw
		pool.Submit(i, func(ctx context.Context) (posting.Outcome, error) {
			return b.ingestWithRetry(ctx, raw)
		})
	}
	pool.Close()

	done := 0
	for res := range pool.Run(ctx) {
		outcome := res.Outcome
		if res.Err != nil {
			outcome = posting.Outcome{
				Kind:    posting.OutcomeRejected,
				Reasons: []string{res.Err.Error()},
			}
			b.logger.Printf("record failed | run=%s index=%d err=%v", runID, res.Index, res.Err)
			if lerr := b.runs.AppendLog(ctx, runID, "error", fmt.Sprintf("record %d: %v", res.Index, res.Err)); lerr != nil {
				b.logger.Printf("run log write failed | run=%s err=%v", runID, lerr)
			}
		} else if outcome.Kind == posting.OutcomeRejected {
			if lerr := b.runs.AppendLog(ctx, runID, "warn", fmt.Sprintf("record %d rejected: %v", res.Index, outcome.Reasons)); lerr != nil {
				b.logger.Printf("run log write failed | run=%s err=%v", runID, lerr)
			}
		}

		report.Outcomes[res.Index] = outcome
		report.Tally[outcome.Kind]++
		done++
		if b.notifier != nil {
			b.notifier.BatchProgress(runID, done, report.Total, outcome)
		}
	}

	status := "completed"
	finishCtx := ctx
	if ctx.Err() != nil {
		status = "cancelled"
		// the batch context is dead; the run row must still leave
		// status='running', so the final write gets its own deadline
		var cancel context.CancelFunc
		finishCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := b.runs.FinishRun(finishCtx, runID, status, report.Tally); err != nil {
		b.logger.Printf("run finish write failed | run=%s err=%v", runID, err)
	}

	b.logger.Printf("batch finished | run=%s status=%s total=%d inserted=%d updated=%d duplicates=%d rejected=%d",
		runID, status, report.Total,
		report.Tally[posting.OutcomeInserted], report.Tally[posting.OutcomeUpdated],
		report.Tally[posting.OutcomeDuplicate], report.Tally[posting.OutcomeRejected],
	)
	return report, ctx.Err()
}

func (b *BatchRunner) ingestWithRetry(ctx context.Context, raw posting.RawRecord) (posting.Outcome, error) {
	var lastErr error
	for attempt := 1; attempt <= b.attempts; attempt++ {
		outcome, err := b.coord.Ingest(ctx, raw)
		if err == nil {
			return outcome, nil
		}

		var terr *TransientStoreError
		if !errors.As(err, &terr) {
			return posting.Outcome{}, err
		}
		lastErr = err
		if attempt == b.attempts {
			break
		}

		b.logger.Printf("transient store failure, retrying | attempt=%d err=%v", attempt, err)
		select {
		case <-ctx.Done():
			return posting.Outcome{}, ctx.Err()
		case <-time.After(b.backoff * time.Duration(attempt)):
		}
	}
	return posting.Outcome{}, lastErr
}
