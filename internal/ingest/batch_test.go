package ingest

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"datajobs/internal/domain/posting"

	"github.com/google/uuid"
)

type fakeRunRepo struct {
	mu           sync.Mutex
	runID        uuid.UUID
	finished     string
	finishCtxErr error
	tally        map[posting.OutcomeKind]int
	logs         []string
}

func (f *fakeRunRepo) CreateRun(ctx context.Context, source string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runID = uuid.New()
	return f.runID, nil
}

func (f *fakeRunRepo) FinishRun(ctx context.Context, runID uuid.UUID, status string, tally map[posting.OutcomeKind]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = status
	f.finishCtxErr = ctx.Err()
	f.tally = tally
	return nil
}

func (f *fakeRunRepo) AppendLog(ctx context.Context, runID uuid.UUID, level, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, level+": "+message)
	return nil
}

type countingNotifier struct {
	mu     sync.Mutex
	events int
	last   int
}

func (n *countingNotifier) BatchProgress(runID uuid.UUID, done, total int, outcome posting.Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events++
	n.last = done
}

func TestBatchRunTallies(t *testing.T) {
	f := newFixture(t)
	runs := &fakeRunRepo{}
	notifier := &countingNotifier{}
	runner := NewBatchRunner(f.coord, runs, notifier, 3, 1, time.Millisecond, log.New(io.Discard, "", 0))

	valid := baseRecord()
	dup := baseRecord()
	invalid := baseRecord()
	invalid.Company = ""

	// duplicates race the insert here, so outcomes split between
	// inserted and duplicate; the totals are what is deterministic
	report, err := runner.Run(context.Background(), "linkedin", []posting.RawRecord{valid, dup, invalid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Total != 3 {
		t.Fatalf("total = %d", report.Total)
	}
	if got := report.Tally[posting.OutcomeRejected]; got != 1 {
		t.Fatalf("rejected = %d, want 1", got)
	}
	committed := report.Tally[posting.OutcomeInserted] + report.Tally[posting.OutcomeDuplicate] +
		report.Tally[posting.OutcomeUpdated]
	if committed != 2 {
		t.Fatalf("committed = %d, want 2", committed)
	}
	if len(report.Outcomes) != 3 || report.Outcomes[2].Kind != posting.OutcomeRejected {
		t.Fatalf("outcomes misordered: %+v", report.Outcomes)
	}

	if runs.finished != "completed" {
		t.Fatalf("run status = %q", runs.finished)
	}
	if runs.tally[posting.OutcomeRejected] != 1 {
		t.Fatalf("persisted tally = %v", runs.tally)
	}
	if notifier.events != 3 || notifier.last != 3 {
		t.Fatalf("notifier events = %d last = %d", notifier.events, notifier.last)
	}
}

func TestBatchRunSingleWorkerDeterministic(t *testing.T) {
	f := newFixture(t)
	runner := NewBatchRunner(f.coord, &fakeRunRepo{}, nil, 1, 1, time.Millisecond, log.New(io.Discard, "", 0))

	report, err := runner.Run(context.Background(), "linkedin", []posting.RawRecord{baseRecord(), baseRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Outcomes[0].Kind != posting.OutcomeInserted || report.Outcomes[1].Kind != posting.OutcomeDuplicate {
		t.Fatalf("outcomes = %+v", report.Outcomes)
	}
}

func TestBatchRunClosesRunAfterCancellation(t *testing.T) {
	f := newFixture(t)
	runs := &fakeRunRepo{}
	runner := NewBatchRunner(f.coord, runs, nil, 2, 1, time.Millisecond, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "linkedin", []posting.RawRecord{baseRecord(), baseRecord()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if runs.finished != "cancelled" {
		t.Fatalf("run status = %q, want cancelled", runs.finished)
	}
	// the bookkeeping write must not ride the dead batch context, or the
	// run row stays running forever
	if runs.finishCtxErr != nil {
		t.Fatalf("run closed with a dead context: %v", runs.finishCtxErr)
	}
}

func TestWorkerPoolProcessesEverySubmission(t *testing.T) {
	pool := NewWorkerPool(4, 16)
	for i := 0; i < 16; i++ {
		pool.Submit(i, func(ctx context.Context) (posting.Outcome, error) {
			return posting.Outcome{Kind: posting.OutcomeInserted, JobID: uuid.New()}, nil
		})
	}
	pool.Close()

	seen := make(map[int]bool)
	for res := range pool.Run(context.Background()) {
		if res.Err != nil {
			t.Fatalf("task %d error: %v", res.Index, res.Err)
		}
		seen[res.Index] = true
	}
	if len(seen) != 16 {
		t.Fatalf("results = %d, want 16", len(seen))
	}
}
