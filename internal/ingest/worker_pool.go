package ingest

import (
	"context"
	"sync"

	"datajobs/internal/domain/posting"
)

// Task ingests one record and reports its outcome.
type Task func(ctx context.Context) (posting.Outcome, error)

// Result pairs a task's outcome with the position of the record that
// produced it, so batch reports keep submission order.
type Result struct {
	Index   int
	Outcome posting.Outcome
	Err     error
}

type job struct {
	index int
	task  Task
}

// WorkerPool fans batch records out over a fixed number of ingestion
// workers. Submit before or during Run; Close once everything is in.
type WorkerPool struct {
	workers int
	jobs    chan job
	wg      sync.WaitGroup
}

func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		workers: workers,
		jobs:    make(chan job, buffer),
	}
}

func (p *WorkerPool) Submit(index int, t Task) {
	if p == nil || t == nil {
		return
	}
	p.jobs <- job{index: index, task: t}
}

func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	close(p.jobs)
}

// Run starts the workers and returns the result stream. The stream closes
// after Close has been called and every submitted task has finished, or
// when ctx is cancelled.
func (p *WorkerPool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-p.jobs:
					if !ok {
						return
					}
					outcome, err := j.task(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Index: j.index, Outcome: outcome, Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
