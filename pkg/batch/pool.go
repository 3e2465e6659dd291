package batch

import (
	"context"
	"sync"

	"github.com/sondedec/sondedec/pkg/sonde"
)

// Job is one file to decode.
type Job struct {
	Path string
}

// Result is one job's outcome: either a decoded frame or an error, never
// both; a job that produces many frames is submitted to Results once per
// frame as it is decoded, "emit as soon as
// a frame completes" streaming requirement rather than buffering a whole
// file's output.
type Result struct {
	Job   Job
	Frame sonde.DecodedFrame
	Err   error
}

// DecodeFunc runs one file's full pipeline, sending each decoded frame
// (or terminal error) to emit as it becomes available.
type DecodeFunc func(ctx context.Context, job Job, emit func(sonde.DecodedFrame, error))

// Pool is a bounded worker pool over DecodeFunc, adapted from
// pkg/gnssgo/rtcm/worker.go's context-cancellable WorkerPool, repurposed
// to run one decode pipeline per submitted file instead of one RTCM
// message per submitted buffer.
type Pool struct {
	decode     DecodeFunc
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPool builds and starts a pool of numWorkers goroutines, each running
// decode over jobs pulled from a queueSize-buffered channel.
func NewPool(numWorkers, queueSize int, decode DecodeFunc) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		decode:     decode,
		numWorkers: numWorkers,
		jobs:       make(chan Job, queueSize),
		results:    make(chan Result, queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
	p.start()
	return p
}

func (p *Pool) start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.decode(p.ctx, job, func(f sonde.DecodedFrame, err error) {
				select {
				case p.results <- Result{Job: job, Frame: f, Err: err}:
				case <-p.ctx.Done():
				}
			})
		case <-p.ctx.Done():
			return
		}
	}
}

// Submit enqueues a file for decoding; it blocks if the queue is full
// and returns immediately if the pool has been stopped.
func (p *Pool) Submit(job Job) {
	if p.ctx.Err() != nil {
		return
	}
	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
	}
}

// Results returns the channel decoded frames and errors arrive on.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Stop cancels all in-flight work, closes the job queue, waits for
// workers to drain, and closes the results channel.
func (p *Pool) Stop() {
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}
