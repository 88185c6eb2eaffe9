// Package parallel provides the fixed size worker pool that rasterizes row
// bands of a draw concurrently.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines fed from one bounded task channel.
//
// Shutdown is cooperative: a worker checks the done signal before taking its
// next task, so a task that already started always runs to completion.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	tasks   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		// 2x workers keeps every worker busy while the submitter blocks.
		tasks: make(chan func(), 2*workers),
		done:  make(chan struct{}),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		// Kill signal takes priority over pending tasks.
		select {
		case <-p.done:
			return
		default:
		}
		select {
		case <-p.done:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// ExecuteAll runs every task and blocks until all of them have returned.
// Tasks that could not be queued because the pool closed run on the
// calling goroutine, so ExecuteAll always runs every task exactly once.
func (p *Pool) ExecuteAll(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	if !p.running.Load() {
		for _, task := range tasks {
			task()
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		task := task
		wrapped := func() {
			defer wg.Done()
			task()
		}
		select {
		case p.tasks <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// Close stops the workers and waits for them to exit. Tasks still queued
// when Close is called may be dropped by the workers; callers of ExecuteAll
// must not race Close. Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool has not been closed.
func (p *Pool) IsRunning() bool { return p.running.Load() }
