package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()
	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestPool_CreateZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	defer pool.Close()
	if want := runtime.GOMAXPROCS(0); pool.Workers() != want {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), want)
	}
}

func TestPool_ExecuteAllRunsEveryTaskOnce(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const numTasks = 257
	var counts [numTasks]atomic.Int32
	tasks := make([]func(), numTasks)
	for i := range tasks {
		i := i
		tasks[i] = func() { counts[i].Add(1) }
	}
	for round := 1; round <= 3; round++ {
		pool.ExecuteAll(tasks)
		for i := range counts {
			if got := counts[i].Load(); got != int32(round) {
				t.Fatalf("round %d: task %d ran %d times", round, i, got)
			}
		}
	}
}

func TestPool_ExecuteAllEmpty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()
	pool.ExecuteAll(nil) // Must not block.
}

func TestPool_CloseIdempotent(t *testing.T) {
	pool := NewPool(3)
	pool.Close()
	pool.Close()
	if pool.IsRunning() {
		t.Error("pool should not be running after Close")
	}
}

func TestPool_ExecuteAllAfterClose(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	var n atomic.Int32
	pool.ExecuteAll([]func(){
		func() { n.Add(1) },
		func() { n.Add(1) },
	})
	if n.Load() != 2 {
		t.Errorf("closed pool ran %d tasks, want 2", n.Load())
	}
}

func BenchmarkPool_ExecuteAll(b *testing.B) {
	pool := NewPool(runtime.GOMAXPROCS(0))
	defer pool.Close()
	var sink atomic.Int64
	tasks := make([]func(), 64)
	for i := range tasks {
		tasks[i] = func() { sink.Add(1) }
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(tasks)
	}
}
