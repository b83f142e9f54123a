package worker

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

// mockProcessor simulates slab processing for testing
type mockProcessor struct {
	delay     time.Duration
	fail      map[int]bool // task indexes that should fail
	callCount atomic.Int32
}

func (m *mockProcessor) Process(ctx context.Context, task Task) (int, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.fail != nil && m.fail[task.Index] {
		return 0, errors.New("simulated failure")
	}

	return task.Index * 10, nil
}

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Index: i}
	}
	return tasks
}

func TestPool_BasicExecution(t *testing.T) {
	proc := &mockProcessor{delay: 10 * time.Millisecond}

	pool := New(Config[int]{
		Workers: 2,
		Process: proc.Process,
	})

	tasks := makeTasks(3)
	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Fatalf("Expected %d results, got %d", len(tasks), len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Task.Index < results[j].Task.Index })
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for task %d: %v", r.Task.Index, r.Err)
		}
		if r.Value != i*10 {
			t.Errorf("Expected value %d for task %d, got %d", i*10, i, r.Value)
		}
	}

	if proc.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d calls, got %d", len(tasks), proc.callCount.Load())
	}
}

func TestPool_Parallelism(t *testing.T) {
	proc := &mockProcessor{delay: 50 * time.Millisecond}

	pool := New(Config[int]{
		Workers: 4,
		Process: proc.Process,
	})

	tasks := makeTasks(8)

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each, should take ~100ms (2 batches)
	maxExpected := 300 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	proc := &mockProcessor{
		delay: 5 * time.Millisecond,
		fail:  map[int]bool{1: true},
	}

	pool := New(Config[int]{
		Workers: 2,
		Process: proc.Process,
	})

	results := pool.Run(context.Background(), makeTasks(3))

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	var failCount int
	for _, r := range results {
		if r.Err != nil {
			failCount++
			if r.Task.Index != 1 {
				t.Errorf("Unexpected failure for task %d", r.Task.Index)
			}
		}
	}
	if failCount != 1 {
		t.Errorf("Expected 1 failure, got %d", failCount)
	}
}

func TestPool_Cancellation(t *testing.T) {
	proc := &mockProcessor{delay: 100 * time.Millisecond}

	pool := New(Config[int]{
		Workers: 2,
		Process: proc.Process,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, makeTasks(10))
	elapsed := time.Since(start)

	if elapsed > 400*time.Millisecond {
		t.Errorf("Expected early cancellation, took %v", elapsed)
	}

	if len(results) != 10 {
		t.Errorf("Expected every task to report a result, got %d", len(results))
	}

	var cancelled int
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("Expected at least one cancelled result")
	}
}

func TestPool_ProgressCallback(t *testing.T) {
	proc := &mockProcessor{delay: 5 * time.Millisecond}

	var progressCalls atomic.Int32
	var lastCompleted, lastTotal int

	pool := New(Config[int]{
		Workers: 2,
		Process: proc.Process,
		OnProgress: func(completed, total, failed int) {
			progressCalls.Add(1)
			lastCompleted = completed
			lastTotal = total
		},
	})

	pool.Run(context.Background(), makeTasks(3))

	if progressCalls.Load() != 3 {
		t.Errorf("Expected 3 progress callbacks, got %d", progressCalls.Load())
	}
	if lastCompleted != 3 || lastTotal != 3 {
		t.Errorf("Expected final progress 3/3, got %d/%d", lastCompleted, lastTotal)
	}
}

func TestPool_Stream(t *testing.T) {
	proc := &mockProcessor{}

	pool := New(Config[int]{Workers: 3, Process: proc.Process})

	seen := make(map[int]bool)
	pool.Stream(context.Background(), makeTasks(20), func(r Result[int]) {
		seen[r.Task.Index] = true
	})

	if len(seen) != 20 {
		t.Errorf("Expected 20 distinct results, got %d", len(seen))
	}
}

func TestPool_EmptyTasks(t *testing.T) {
	proc := &mockProcessor{}

	pool := New(Config[int]{Workers: 2, Process: proc.Process})

	results := pool.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected 0 results for empty tasks, got %d", len(results))
	}
	if proc.callCount.Load() != 0 {
		t.Errorf("Expected 0 calls for empty tasks, got %d", proc.callCount.Load())
	}
}

func TestPool_DefaultsToOneWorker(t *testing.T) {
	pool := New(Config[int]{Workers: -3})
	if pool.workers != 1 {
		t.Errorf("Expected 1 worker, got %d", pool.workers)
	}
}
