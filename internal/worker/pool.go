// Package worker provides a parallel worker pool for partitioned scans.
package worker

import (
	"context"
	"sync"
	"time"
)

// Task identifies one unit of work, e.g. one slab of the colour cube.
type Task struct {
	Index int
}

// Result represents the outcome of a task.
type Result[T any] struct {
	Task    Task
	Value   T
	Err     error
	Elapsed time.Duration
}

// ProcessFunc performs a single task.
type ProcessFunc[T any] func(ctx context.Context, task Task) (T, error)

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config[T any] struct {
	Workers    int
	Process    ProcessFunc[T]
	OnProgress ProgressFunc
}

// Pool runs tasks in parallel.
type Pool[T any] struct {
	workers    int
	process    ProcessFunc[T]
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New[T any](cfg Config[T]) *Pool[T] {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool[T]{
		workers:    workers,
		process:    cfg.Process,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns their results in completion order.
func (p *Pool[T]) Run(ctx context.Context, tasks []Task) []Result[T] {
	results := make([]Result[T], 0, len(tasks))
	p.Stream(ctx, tasks, func(r Result[T]) {
		results = append(results, r)
	})
	return results
}

// Stream executes all tasks and hands each result to fn as it completes.
// fn is called from a single goroutine, so it needs no locking.
// Stream blocks until all tasks complete or the context is cancelled; tasks
// not yet started when ctx is cancelled are reported with ctx.Err().
func (p *Pool[T]) Stream(ctx context.Context, tasks []Task, fn func(Result[T])) {
	if len(tasks) == 0 {
		return
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result[T], p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	done := make(chan struct{})
	go func() {
		var completed, failed int
		for result := range resultCh {
			completed++
			if result.Err != nil {
				failed++
			}

			fn(result)

			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)

	<-done
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool[T]) worker(ctx context.Context, tasks <-chan Task, results chan<- Result[T]) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result[T]{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		value, err := p.process(ctx, task)
		elapsed := time.Since(start)

		results <- Result[T]{
			Task:    task,
			Value:   value,
			Err:     err,
			Elapsed: elapsed,
		}
	}
}
