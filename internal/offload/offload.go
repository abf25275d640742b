package offload

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Executor runs CPU-bound closures on a bounded pool of workers so that the
// goroutine orchestrating a conversion never hogs a scheduler thread with
// decompression or encoding work. Do suspends the caller until the closure
// finishes; a panic inside the closure comes back as an error instead of
// taking the worker down.
type Executor struct {
	tasks chan *task
	wg    sync.WaitGroup
}

type task struct {
	ctx  context.Context
	fn   func() error
	done chan error
}

// New starts an executor with the given number of workers; values <= 0 fall
// back to GOMAXPROCS.
func New(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	e := &Executor{
		tasks: make(chan *task),
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

// Do submits fn and waits for it to complete. If ctx is cancelled before a
// worker picks the task up, the closure never runs and ctx.Err() is
// returned. Once a worker has started the closure it runs to completion; a
// cancellation arriving after that point makes Do return ctx.Err() and the
// closure's eventual result is discarded.
func (e *Executor) Do(ctx context.Context, fn func() error) error {
	t := &task{
		ctx: ctx,
		fn:  fn,
		// buffered so a worker never blocks handing back a discarded result
		done: make(chan error, 1),
	}

	select {
	case e.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for in-flight closures to finish.
func (e *Executor) Close() {
	close(e.tasks)
	e.wg.Wait()
}

func (e *Executor) worker() {
	defer e.wg.Done()

	for t := range e.tasks {
		if err := t.ctx.Err(); err != nil {
			t.done <- err
			continue
		}
		t.done <- run(t.fn)
	}
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in offloaded task: %v", r)
		}
	}()
	return fn()
}
