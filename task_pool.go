// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ddqcore

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// TaskPool runs tasks concurrently with a bounded amount of parallelism.
// Whole checks of a suite are run through it; a single check stays strictly
// sequential internally.
type TaskPool struct {
	semaphore chan struct{}
	logger    *slog.Logger
	wg        sync.WaitGroup
	mu        sync.Mutex
	errors    []error
}

func NewTaskPool(poolSize int, logger *slog.Logger) *TaskPool {
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if poolSize < 1 {
		poolSize = 1
	}

	return &TaskPool{
		semaphore: make(chan struct{}, poolSize),
		logger:    logger,
	}
}

func (tp *TaskPool) Enqueue(id string, task func() error) {
	tp.wg.Add(1)
	go func() {
		tp.semaphore <- struct{}{}
		defer func() {
			<-tp.semaphore
			tp.wg.Done()
		}()

		tp.logger.Debug("executing task", "task_id", id)
		exeStartTime := time.Now()
		if err := task(); err != nil {
			tp.logger.Error("task failed", "task_id", id, "error", err.Error())
			tp.mu.Lock()
			tp.errors = append(tp.errors, err)
			tp.mu.Unlock()
		}
		elapsed := time.Since(exeStartTime).Milliseconds()
		tp.logger.Debug("completed task", "task_id", id, "elapsed_ms", elapsed)
	}()
}

func (tp *TaskPool) Join() {
	tp.wg.Wait()
}

func (tp *TaskPool) Errors() []error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	errsCopy := make([]error, len(tp.errors))
	copy(errsCopy, tp.errors)
	return errsCopy
}

// RunAll evaluates every check through the runner, at most maxConcurrent at
// a time. Results keep the order of the input checks regardless of
// completion order; a nil entry marks a check whose run aborted, with the
// cause collected in the returned errors. Reporters are fed sequentially
// after all runs complete so their output stays deterministic.
func RunAll(ctx context.Context, runner *Runner, checks []Check, maxConcurrent int, reporters ...Reporter) ([]*CheckRunResult, []error) {
	results := make([]*CheckRunResult, len(checks))

	pool := NewTaskPool(maxConcurrent, runner.logger)
	for i, check := range checks {
		// go.mod targeted Go 1.24, where loop variables are per-iteration;
		// copy them explicitly so the closures behave the same under Go 1.21.
		i, check := i, check
		pool.Enqueue(check.ID(), func() error {
			result, err := runner.Run(ctx, check)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	pool.Join()

	errs := pool.Errors()
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, reporter := range reporters {
			if err := reporter.Render(result); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return results, errs
}
