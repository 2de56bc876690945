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
	"fmt"
	"io"
	"log/slog"
	"time"
)

// CheckRunResult is the structured outcome of evaluating a Check: metadata,
// one ConstraintResult per registered constraint in registration order, and
// the overall outcome.
type CheckRunResult struct {
	CheckID     string
	DisplayName string
	NumColumns  int
	NumRows     int64
	Results     []ConstraintResult

	// Success is the logical AND over all non-informational entries. An
	// empty constraint list is vacuously successful.
	Success bool
}

// Reporter renders a completed CheckRunResult to some sink. Reporters are
// pure consumers; they never participate in evaluation.
type Reporter interface {
	Render(result *CheckRunResult) error
}

// Runner evaluates Checks. A single run is strictly sequential: constraints
// execute one after another in registration order, and every constraint runs
// even after an earlier failure so the report is always complete.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Run evaluates every constraint of the check against its table and feeds
// the result to the given reporters. A returned error means the run itself
// could not proceed (the table was unreachable or a reporter sink broke);
// individual constraint problems are captured as Error entries instead.
func (r *Runner) Run(ctx context.Context, check Check, reporters ...Reporter) (*CheckRunResult, error) {
	table := check.Table()
	name := check.DisplayName()

	r.logger.Debug("starting check run", "check_id", check.ID(), "dataset", name)

	if strategy := check.CacheStrategy(); strategy != CacheNone {
		if err := table.Persist(strategy); err != nil {
			r.logger.Warn("failed to persist table, continuing without materialization",
				"dataset", name,
				"strategy", string(strategy),
				"error", err.Error())
		} else {
			// release on every exit path once acquired
			defer func() {
				if err := table.Release(); err != nil {
					r.logger.Warn("failed to release table", "dataset", name, "error", err.Error())
				}
			}()
		}
	}

	numColumns := len(table.Columns())
	numRows, err := table.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}

	result := &CheckRunResult{
		CheckID:     check.ID(),
		DisplayName: name,
		NumColumns:  numColumns,
		NumRows:     numRows,
	}

	constraints := check.Constraints()
	if len(constraints) == 0 {
		result.Results = []ConstraintResult{{Status: StatusInfo, Message: "Nothing to check!"}}
		result.Success = true
	} else {
		result.Results = make([]ConstraintResult, 0, len(constraints))
		result.Success = true
		for i, constraint := range constraints {
			startTime := time.Now()
			cr := constraint.Evaluate(ctx, table)
			elapsed := time.Since(startTime).Milliseconds()

			r.logger.Debug("evaluated constraint",
				"check_id", check.ID(),
				"constraint_idx", i,
				"status", string(cr.Status),
				"duration_ms", elapsed)

			if cr.Status != StatusSuccess && cr.Status != StatusInfo {
				result.Success = false
			}
			result.Results = append(result.Results, cr)
		}
	}

	for _, reporter := range reporters {
		if err := reporter.Render(result); err != nil {
			return result, fmt.Errorf("failed to render check result: %w", err)
		}
	}

	return result, nil
}
