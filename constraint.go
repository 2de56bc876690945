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
	"strings"
)

// ConstraintStatus classifies a single constraint outcome.
type ConstraintStatus string

const (
	// StatusSuccess means the constraint was evaluated and holds.
	StatusSuccess ConstraintStatus = "success"
	// StatusFailure means the constraint was evaluated and the data does
	// not satisfy it.
	StatusFailure ConstraintStatus = "failure"
	// StatusError means the constraint could not be evaluated at all
	// (missing column, backend failure). Distinct from StatusFailure so a
	// report can tell "assertion false" from "assertion unchecked".
	StatusError ConstraintStatus = "error"
	// StatusInfo marks informational entries that do not affect the overall
	// outcome, such as the placeholder for an empty constraint list.
	StatusInfo ConstraintStatus = "info"
)

// ConstraintResult is the outcome of evaluating one constraint. Message is
// final human-readable text; reporters copy it verbatim.
type ConstraintResult struct {
	Status  ConstraintStatus
	Message string
	Err     error
}

// Constraint is a single named assertion, evaluated as a pure function of a
// Table. Implementations must not retain state across evaluations.
type Constraint interface {
	// Evaluate runs the assertion against the table. Evaluation problems are
	// reported through the result status, never via panic.
	Evaluate(ctx context.Context, table Table) ConstraintResult
}

func successResult(format string, args ...any) ConstraintResult {
	return ConstraintResult{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

func failureResult(format string, args ...any) ConstraintResult {
	return ConstraintResult{Status: StatusFailure, Message: fmt.Sprintf(format, args...)}
}

func errorResult(err error, format string, args ...any) ConstraintResult {
	return ConstraintResult{
		Status:  StatusError,
		Message: fmt.Sprintf("%s failed: %v", fmt.Sprintf(format, args...), err),
		Err:     err,
	}
}

// countMatching filters the table with the predicate and counts the result.
func countMatching(ctx context.Context, table Table, pred Predicate) (int64, error) {
	filtered, err := table.Filter(pred)
	if err != nil {
		return 0, err
	}
	return filtered.Count(ctx)
}

// pluralization helpers for message texts ("1 row that is null",
// "2 rows that are null")

func pluralRow(n int64) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}

func pluralIsAre(n int64) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func pluralDoesDo(n int64) string {
	if n == 1 {
		return "does"
	}
	return "do"
}

func columnsWord(n int) string {
	if n == 1 {
		return "Column"
	}
	return "Columns"
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
