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

import "context"

type numRowsConstraint struct {
	expected int64
}

func (c numRowsConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	actual, err := table.Count(ctx)
	if err != nil {
		return errorResult(err, "Counting the number of rows")
	}
	if actual == c.expected {
		return successResult("The number of rows is equal to %d", actual)
	}
	return failureResult("The actual number of rows %d is not equal to the expected %d", actual, c.expected)
}

type satisfiesConstraint struct {
	pred Predicate
	text string
}

func (c satisfiesConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	total, err := table.Count(ctx)
	if err != nil {
		return errorResult(err, "Checking constraint %s", c.text)
	}
	matching, err := countMatching(ctx, table, c.pred)
	if err != nil {
		return errorResult(err, "Checking constraint %s", c.text)
	}
	if failing := total - matching; failing > 0 {
		return failureResult("%d rows did not satisfy constraint %s", failing, c.text)
	}
	return successResult("Constraint %s is satisfied", c.text)
}

type neverNullConstraint struct {
	column string
}

func (c neverNullConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	nulls, err := countMatching(ctx, table, NullPredicate{Column: c.column})
	if err != nil {
		return errorResult(err, "Checking whether column %s is never null", c.column)
	}
	if nulls == 0 {
		return successResult("Column %s is never null", c.column)
	}
	return failureResult("Column %s contains %d %s that %s null (should never be null)",
		c.column, nulls, pluralRow(nulls), pluralIsAre(nulls))
}

type alwaysNullConstraint struct {
	column string
}

func (c alwaysNullConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	nonNulls, err := countMatching(ctx, table, NullPredicate{Column: c.column, NotNull: true})
	if err != nil {
		return errorResult(err, "Checking whether column %s is always null", c.column)
	}
	if nonNulls == 0 {
		return successResult("Column %s is always null", c.column)
	}
	return failureResult("Column %s contains %d non-null %s (should always be null)",
		c.column, nonNulls, pluralRow(nonNulls))
}
