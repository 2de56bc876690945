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
	"strings"
)

// Column-level constraints count rows whose non-null value violates a test;
// null values never count as violations.

type convertibleConstraint struct {
	column     string
	target     ConvertTarget
	dateLayout string
	boolean    BooleanFormat
}

func (c convertibleConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	pred := NotConvertiblePredicate{
		Column:     c.column,
		Target:     c.target,
		DateLayout: c.dateLayout,
		Boolean:    c.boolean.withDefaults(),
	}

	if c.target == ConvertDate {
		failing, err := countMatching(ctx, table, pred)
		if err != nil {
			return errorResult(err, "Checking whether column %s is formatted by %s", c.column, c.dateLayout)
		}
		if failing == 0 {
			return successResult("Column %s is formatted by %s", c.column, c.dateLayout)
		}
		return failureResult("Column %s contains %d %s that %s not formatted by %s",
			c.column, failing, pluralRow(failing), pluralIsAre(failing), c.dateLayout)
	}

	failing, err := countMatching(ctx, table, pred)
	if err != nil {
		return errorResult(err, "Checking whether column %s can be converted to %s", c.column, c.target)
	}
	if failing == 0 {
		return successResult("Column %s can be converted to %s", c.column, c.target)
	}
	return failureResult("Column %s contains %d %s that cannot be converted to %s",
		c.column, failing, pluralRow(failing), c.target)
}

type anyOfConstraint struct {
	column  string
	allowed []string
}

func (c anyOfConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	set := "[" + strings.Join(c.allowed, ", ") + "]"
	failing, err := countMatching(ctx, table, NotInSetPredicate{Column: c.column, Allowed: c.allowed})
	if err != nil {
		return errorResult(err, "Checking whether column %s contains only values in %s", c.column, set)
	}
	if failing == 0 {
		return successResult("Column %s contains only values in %s", c.column, set)
	}
	return failureResult("Column %s contains %d %s that %s not in %s",
		c.column, failing, pluralRow(failing), pluralIsAre(failing), set)
}

type matchingRegexConstraint struct {
	column  string
	pattern string
}

func (c matchingRegexConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	failing, err := countMatching(ctx, table, NotMatchingRegexPredicate{Column: c.column, Pattern: c.pattern})
	if err != nil {
		return errorResult(err, "Checking whether column %s matches %s", c.column, c.pattern)
	}
	if failing == 0 {
		return successResult("Column %s matches %s", c.column, c.pattern)
	}
	return failureResult("Column %s contains %d %s that %s not match %s",
		c.column, failing, pluralRow(failing), pluralDoesDo(failing), c.pattern)
}
