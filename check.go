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
	"github.com/google/uuid"
)

// Check is an immutable ordered collection of constraints bound to one
// table. Every constraint-adding method returns a new Check; none of them
// touch the table at construction time, constraints only run when the Check
// is handed to a Runner.
type Check struct {
	table         Table
	displayName   string
	cacheStrategy CacheStrategy
	constraints   []Constraint
	id            string
}

// NewCheck creates an empty Check for the given table. The display name
// defaults to the table's name and the cache strategy to CacheMemoryOnly.
func NewCheck(table Table) Check {
	return Check{
		table:         table,
		cacheStrategy: CacheMemoryOnly,
		id:            uuid.NewString(),
	}
}

// ID returns the generated identity of this check chain.
func (c Check) ID() string { return c.id }

// Table returns the table the check is bound to.
func (c Check) Table() Table { return c.table }

// DisplayName returns the explicit display name, or the table name when none
// was set.
func (c Check) DisplayName() string {
	if c.displayName != "" {
		return c.displayName
	}
	return c.table.Name()
}

// CacheStrategy returns the configured materialization strategy.
func (c Check) CacheStrategy() CacheStrategy { return c.cacheStrategy }

// Constraints returns the registered constraints in evaluation order.
func (c Check) Constraints() []Constraint {
	out := make([]Constraint, len(c.constraints))
	copy(out, c.constraints)
	return out
}

// WithDisplayName returns a copy of the check with the given display name.
func (c Check) WithDisplayName(name string) Check {
	c.displayName = name
	return c
}

// WithCacheStrategy returns a copy of the check with the given cache
// strategy. CacheNone disables materialization entirely.
func (c Check) WithCacheStrategy(strategy CacheStrategy) Check {
	c.cacheStrategy = strategy
	return c
}

// addConstraint returns a new Check whose constraint list is extended by
// exactly one entry. The list is re-allocated so no two Checks ever share a
// mutable backing array.
func (c Check) addConstraint(constraint Constraint) Check {
	constraints := make([]Constraint, len(c.constraints)+1)
	copy(constraints, c.constraints)
	constraints[len(c.constraints)] = constraint
	c.constraints = constraints
	return c
}

// HasUniqueKey checks that the given columns together form a unique key.
func (c Check) HasUniqueKey(column string, columns ...string) Check {
	all := append([]string{column}, columns...)
	return c.addConstraint(uniqueKeyConstraint{columns: all})
}

// IsNeverNull checks that the column contains no null values.
func (c Check) IsNeverNull(column string) Check {
	return c.addConstraint(neverNullConstraint{column: column})
}

// IsAlwaysNull checks that the column contains only null values.
func (c Check) IsAlwaysNull(column string) Check {
	return c.addConstraint(alwaysNullConstraint{column: column})
}

// HasNumRowsEqualTo checks that the table has exactly the expected number of
// rows.
func (c Check) HasNumRowsEqualTo(expected int64) Check {
	return c.addConstraint(numRowsConstraint{expected: expected})
}

// Satisfies checks that every row satisfies the given predicate expression.
func (c Check) Satisfies(expression string) Check {
	return c.addConstraint(satisfiesConstraint{
		pred: ExprPredicate{Expr: expression},
		text: expression,
	})
}

// SatisfiesIf checks the material implication condition -> consequence:
// every row for which the condition holds must also satisfy the consequence.
func (c Check) SatisfiesIf(condition, consequence string) Check {
	pred := ImplicationPredicate{Condition: condition, Consequence: consequence}
	return c.addConstraint(satisfiesConstraint{pred: pred, text: pred.String()})
}

// IsConvertibleToInt checks that every non-null value of the column parses
// as a 32-bit integer. Null values are always convertible.
func (c Check) IsConvertibleToInt(column string) Check {
	return c.addConstraint(convertibleConstraint{column: column, target: ConvertInt})
}

// IsConvertibleToLong checks that every non-null value of the column parses
// as a 64-bit integer.
func (c Check) IsConvertibleToLong(column string) Check {
	return c.addConstraint(convertibleConstraint{column: column, target: ConvertLong})
}

// IsConvertibleToDouble checks that every non-null value of the column
// parses as a 64-bit float.
func (c Check) IsConvertibleToDouble(column string) Check {
	return c.addConstraint(convertibleConstraint{column: column, target: ConvertDouble})
}

// IsConvertibleToDate checks that every non-null value of the column parses
// under the given Go reference-time layout.
func (c Check) IsConvertibleToDate(column string, layout string) Check {
	return c.addConstraint(convertibleConstraint{column: column, target: ConvertDate, dateLayout: layout})
}

// IsConvertibleToBoolean checks that every non-null value of the column
// equals one of the two boolean tokens. The zero BooleanFormat means
// "true"/"false" compared case-insensitively.
func (c Check) IsConvertibleToBoolean(column string, format BooleanFormat) Check {
	return c.addConstraint(convertibleConstraint{column: column, target: ConvertBoolean, boolean: format})
}

// IsAnyOf checks that every non-null value of the column is a member of the
// allowed set.
func (c Check) IsAnyOf(column string, allowed ...string) Check {
	set := make([]string, len(allowed))
	copy(set, allowed)
	return c.addConstraint(anyOfConstraint{column: column, allowed: set})
}

// IsMatchingRegex checks that the pattern finds a match somewhere in every
// non-null value of the column (partial match, not full match).
func (c Check) IsMatchingRegex(column string, pattern string) Check {
	return c.addConstraint(matchingRegexConstraint{column: column, pattern: pattern})
}

// HasForeignKey checks that the given column mapping defines a foreign key
// into the reference table: the reference columns must form a key there, and
// every base key tuple must find a match.
func (c Check) HasForeignKey(ref Table, pair ColumnPair, pairs ...ColumnPair) Check {
	all := append([]ColumnPair{pair}, pairs...)
	return c.addConstraint(foreignKeyConstraint{ref: ref, pairs: all})
}

// IsJoinableWith checks that at least some base key tuples find a match in
// the reference table under the given column mapping.
func (c Check) IsJoinableWith(ref Table, pair ColumnPair, pairs ...ColumnPair) Check {
	all := append([]ColumnPair{pair}, pairs...)
	return c.addConstraint(joinableConstraint{ref: ref, pairs: all})
}
