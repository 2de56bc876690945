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

// Column rename prefixes used by the join-based checks so that base and
// reference key columns never collide in a join result.
const (
	basePrefix = "ddq_base_"
	refPrefix  = "ddq_ref_"
)

// ColumnPair maps a base-table column onto a reference-table column for the
// join-based constraints.
type ColumnPair struct {
	Base string
	Ref  string
}

func (p ColumnPair) String() string {
	return p.Base + "->" + p.Ref
}

func pairsText(pairs []ColumnPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// countDuplicateKeys returns the number of key tuples occurring more than
// once in the table. Both the uniqueness constraint and the foreign-key
// pre-check use this, so "is a key" means the same thing in both.
func countDuplicateKeys(ctx context.Context, table Table, columns []string) (int64, error) {
	grouped, err := table.GroupCount(columns...)
	if err != nil {
		return 0, err
	}
	return countMatching(ctx, grouped, ComparePredicate{Column: CountColumn, Op: CompareGt, Value: 1})
}

type uniqueKeyConstraint struct {
	columns []string
}

func (c uniqueKeyConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	cols := joinColumns(c.columns)
	word := columnsWord(len(c.columns))
	isAre := pluralIsAre(int64(len(c.columns)))

	duplicates, err := countDuplicateKeys(ctx, table, c.columns)
	if err != nil {
		return errorResult(err, "Checking whether %s %s %s a key", strings.ToLower(word), cols, isAre)
	}
	if duplicates == 0 {
		return successResult("%s %s %s a key", word, cols, isAre)
	}
	tuples := "non-unique tuples"
	if duplicates == 1 {
		tuples = "non-unique tuple"
	}
	return failureResult("%s %s %s not a key (%d %s)", word, cols, isAre, duplicates, tuples)
}

type foreignKeyConstraint struct {
	ref   Table
	pairs []ColumnPair
}

// Evaluate runs the two-phase foreign-key check. Phase 1 verifies that the
// reference columns form a key; when they do not, the check fails before the
// join is ever planned, since the join result would be meaningless and the
// join is the expensive part. Phase 2 renames both key sides with disjoint
// prefixes, outer-joins the distinct base keys against the reference, and
// counts base rows whose reference side came back all-null.
func (c foreignKeyConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	desc := pairsText(c.pairs)
	word := columnsWord(len(c.pairs))

	refColumns := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		refColumns[i] = p.Ref
	}

	duplicates, err := countDuplicateKeys(ctx, c.ref, refColumns)
	if err != nil {
		return errorResult(err, "Checking foreign key %s", desc)
	}
	if duplicates > 0 {
		tuples := "non-unique tuples"
		if duplicates == 1 {
			tuples = "non-unique tuple"
		}
		return failureResult("%s %s %s not a key in the reference table %s (%d %s)",
			columnsWord(len(refColumns)), joinColumns(refColumns),
			pluralIsAre(int64(len(refColumns))), c.ref.Name(), duplicates, tuples)
	}

	unmatched, err := countUnmatchedBaseRows(ctx, table, c.ref, c.pairs)
	if err != nil {
		return errorResult(err, "Checking foreign key %s", desc)
	}
	if unmatched == 0 {
		verb := "define"
		if len(c.pairs) == 1 {
			verb = "defines"
		}
		return successResult("%s %s %s a foreign key pointing to the reference table %s",
			word, desc, verb, c.ref.Name())
	}
	return failureResult("%s %s %s not define a foreign key (%d %s %s not match)",
		word, desc, pluralDoesDo(int64(len(c.pairs))),
		unmatched, pluralRow(unmatched), pluralDoesDo(unmatched))
}

// countUnmatchedBaseRows is phase 2 of the foreign-key check.
func countUnmatchedBaseRows(ctx context.Context, base, ref Table, pairs []ColumnPair) (int64, error) {
	baseKeys, refKeys, on := renamedJoinSides(pairs)

	baseSide, err := base.Select(baseKeys)
	if err != nil {
		return 0, err
	}
	baseSide, err = baseSide.Distinct()
	if err != nil {
		return 0, err
	}

	refSide, err := ref.Select(refKeys)
	if err != nil {
		return 0, err
	}

	joined, err := baseSide.Join(refSide, on, OuterJoin)
	if err != nil {
		return 0, err
	}

	allRefNull := make([]Predicate, len(pairs))
	for i, p := range pairs {
		allRefNull[i] = NullPredicate{Column: refPrefix + p.Ref}
	}
	return countMatching(ctx, joined, AndPredicate{Predicates: allRefNull})
}

type joinableConstraint struct {
	ref   Table
	pairs []ColumnPair
}

// Evaluate checks whether at least one base key tuple finds a match in the
// reference table. Unlike the foreign-key check there is no uniqueness gate
// on the reference side.
func (c joinableConstraint) Evaluate(ctx context.Context, table Table) ConstraintResult {
	desc := pairsText(c.pairs)

	baseKeys, refKeys, on := renamedJoinSides(c.pairs)

	baseSide, err := table.Select(baseKeys)
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}
	baseSide, err = baseSide.Distinct()
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}
	baseCardinality, err := baseSide.Count(ctx)
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}

	refSide, err := c.ref.Select(refKeys)
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}

	joined, err := baseSide.Join(refSide, on, InnerJoin)
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}
	// distinct so that duplicate reference keys do not inflate the count
	joined, err = joined.Distinct()
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}
	matched, err := joined.Count(ctx)
	if err != nil {
		return errorResult(err, "Checking whether key %s can be used for joining", desc)
	}

	if matched == 0 {
		return failureResult("Key %s cannot be used for joining (no rows match)", desc)
	}

	percentage := 0.0
	if baseCardinality > 0 {
		percentage = float64(matched) / float64(baseCardinality) * 100
	}
	return successResult(
		"Key %s can be used for joining. Join columns cardinality in base table: %d. Join columns cardinality after joining: %d (%s)",
		desc, baseCardinality, matched, fmt.Sprintf("%.2f%%", percentage))
}

// renamedJoinSides builds the projections renaming base keys with basePrefix
// and reference keys with refPrefix, plus the join conditions over the
// renamed columns.
func renamedJoinSides(pairs []ColumnPair) (baseKeys, refKeys []SelectColumn, on []JoinOn) {
	baseKeys = make([]SelectColumn, len(pairs))
	refKeys = make([]SelectColumn, len(pairs))
	on = make([]JoinOn, len(pairs))
	for i, p := range pairs {
		baseKeys[i] = SelectColumn{Name: p.Base, As: basePrefix + p.Base}
		refKeys[i] = SelectColumn{Name: p.Ref, As: refPrefix + p.Ref}
		on[i] = JoinOn{Left: basePrefix + p.Base, Right: refPrefix + p.Ref}
	}
	return baseKeys, refKeys, on
}
