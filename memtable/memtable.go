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

// Package memtable provides an in-memory implementation of the ddqcore
// Table interface. It is the reference backend: complete, deterministic and
// fast enough for small datasets and for tests.
package memtable

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/DataBridgeTech/ddqcore"
)

// Row is one table row; a nil entry is a null value.
type Row []any

// MemTable is an immutable in-memory table. Derived tables (Filter, Select,
// Distinct, Join, GroupCount) share no mutable state with their source.
type MemTable struct {
	name    string
	columns []ddqcore.ColumnInfo
	index   map[string]int
	rows    []Row

	mu        sync.Mutex
	persisted bool
	strategy  ddqcore.CacheStrategy
}

// New builds a table from a column list and rows. Every row must have one
// value per column.
func New(name string, columns []ddqcore.ColumnInfo, rows []Row) (*MemTable, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table must have at least one column")
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		index[col.Name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}

	return &MemTable{
		name:    name,
		columns: columns,
		index:   index,
		rows:    rows,
	}, nil
}

// MustNew is New that panics on error, for fixtures.
func MustNew(name string, columns []ddqcore.ColumnInfo, rows []Row) *MemTable {
	t, err := New(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *MemTable) Name() string {
	if t.name != "" {
		return t.name
	}
	parts := make([]string, len(t.columns))
	for i, col := range t.columns {
		parts[i] = col.Name + ": " + col.Type
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (t *MemTable) Columns() []ddqcore.ColumnInfo {
	out := make([]ddqcore.ColumnInfo, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *MemTable) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}

func (t *MemTable) Filter(pred ddqcore.Predicate) (ddqcore.Table, error) {
	matcher, err := t.compile(pred)
	if err != nil {
		return nil, err
	}

	var matched []Row
	for _, row := range t.rows {
		ok, err := matcher(row)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return t.derive(t.columns, matched), nil
}

func (t *MemTable) GroupCount(columns ...string) (ddqcore.Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("group by requires at least one column")
	}

	indices := make([]int, len(columns))
	outCols := make([]ddqcore.ColumnInfo, 0, len(columns)+1)
	for i, name := range columns {
		idx, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		indices[i] = idx
		outCols = append(outCols, t.columns[idx])
	}
	outCols = append(outCols, ddqcore.ColumnInfo{Name: ddqcore.CountColumn, Type: "bigint"})

	counts := make(map[string]int64)
	firstRow := make(map[string]Row)
	var order []string
	for _, row := range t.rows {
		key := rowKey(row, indices)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			group := make(Row, len(indices))
			for i, idx := range indices {
				group[i] = row[idx]
			}
			firstRow[key] = group
		}
		counts[key]++
	}

	grouped := make([]Row, 0, len(order))
	for _, key := range order {
		row := append(Row{}, firstRow[key]...)
		row = append(row, counts[key])
		grouped = append(grouped, row)
	}
	// a grouped column named like the count column collides in the output
	// schema; newDerived rejects the duplicate
	return newDerived(outCols, grouped)
}

func (t *MemTable) Select(columns []ddqcore.SelectColumn) (ddqcore.Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("select requires at least one column")
	}

	indices := make([]int, len(columns))
	outCols := make([]ddqcore.ColumnInfo, len(columns))
	for i, sel := range columns {
		idx, ok := t.index[sel.Name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", sel.Name)
		}
		indices[i] = idx
		outCols[i] = ddqcore.ColumnInfo{Name: sel.Alias(), Type: t.columns[idx].Type}
	}

	projected := make([]Row, len(t.rows))
	for r, row := range t.rows {
		out := make(Row, len(indices))
		for i, idx := range indices {
			out[i] = row[idx]
		}
		projected[r] = out
	}
	return newDerived(outCols, projected)
}

func (t *MemTable) Distinct() (ddqcore.Table, error) {
	all := make([]int, len(t.columns))
	for i := range all {
		all[i] = i
	}

	seen := make(map[string]bool, len(t.rows))
	var unique []Row
	for _, row := range t.rows {
		key := rowKey(row, all)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, row)
	}
	return t.derive(t.columns, unique), nil
}

func (t *MemTable) Join(other ddqcore.Table, on []ddqcore.JoinOn, kind ddqcore.JoinKind) (ddqcore.Table, error) {
	right, ok := other.(*MemTable)
	if !ok {
		return nil, fmt.Errorf("cannot join with a table of a different backend (%T)", other)
	}
	if len(on) == 0 {
		return nil, fmt.Errorf("join requires at least one column pair")
	}

	leftIdx := make([]int, len(on))
	rightIdx := make([]int, len(on))
	for i, cond := range on {
		li, ok := t.index[cond.Left]
		if !ok {
			return nil, fmt.Errorf("unknown column %q in left table", cond.Left)
		}
		ri, ok := right.index[cond.Right]
		if !ok {
			return nil, fmt.Errorf("unknown column %q in right table", cond.Right)
		}
		leftIdx[i] = li
		rightIdx[i] = ri
	}

	outCols := make([]ddqcore.ColumnInfo, 0, len(t.columns)+len(right.columns))
	outCols = append(outCols, t.columns...)
	outCols = append(outCols, right.columns...)
	names := make(map[string]bool, len(outCols))
	for _, col := range outCols {
		if names[col.Name] {
			return nil, fmt.Errorf("ambiguous column %q in join result", col.Name)
		}
		names[col.Name] = true
	}

	// hash the right side on its key; null keys never match
	rightGroups := make(map[string][]Row)
	for _, row := range right.rows {
		if hasNull(row, rightIdx) {
			continue
		}
		key := rowKey(row, rightIdx)
		rightGroups[key] = append(rightGroups[key], row)
	}

	var joined []Row
	matchedRight := make(map[string]bool)
	for _, lrow := range t.rows {
		var matches []Row
		if !hasNull(lrow, leftIdx) {
			key := rowKey(lrow, leftIdx)
			matches = rightGroups[key]
			if len(matches) > 0 {
				matchedRight[key] = true
			}
		}

		if len(matches) == 0 {
			if kind == ddqcore.OuterJoin {
				joined = append(joined, padRight(lrow, len(right.columns)))
			}
			continue
		}
		for _, rrow := range matches {
			out := make(Row, 0, len(outCols))
			out = append(out, lrow...)
			out = append(out, rrow...)
			joined = append(joined, out)
		}
	}

	if kind == ddqcore.OuterJoin {
		for _, rrow := range right.rows {
			if hasNull(rrow, rightIdx) || !matchedRight[rowKey(rrow, rightIdx)] {
				joined = append(joined, padLeft(rrow, len(t.columns)))
			}
		}
	}

	return newDerived(outCols, joined)
}

func (t *MemTable) Persist(strategy ddqcore.CacheStrategy) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.persisted = true
	t.strategy = strategy
	return nil
}

func (t *MemTable) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.persisted = false
	return nil
}

// Persisted reports whether the table currently holds a materialization,
// and under which strategy it was last acquired.
func (t *MemTable) Persisted() (bool, ddqcore.CacheStrategy) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persisted, t.strategy
}

func (t *MemTable) derive(columns []ddqcore.ColumnInfo, rows []Row) *MemTable {
	derived, err := newDerived(columns, rows)
	if err != nil {
		// columns come from a valid table, so this cannot happen
		panic(err)
	}
	return derived
}

func newDerived(columns []ddqcore.ColumnInfo, rows []Row) (*MemTable, error) {
	return New("", columns, rows)
}

func hasNull(row Row, indices []int) bool {
	for _, idx := range indices {
		if row[idx] == nil {
			return true
		}
	}
	return false
}

// rowKey builds a grouping key over the selected values. Values are
// normalized through formatValue so 1 (int) and 1 (int64) land in the same
// group; the null marker is distinct from any real value.
func rowKey(row Row, indices []int) string {
	var b strings.Builder
	for i, idx := range indices {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if row[idx] == nil {
			b.WriteString("\x00null")
		} else {
			b.WriteString(formatValue(row[idx]))
		}
	}
	return b.String()
}

func padRight(row Row, n int) Row {
	out := make(Row, len(row), len(row)+n)
	copy(out, row)
	for i := 0; i < n; i++ {
		out = append(out, nil)
	}
	return out
}

func padLeft(row Row, n int) Row {
	out := make(Row, n, n+len(row))
	return append(out, row...)
}
