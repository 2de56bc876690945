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

// CountColumn is the name of the per-group count column produced by
// Table.GroupCount. Backends must use this exact name so that constraints
// can filter on it.
const CountColumn = "ddq_count"

// JoinKind selects the join flavor used by Table.Join.
type JoinKind string

const (
	InnerJoin JoinKind = "inner"
	OuterJoin JoinKind = "outer"
)

// CacheStrategy tells a backend how to materialize a table for the duration
// of a check run.
type CacheStrategy string

const (
	// CacheNone disables materialization.
	CacheNone CacheStrategy = ""
	// CacheMemoryOnly keeps the materialized table in memory.
	CacheMemoryOnly CacheStrategy = "memory_only"
	// CacheMemoryAndDisk allows the backend to spill to disk.
	CacheMemoryAndDisk CacheStrategy = "memory_and_disk"
)

// ColumnInfo describes a single column of a table.
type ColumnInfo struct {
	Name string
	Type string
}

// SelectColumn is a projection entry: column Name, optionally renamed to As.
type SelectColumn struct {
	Name string
	As   string
}

// Alias returns the output name of the projected column.
func (s SelectColumn) Alias() string {
	if s.As != "" {
		return s.As
	}
	return s.Name
}

// JoinOn is an equality join condition between one column of the left table
// and one column of the right table.
type JoinOn struct {
	Left  string
	Right string
}

// Table is an opaque handle to a queryable dataset. Implementations are
// expected to be cheap immutable references; derived tables (Filter, Select,
// Distinct, Join, GroupCount) never mutate their source.
//
// The engine never owns a Table. It may request temporary materialization
// via Persist, and always pairs it with Release, including on failure paths.
type Table interface {
	// Name returns the textual identity of the table, used as the default
	// display name of a Check.
	Name() string

	// Columns returns the ordered column list.
	Columns() []ColumnInfo

	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)

	// Filter returns a table containing the rows matching the predicate.
	Filter(pred Predicate) (Table, error)

	// GroupCount groups by the given columns and returns a table holding the
	// group columns plus a CountColumn with the per-group row count.
	GroupCount(columns ...string) (Table, error)

	// Select projects (and optionally renames) the given columns.
	Select(columns []SelectColumn) (Table, error)

	// Distinct returns the table with duplicate rows removed.
	Distinct() (Table, error)

	// Join joins with another table of the same backend on column equality.
	Join(other Table, on []JoinOn, kind JoinKind) (Table, error)

	// Persist asks the backend to cache the table under the given strategy.
	Persist(strategy CacheStrategy) error

	// Release frees a materialization previously acquired with Persist.
	Release() error
}
