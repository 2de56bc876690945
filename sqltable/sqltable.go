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

// Package sqltable implements the ddqcore Table interface on top of
// database/sql. Derived tables are composed lazily as nested subqueries;
// only Count runs a statement against the database.
package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/DataBridgeTech/ddqcore"
)

// Database wraps a SQL connection and a dialect, and resolves dataset names
// to tables. It implements ddqcore.TableProvider.
type Database struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewDatabase wires an existing connection with the dialect matching its
// driver ("postgres", "mysql" or "clickhouse").
func NewDatabase(db *sql.DB, driverName string, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dialect, err := dialectFor(driverName)
	if err != nil {
		return nil, err
	}

	return &Database{db: db, dialect: dialect, logger: logger}, nil
}

// LookupTable resolves a dataset name by introspecting its columns. A
// dataset without columns does not exist, which makes misconfigured suites
// fail before any check runs.
func (d *Database) LookupTable(name string) (ddqcore.Table, error) {
	query, args := d.dialect.ColumnsQuery(name)

	rows, err := d.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect columns of %s: %w", name, err)
	}
	defer rows.Close()

	var columns []ddqcore.ColumnInfo
	for rows.Next() {
		var col ddqcore.ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset %s does not exist", name)
	}

	return &queryTable{
		database: d,
		name:     name,
		query:    fmt.Sprintf("SELECT * FROM %s", quoteDataset(d.dialect, name)),
		columns:  columns,
	}, nil
}

// quoteDataset quotes a possibly schema-qualified dataset name part by part.
func quoteDataset(dialect Dialect, name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = dialect.QuoteIdent(strings.TrimSpace(part))
	}
	return strings.Join(parts, ".")
}

// queryTable is a lazily composed query. Every relational operation wraps
// the current query as a subquery; nothing touches the database until Count.
type queryTable struct {
	database *Database
	name     string
	query    string
	columns  []ddqcore.ColumnInfo
}

func (t *queryTable) Name() string { return t.name }

func (t *queryTable) Columns() []ddqcore.ColumnInfo {
	out := make([]ddqcore.ColumnInfo, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *queryTable) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS ddq_sub", t.query)

	t.database.logger.Debug("executing count query", "dataset", t.name, "query", query)

	var count int64
	if err := t.database.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

func (t *queryTable) Filter(pred ddqcore.Predicate) (ddqcore.Table, error) {
	where, err := t.database.dialect.RenderPredicate(pred)
	if err != nil {
		return nil, err
	}
	return t.derive(t.columns,
		fmt.Sprintf("SELECT * FROM (%s) AS ddq_sub WHERE %s", t.query, where)), nil
}

func (t *queryTable) GroupCount(columns ...string) (ddqcore.Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("group by requires at least one column")
	}

	outCols := make([]ddqcore.ColumnInfo, 0, len(columns)+1)
	quoted := make([]string, len(columns))
	for i, name := range columns {
		if name == ddqcore.CountColumn {
			return nil, fmt.Errorf("cannot group by reserved column %q", ddqcore.CountColumn)
		}
		col, err := t.column(name)
		if err != nil {
			return nil, err
		}
		outCols = append(outCols, col)
		quoted[i] = t.database.dialect.QuoteIdent(name)
	}
	outCols = append(outCols, ddqcore.ColumnInfo{Name: ddqcore.CountColumn, Type: "bigint"})

	list := strings.Join(quoted, ", ")
	return t.derive(outCols,
		fmt.Sprintf("SELECT %s, COUNT(*) AS %s FROM (%s) AS ddq_sub GROUP BY %s",
			list, ddqcore.CountColumn, t.query, list)), nil
}

func (t *queryTable) Select(columns []ddqcore.SelectColumn) (ddqcore.Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("select requires at least one column")
	}

	outCols := make([]ddqcore.ColumnInfo, len(columns))
	parts := make([]string, len(columns))
	for i, sel := range columns {
		col, err := t.column(sel.Name)
		if err != nil {
			return nil, err
		}
		outCols[i] = ddqcore.ColumnInfo{Name: sel.Alias(), Type: col.Type}
		parts[i] = fmt.Sprintf("%s AS %s",
			t.database.dialect.QuoteIdent(sel.Name),
			t.database.dialect.QuoteIdent(sel.Alias()))
	}

	return t.derive(outCols,
		fmt.Sprintf("SELECT %s FROM (%s) AS ddq_sub", strings.Join(parts, ", "), t.query)), nil
}

func (t *queryTable) Distinct() (ddqcore.Table, error) {
	return t.derive(t.columns,
		fmt.Sprintf("SELECT DISTINCT * FROM (%s) AS ddq_sub", t.query)), nil
}

func (t *queryTable) Join(other ddqcore.Table, on []ddqcore.JoinOn, kind ddqcore.JoinKind) (ddqcore.Table, error) {
	right, ok := other.(*queryTable)
	if !ok {
		return nil, fmt.Errorf("cannot join with a table of a different backend (%T)", other)
	}
	if right.database != t.database {
		return nil, fmt.Errorf("cannot join tables of different databases")
	}
	if len(on) == 0 {
		return nil, fmt.Errorf("join requires at least one column pair")
	}

	dialect := t.database.dialect

	outCols := make([]ddqcore.ColumnInfo, 0, len(t.columns)+len(right.columns))
	var selectList []string
	for _, col := range t.columns {
		outCols = append(outCols, col)
		selectList = append(selectList, "ddq_l."+dialect.QuoteIdent(col.Name))
	}
	for _, col := range right.columns {
		outCols = append(outCols, col)
		selectList = append(selectList, "ddq_r."+dialect.QuoteIdent(col.Name))
	}
	names := make(map[string]bool, len(outCols))
	for _, col := range outCols {
		if names[col.Name] {
			return nil, fmt.Errorf("ambiguous column %q in join result", col.Name)
		}
		names[col.Name] = true
	}

	conditions := make([]string, len(on))
	for i, cond := range on {
		if _, err := t.column(cond.Left); err != nil {
			return nil, err
		}
		if _, err := right.column(cond.Right); err != nil {
			return nil, err
		}
		conditions[i] = fmt.Sprintf("ddq_l.%s = ddq_r.%s",
			dialect.QuoteIdent(cond.Left), dialect.QuoteIdent(cond.Right))
	}

	return t.derive(outCols,
		fmt.Sprintf("SELECT %s FROM (%s) AS ddq_l %s (%s) AS ddq_r ON %s",
			strings.Join(selectList, ", "),
			t.query,
			dialect.JoinClause(kind),
			right.query,
			strings.Join(conditions, " AND "))), nil
}

// Persist and Release are accepted but are no-ops: the composed query is
// re-executed per constraint and the database's own caches apply.
func (t *queryTable) Persist(strategy ddqcore.CacheStrategy) error {
	t.database.logger.Debug("persist requested, not materializing",
		"dataset", t.name,
		"strategy", string(strategy))
	return nil
}

func (t *queryTable) Release() error {
	return nil
}

func (t *queryTable) column(name string) (ddqcore.ColumnInfo, error) {
	for _, col := range t.columns {
		if col.Name == name {
			return col, nil
		}
	}
	return ddqcore.ColumnInfo{}, fmt.Errorf("unknown column %q", name)
}

func (t *queryTable) derive(columns []ddqcore.ColumnInfo, query string) *queryTable {
	return &queryTable{
		database: t.database,
		name:     t.name,
		query:    query,
		columns:  columns,
	}
}
