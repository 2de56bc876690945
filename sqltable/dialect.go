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

package sqltable

import (
	"fmt"
	"strings"

	"github.com/DataBridgeTech/ddqcore"
)

// Dialect renders identifiers, predicates and introspection queries for one
// database flavor.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	ColumnsQuery(dataset string) (query string, args []any)
	RenderPredicate(pred ddqcore.Predicate) (string, error)
	JoinClause(kind ddqcore.JoinKind) string
}

func dialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "postgres":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	case "clickhouse":
		return clickhouseDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}
}

// renderPredicate handles the dialect-independent predicate shapes; regex
// matching differs per dialect and is delegated.
func renderPredicate(d Dialect, pred ddqcore.Predicate) (string, error) {
	switch p := pred.(type) {
	case ddqcore.ExprPredicate:
		return "(" + p.Expr + ")", nil

	case ddqcore.ImplicationPredicate:
		return fmt.Sprintf("(NOT (%s) OR (%s))", p.Condition, p.Consequence), nil

	case ddqcore.NullPredicate:
		if p.NotNull {
			return d.QuoteIdent(p.Column) + " IS NOT NULL", nil
		}
		return d.QuoteIdent(p.Column) + " IS NULL", nil

	case ddqcore.AndPredicate:
		parts := make([]string, len(p.Predicates))
		for i, sub := range p.Predicates {
			rendered, err := d.RenderPredicate(sub)
			if err != nil {
				return "", err
			}
			parts[i] = "(" + rendered + ")"
		}
		return strings.Join(parts, " AND "), nil

	case ddqcore.ComparePredicate:
		return fmt.Sprintf("%s %s %d", d.QuoteIdent(p.Column), p.Op, p.Value), nil

	case ddqcore.NotInSetPredicate:
		values := make([]string, len(p.Allowed))
		for i, v := range p.Allowed {
			values[i] = quoteString(v)
		}
		col := d.QuoteIdent(p.Column)
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT IN (%s)",
			col, col, strings.Join(values, ", ")), nil

	case ddqcore.NotConvertiblePredicate:
		// no portable SQL rendering; surfaces as an Error outcome
		return "", fmt.Errorf("convertibility checks are not supported by the %s backend", d.Name())

	default:
		return "", fmt.Errorf("unsupported predicate %T", pred)
	}
}

// joinClause renders OuterJoin as LEFT OUTER JOIN: the engine only inspects
// the base (left) side of outer joins, and MySQL has no FULL OUTER JOIN.
func joinClause(kind ddqcore.JoinKind) string {
	if kind == ddqcore.OuterJoin {
		return "LEFT OUTER JOIN"
	}
	return "INNER JOIN"
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d postgresDialect) ColumnsQuery(dataset string) (string, []any) {
	schema, table := splitDataset(dataset, "public")
	return "SELECT column_name, data_type FROM information_schema.columns " +
		"WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position", []any{schema, table}
}

func (d postgresDialect) RenderPredicate(pred ddqcore.Predicate) (string, error) {
	if p, ok := pred.(ddqcore.NotMatchingRegexPredicate); ok {
		col := d.QuoteIdent(p.Column)
		return fmt.Sprintf("%s IS NOT NULL AND %s !~ %s", col, col, quoteString(p.Pattern)), nil
	}
	return renderPredicate(d, pred)
}

func (postgresDialect) JoinClause(kind ddqcore.JoinKind) string { return joinClause(kind) }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d mysqlDialect) ColumnsQuery(dataset string) (string, []any) {
	schema, table := splitDataset(dataset, "")
	if schema == "" {
		return "SELECT column_name, data_type FROM information_schema.columns " +
			"WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position", []any{table}
	}
	return "SELECT column_name, data_type FROM information_schema.columns " +
		"WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position", []any{schema, table}
}

func (d mysqlDialect) RenderPredicate(pred ddqcore.Predicate) (string, error) {
	if p, ok := pred.(ddqcore.NotMatchingRegexPredicate); ok {
		col := d.QuoteIdent(p.Column)
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT REGEXP %s", col, col, quoteString(p.Pattern)), nil
	}
	return renderPredicate(d, pred)
}

func (mysqlDialect) JoinClause(kind ddqcore.JoinKind) string { return joinClause(kind) }

type clickhouseDialect struct{}

func (clickhouseDialect) Name() string { return "clickhouse" }

func (clickhouseDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d clickhouseDialect) ColumnsQuery(dataset string) (string, []any) {
	schema, table := splitDataset(dataset, "")
	if schema == "" {
		return "SELECT name, type FROM system.columns " +
			"WHERE database = currentDatabase() AND table = ? ORDER BY position", []any{table}
	}
	return "SELECT name, type FROM system.columns " +
		"WHERE database = ? AND table = ? ORDER BY position", []any{schema, table}
}

func (d clickhouseDialect) RenderPredicate(pred ddqcore.Predicate) (string, error) {
	if p, ok := pred.(ddqcore.NotMatchingRegexPredicate); ok {
		col := d.QuoteIdent(p.Column)
		return fmt.Sprintf("%s IS NOT NULL AND NOT match(%s, %s)", col, col, quoteString(p.Pattern)), nil
	}
	return renderPredicate(d, pred)
}

func (clickhouseDialect) JoinClause(kind ddqcore.JoinKind) string { return joinClause(kind) }

func splitDataset(dataset, defaultSchema string) (schema, table string) {
	parts := strings.SplitN(dataset, ".", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return defaultSchema, strings.TrimSpace(dataset)
}
