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

package memtable

import (
	"fmt"
	"regexp"

	"github.com/DataBridgeTech/ddqcore"
)

type rowMatcher func(Row) (bool, error)

// compile turns a declarative predicate into a row matcher. Unknown columns
// and malformed expressions are rejected here, before any row is touched,
// so the caller gets one error instead of one per row.
func (t *MemTable) compile(pred ddqcore.Predicate) (rowMatcher, error) {
	switch p := pred.(type) {
	case ddqcore.ExprPredicate:
		expr, err := ddqcore.ParseExpr(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("invalid predicate expression %q: %w", p.Expr, err)
		}
		return func(row Row) (bool, error) {
			return expr.Eval(t.lookup(row))
		}, nil

	case ddqcore.ImplicationPredicate:
		condition, err := ddqcore.ParseExpr(p.Condition)
		if err != nil {
			return nil, fmt.Errorf("invalid condition %q: %w", p.Condition, err)
		}
		consequence, err := ddqcore.ParseExpr(p.Consequence)
		if err != nil {
			return nil, fmt.Errorf("invalid consequence %q: %w", p.Consequence, err)
		}
		return func(row Row) (bool, error) {
			holds, err := condition.Eval(t.lookup(row))
			if err != nil {
				return false, err
			}
			if !holds {
				return true, nil
			}
			return consequence.Eval(t.lookup(row))
		}, nil

	case ddqcore.NullPredicate:
		idx, ok := t.index[p.Column]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.Column)
		}
		return func(row Row) (bool, error) {
			isNull := row[idx] == nil
			return isNull != p.NotNull, nil
		}, nil

	case ddqcore.AndPredicate:
		matchers := make([]rowMatcher, len(p.Predicates))
		for i, sub := range p.Predicates {
			matcher, err := t.compile(sub)
			if err != nil {
				return nil, err
			}
			matchers[i] = matcher
		}
		return func(row Row) (bool, error) {
			for _, matcher := range matchers {
				ok, err := matcher(row)
				if err != nil {
					return false, err
				}
				if !ok {
					return false, nil
				}
			}
			return true, nil
		}, nil

	case ddqcore.ComparePredicate:
		idx, ok := t.index[p.Column]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.Column)
		}
		return func(row Row) (bool, error) {
			if row[idx] == nil {
				return false, nil
			}
			f, ok := numericValue(row[idx])
			if !ok {
				return false, fmt.Errorf("column %q holds non-numeric value %v", p.Column, row[idx])
			}
			switch p.Op {
			case ddqcore.CompareEq:
				return f == float64(p.Value), nil
			case ddqcore.CompareGt:
				return f > float64(p.Value), nil
			case ddqcore.CompareLt:
				return f < float64(p.Value), nil
			default:
				return false, fmt.Errorf("unsupported comparison operator %q", p.Op)
			}
		}, nil

	case ddqcore.NotInSetPredicate:
		idx, ok := t.index[p.Column]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.Column)
		}
		allowed := make(map[string]bool, len(p.Allowed))
		for _, v := range p.Allowed {
			allowed[v] = true
		}
		return func(row Row) (bool, error) {
			if row[idx] == nil {
				return false, nil
			}
			return !allowed[formatValue(row[idx])], nil
		}, nil

	case ddqcore.NotMatchingRegexPredicate:
		idx, ok := t.index[p.Column]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.Column)
		}
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p.Pattern, err)
		}
		return func(row Row) (bool, error) {
			if row[idx] == nil {
				return false, nil
			}
			return !re.MatchString(formatValue(row[idx])), nil
		}, nil

	case ddqcore.NotConvertiblePredicate:
		idx, ok := t.index[p.Column]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", p.Column)
		}
		convertible, err := converterFor(p)
		if err != nil {
			return nil, err
		}
		return func(row Row) (bool, error) {
			if row[idx] == nil {
				return false, nil
			}
			return !convertible(row[idx]), nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported predicate %T", pred)
	}
}

func (t *MemTable) lookup(row Row) ddqcore.ValueLookup {
	return func(column string) (any, bool) {
		idx, ok := t.index[column]
		if !ok {
			return nil, false
		}
		return row[idx], true
	}
}
