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
	"fmt"
	"strings"
)

// Predicate is a declarative row filter interpreted by each backend. The
// engine only constructs predicates; it never evaluates them itself, so a
// backend is free to translate them to SQL, push them into a scan, or apply
// them row by row.
type Predicate interface {
	fmt.Stringer
	predicate()
}

// ExprPredicate carries a raw predicate expression in the backend's dialect
// (for the in-memory engine, the grammar of ParseExpr).
type ExprPredicate struct {
	Expr string
}

func (p ExprPredicate) String() string { return p.Expr }
func (ExprPredicate) predicate()       {}

// ImplicationPredicate matches rows where Condition being true implies
// Consequence is true, i.e. NOT (condition) OR (consequence).
type ImplicationPredicate struct {
	Condition   string
	Consequence string
}

func (p ImplicationPredicate) String() string {
	return p.Condition + " -> " + p.Consequence
}
func (ImplicationPredicate) predicate() {}

// NullPredicate matches rows where Column is null, or not null when NotNull
// is set.
type NullPredicate struct {
	Column  string
	NotNull bool
}

func (p NullPredicate) String() string {
	if p.NotNull {
		return p.Column + " is not null"
	}
	return p.Column + " is null"
}
func (NullPredicate) predicate() {}

// AndPredicate matches rows satisfying every sub-predicate.
type AndPredicate struct {
	Predicates []Predicate
}

func (p AndPredicate) String() string {
	parts := make([]string, len(p.Predicates))
	for i, sub := range p.Predicates {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " and ")
}
func (AndPredicate) predicate() {}

// CompareOp is a comparison operator of ComparePredicate.
type CompareOp string

const (
	CompareEq CompareOp = "="
	CompareGt CompareOp = ">"
	CompareLt CompareOp = "<"
)

// ComparePredicate matches rows where Column compares against an integer
// literal. Null values never match.
type ComparePredicate struct {
	Column string
	Op     CompareOp
	Value  int64
}

func (p ComparePredicate) String() string {
	return fmt.Sprintf("%s %s %d", p.Column, p.Op, p.Value)
}
func (ComparePredicate) predicate() {}

// NotInSetPredicate matches rows where Column is non-null and not a member
// of Allowed. Null values never match.
type NotInSetPredicate struct {
	Column  string
	Allowed []string
}

func (p NotInSetPredicate) String() string {
	return fmt.Sprintf("%s not in [%s]", p.Column, strings.Join(p.Allowed, ", "))
}
func (NotInSetPredicate) predicate() {}

// NotMatchingRegexPredicate matches rows where Column is non-null and the
// pattern does not find a match anywhere in the value (partial match
// semantics). Null values never match.
type NotMatchingRegexPredicate struct {
	Column  string
	Pattern string
}

func (p NotMatchingRegexPredicate) String() string {
	return fmt.Sprintf("%s not matching %s", p.Column, p.Pattern)
}
func (NotMatchingRegexPredicate) predicate() {}

// ConvertTarget is the target type of a convertibility predicate.
type ConvertTarget string

const (
	ConvertInt     ConvertTarget = "Int"
	ConvertLong    ConvertTarget = "Long"
	ConvertDouble  ConvertTarget = "Double"
	ConvertDate    ConvertTarget = "Date"
	ConvertBoolean ConvertTarget = "Boolean"
)

// BooleanFormat configures boolean convertibility. The zero value means the
// tokens "true"/"false" compared case-insensitively.
type BooleanFormat struct {
	TrueValue     string
	FalseValue    string
	CaseSensitive bool
}

func (f BooleanFormat) withDefaults() BooleanFormat {
	if f.TrueValue == "" {
		f.TrueValue = "true"
	}
	if f.FalseValue == "" {
		f.FalseValue = "false"
	}
	return f
}

// NotConvertiblePredicate matches rows where Column is non-null and the
// value cannot be converted to Target. DateLayout applies to ConvertDate
// (Go reference-time layout), Boolean to ConvertBoolean. Null values never
// match.
type NotConvertiblePredicate struct {
	Column     string
	Target     ConvertTarget
	DateLayout string
	Boolean    BooleanFormat
}

func (p NotConvertiblePredicate) String() string {
	if p.Target == ConvertDate {
		return fmt.Sprintf("%s not convertible to Date(%s)", p.Column, p.DateLayout)
	}
	return fmt.Sprintf("%s not convertible to %s", p.Column, p.Target)
}
func (NotConvertiblePredicate) predicate() {}
