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

import "testing"

func TestParseExprEval(t *testing.T) {
	row := map[string]any{
		"age":     int64(42),
		"name":    "alice",
		"score":   3.5,
		"active":  true,
		"comment": nil,
	}
	lookup := func(column string) (any, bool) {
		v, ok := row[column]
		return v, ok
	}

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"equals number", "age = 42", true},
		{"equals number negative", "age = 41", false},
		{"double equals", "age == 42", true},
		{"not equals", "age != 41", true},
		{"angle not equals", "age <> 42", false},
		{"greater than", "age > 41", true},
		{"greater or equal", "age >= 42", true},
		{"less than", "age < 41", false},
		{"less or equal", "score <= 3.5", true},
		{"string literal single quotes", "name = 'alice'", true},
		{"string literal double quotes", `name = "bob"`, false},
		{"bare word string", "name = alice", true},
		{"boolean literal", "active = true", true},
		{"is null", "comment is null", true},
		{"is not null", "comment is not null", false},
		{"is not null on value", "age is not null", true},
		{"null comparison is false", "comment = 42", false},
		{"and", "age > 0 and name = 'alice'", true},
		{"and short left false", "age < 0 and name = 'alice'", false},
		{"or", "age < 0 or score > 3", true},
		{"not", "not age < 0", true},
		{"parentheses", "(age > 0 or age < -10) and score = 3.5", true},
		{"keyword case insensitive", "age > 0 AND name = 'alice'", true},
		{"numeric string coercion", "score > 3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseExpr(tt.expression)
			if err != nil {
				t.Fatalf("ParseExpr(%q) failed: %v", tt.expression, err)
			}
			got, err := expr.Eval(lookup)
			if err != nil {
				t.Fatalf("Eval(%q) failed: %v", tt.expression, err)
			}
			if got != tt.expected {
				t.Errorf("Eval(%q) = %v, expected %v", tt.expression, got, tt.expected)
			}
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"dangling operator", "age >"},
		{"missing operator", "age 42"},
		{"unclosed parenthesis", "(age > 0"},
		{"trailing input", "age > 0 age"},
		{"invalid characters", "age > #"},
		{"is without null", "age is 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseExpr(tt.expression); err == nil {
				t.Errorf("ParseExpr(%q) expected an error", tt.expression)
			}
		})
	}
}

func TestExprEvalUnknownColumn(t *testing.T) {
	expr, err := ParseExpr("missing > 0")
	if err != nil {
		t.Fatalf("ParseExpr failed: %v", err)
	}
	_, err = expr.Eval(func(string) (any, bool) { return nil, false })
	if err == nil {
		t.Error("expected an error for an unknown column")
	}
}
