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
	"os"

	"gopkg.in/yaml.v3"
)

// ChecksFileConfig is a declarative check-suite file:
//
//	version: "1"
//	suites:
//	  - dataset: customers
//	    display_name: Customers
//	    constraints:
//	      - has_unique_key: {columns: [id]}
//	      - is_never_null: {column: email}
//	      - satisfies: {expression: "age > 0"}
//	      - has_foreign_key:
//	          reference: countries
//	          keys: [{base: country, ref: code}]
type ChecksFileConfig struct {
	Version string       `yaml:"version"`
	Suites  []CheckSuite `yaml:"suites"`
}

type CheckSuite struct {
	Dataset     string             `yaml:"dataset"`
	DisplayName string             `yaml:"display_name,omitempty"`
	Cache       string             `yaml:"cache,omitempty"`
	Constraints []ConstraintConfig `yaml:"constraints"`
}

// ConstraintConfig is one entry of a suite's constraint list, written as a
// single-key mapping: the key names the constraint, the value carries its
// parameters.
type ConstraintConfig struct {
	Kind string
	constraintParams
}

type constraintParams struct {
	Column        string          `yaml:"column"`
	Columns       []string        `yaml:"columns"`
	Expected      int64           `yaml:"expected"`
	Expression    string          `yaml:"expression"`
	Condition     string          `yaml:"condition"`
	Consequence   string          `yaml:"consequence"`
	Layout        string          `yaml:"layout"`
	TrueValue     string          `yaml:"true_value"`
	FalseValue    string          `yaml:"false_value"`
	CaseSensitive bool            `yaml:"case_sensitive"`
	Allowed       []string        `yaml:"allowed"`
	Pattern       string          `yaml:"pattern"`
	Reference     string          `yaml:"reference"`
	Keys          []KeyPairConfig `yaml:"keys"`
}

type KeyPairConfig struct {
	Base string `yaml:"base"`
	Ref  string `yaml:"ref"`
}

func (c *ConstraintConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("constraint entry must be a single-key mapping")
	}

	c.Kind = node.Content[0].Value
	value := node.Content[1]

	if value.Kind == yaml.MappingNode {
		if err := value.Decode(&c.constraintParams); err != nil {
			return fmt.Errorf("failed to decode parameters of %s: %w", c.Kind, err)
		}
	}

	return nil
}

// LoadChecksFileConfig reads and parses a YAML check-suite file.
func LoadChecksFileConfig(fileName string) (*ChecksFileConfig, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg ChecksFileConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// BuildChecks resolves every suite against the provider and compiles it into
// a Check. Table lookup failures surface as *ConfigurationError before any
// evaluation can start.
func BuildChecks(cfg *ChecksFileConfig, provider TableProvider) ([]Check, error) {
	checks := make([]Check, 0, len(cfg.Suites))
	for _, suite := range cfg.Suites {
		check, err := buildSuite(suite, provider)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func buildSuite(suite CheckSuite, provider TableProvider) (Check, error) {
	check, err := CheckTable(provider, suite.Dataset)
	if err != nil {
		return Check{}, err
	}

	if suite.DisplayName != "" {
		check = check.WithDisplayName(suite.DisplayName)
	}

	strategy, err := parseCacheStrategy(suite.Cache)
	if err != nil {
		return Check{}, fmt.Errorf("suite %s: %w", suite.Dataset, err)
	}
	check = check.WithCacheStrategy(strategy)

	for _, cc := range suite.Constraints {
		check, err = cc.apply(check, provider)
		if err != nil {
			return Check{}, fmt.Errorf("suite %s: %w", suite.Dataset, err)
		}
	}
	return check, nil
}

func parseCacheStrategy(s string) (CacheStrategy, error) {
	switch s {
	case "":
		return CacheMemoryOnly, nil
	case "none":
		return CacheNone, nil
	case string(CacheMemoryOnly):
		return CacheMemoryOnly, nil
	case string(CacheMemoryAndDisk):
		return CacheMemoryAndDisk, nil
	default:
		return CacheNone, fmt.Errorf("unknown cache strategy %q", s)
	}
}

func (c ConstraintConfig) apply(check Check, provider TableProvider) (Check, error) {
	switch c.Kind {
	case "has_unique_key":
		if len(c.Columns) == 0 {
			return Check{}, fmt.Errorf("has_unique_key requires columns")
		}
		return check.HasUniqueKey(c.Columns[0], c.Columns[1:]...), nil

	case "is_never_null":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_never_null requires a column")
		}
		return check.IsNeverNull(c.Column), nil

	case "is_always_null":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_always_null requires a column")
		}
		return check.IsAlwaysNull(c.Column), nil

	case "has_num_rows_equal_to":
		return check.HasNumRowsEqualTo(c.Expected), nil

	case "satisfies":
		if c.Expression == "" {
			return Check{}, fmt.Errorf("satisfies requires an expression")
		}
		return check.Satisfies(c.Expression), nil

	case "satisfies_if":
		if c.Condition == "" || c.Consequence == "" {
			return Check{}, fmt.Errorf("satisfies_if requires condition and consequence")
		}
		return check.SatisfiesIf(c.Condition, c.Consequence), nil

	case "is_convertible_to_int":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_convertible_to_int requires a column")
		}
		return check.IsConvertibleToInt(c.Column), nil

	case "is_convertible_to_long":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_convertible_to_long requires a column")
		}
		return check.IsConvertibleToLong(c.Column), nil

	case "is_convertible_to_double":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_convertible_to_double requires a column")
		}
		return check.IsConvertibleToDouble(c.Column), nil

	case "is_convertible_to_date":
		if c.Column == "" || c.Layout == "" {
			return Check{}, fmt.Errorf("is_convertible_to_date requires a column and a layout")
		}
		return check.IsConvertibleToDate(c.Column, c.Layout), nil

	case "is_convertible_to_boolean":
		if c.Column == "" {
			return Check{}, fmt.Errorf("is_convertible_to_boolean requires a column")
		}
		return check.IsConvertibleToBoolean(c.Column, BooleanFormat{
			TrueValue:     c.TrueValue,
			FalseValue:    c.FalseValue,
			CaseSensitive: c.CaseSensitive,
		}), nil

	case "is_any_of":
		if c.Column == "" || len(c.Allowed) == 0 {
			return Check{}, fmt.Errorf("is_any_of requires a column and an allowed set")
		}
		return check.IsAnyOf(c.Column, c.Allowed...), nil

	case "is_matching_regex":
		if c.Column == "" || c.Pattern == "" {
			return Check{}, fmt.Errorf("is_matching_regex requires a column and a pattern")
		}
		return check.IsMatchingRegex(c.Column, c.Pattern), nil

	case "has_foreign_key", "is_joinable_with":
		if c.Reference == "" || len(c.Keys) == 0 {
			return Check{}, fmt.Errorf("%s requires a reference table and key pairs", c.Kind)
		}
		ref, err := provider.LookupTable(c.Reference)
		if err != nil {
			return Check{}, &ConfigurationError{TableName: c.Reference, Err: err}
		}
		pairs := make([]ColumnPair, len(c.Keys))
		for i, k := range c.Keys {
			pairs[i] = ColumnPair{Base: k.Base, Ref: k.Ref}
		}
		if c.Kind == "has_foreign_key" {
			return check.HasForeignKey(ref, pairs[0], pairs[1:]...), nil
		}
		return check.IsJoinableWith(ref, pairs[0], pairs[1:]...), nil

	default:
		return Check{}, fmt.Errorf("unknown constraint %q", c.Kind)
	}
}
