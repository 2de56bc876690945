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

package ddqcore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/DataBridgeTech/ddqcore"
	"github.com/DataBridgeTech/ddqcore/memtable"
)

const checksYaml = `
version: "1"
suites:
  - dataset: customers
    display_name: Customer quality
    cache: none
    constraints:
      - has_unique_key: {columns: [id]}
      - is_never_null: {column: email}
      - satisfies: {expression: "age > 0"}
      - satisfies_if: {condition: "country = 'DE'", consequence: "age >= 18"}
      - is_any_of: {column: status, allowed: [active, blocked]}
      - is_matching_regex: {column: email, pattern: "@"}
      - is_convertible_to_long: {column: ref_code}
      - is_convertible_to_date: {column: signup, layout: "2006-01-02"}
      - is_convertible_to_boolean: {column: verified, true_value: "yes", false_value: "no"}
      - has_num_rows_equal_to: {expected: 2}
      - has_foreign_key:
          reference: countries
          keys: [{base: country, ref: code}]
      - is_joinable_with:
          reference: countries
          keys: [{base: country, ref: code}]
`

func writeChecksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write checks file: %v", err)
	}
	return path
}

func customersCatalog(t *testing.T) *memtable.Catalog {
	t.Helper()

	customers, err := memtable.New("customers", []ddqcore.ColumnInfo{
		{Name: "id", Type: "bigint"},
		{Name: "email", Type: "string"},
		{Name: "age", Type: "bigint"},
		{Name: "country", Type: "string"},
		{Name: "status", Type: "string"},
		{Name: "ref_code", Type: "string"},
		{Name: "signup", Type: "string"},
		{Name: "verified", Type: "string"},
	}, []memtable.Row{
		{int64(1), "a@example.com", int64(34), "DE", "active", "1001", "2024-01-15", "yes"},
		{int64(2), "b@example.com", int64(27), "FR", "blocked", "1002", "2024-02-20", "no"},
	})
	if err != nil {
		t.Fatalf("failed to build customers: %v", err)
	}

	countries, err := memtable.New("countries", []ddqcore.ColumnInfo{
		{Name: "code", Type: "string"},
		{Name: "name", Type: "string"},
	}, []memtable.Row{
		{"DE", "Germany"},
		{"FR", "France"},
	})
	if err != nil {
		t.Fatalf("failed to build countries: %v", err)
	}

	catalog := memtable.NewCatalog()
	if err := catalog.Register(customers); err != nil {
		t.Fatalf("failed to register customers: %v", err)
	}
	if err := catalog.Register(countries); err != nil {
		t.Fatalf("failed to register countries: %v", err)
	}
	return catalog
}

func TestLoadChecksFileConfig(t *testing.T) {
	path := writeChecksFile(t, checksYaml)

	cfg, err := ddqcore.LoadChecksFileConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("version = %q, expected %q", cfg.Version, "1")
	}
	if len(cfg.Suites) != 1 {
		t.Fatalf("expected 1 suite, got %d", len(cfg.Suites))
	}

	suite := cfg.Suites[0]
	if suite.Dataset != "customers" {
		t.Errorf("dataset = %q, expected %q", suite.Dataset, "customers")
	}
	if suite.DisplayName != "Customer quality" {
		t.Errorf("display_name = %q, expected %q", suite.DisplayName, "Customer quality")
	}
	if suite.Cache != "none" {
		t.Errorf("cache = %q, expected %q", suite.Cache, "none")
	}
	if len(suite.Constraints) != 12 {
		t.Fatalf("expected 12 constraints, got %d", len(suite.Constraints))
	}
	if suite.Constraints[0].Kind != "has_unique_key" {
		t.Errorf("first kind = %q, expected has_unique_key", suite.Constraints[0].Kind)
	}
	if got := suite.Constraints[10].Reference; got != "countries" {
		t.Errorf("foreign key reference = %q, expected countries", got)
	}
	if got := suite.Constraints[10].Keys; len(got) != 1 || got[0].Base != "country" || got[0].Ref != "code" {
		t.Errorf("foreign key pairs = %v, expected country->code", got)
	}
}

func TestLoadChecksFileConfigMissingFile(t *testing.T) {
	if _, err := ddqcore.LoadChecksFileConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestConstraintConfigRejectsNonMapping(t *testing.T) {
	var cc ddqcore.ConstraintConfig
	if err := yaml.Unmarshal([]byte(`"just a string"`), &cc); err == nil {
		t.Fatal("expected an error for a non-mapping constraint entry")
	}
}

func TestConstraintConfigRejectsMultiKeyMapping(t *testing.T) {
	var cc ddqcore.ConstraintConfig
	entry := "is_never_null: {column: email}\nis_always_null: {column: legacy}"
	if err := yaml.Unmarshal([]byte(entry), &cc); err == nil {
		t.Fatal("expected an error for a multi-key constraint entry")
	}
}

func TestBuildChecksAndRun(t *testing.T) {
	path := writeChecksFile(t, checksYaml)
	cfg, err := ddqcore.LoadChecksFileConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	checks, err := ddqcore.BuildChecks(cfg, customersCatalog(t))
	if err != nil {
		t.Fatalf("failed to build checks: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(checks))
	}

	check := checks[0]
	if check.DisplayName() != "Customer quality" {
		t.Errorf("display name = %q, expected %q", check.DisplayName(), "Customer quality")
	}
	if check.CacheStrategy() != ddqcore.CacheNone {
		t.Errorf("cache strategy = %q, expected none", check.CacheStrategy())
	}
	if len(check.Constraints()) != 12 {
		t.Fatalf("expected 12 constraints, got %d", len(check.Constraints()))
	}

	result, err := ddqcore.NewRunner(nil).Run(context.Background(), check)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, entry := range result.Results {
		if entry.Status != ddqcore.StatusSuccess {
			t.Errorf("unexpected %s: %s", entry.Status, entry.Message)
		}
	}
	if !result.Success {
		t.Error("expected overall success")
	}
}

func TestBuildChecksUnknownDataset(t *testing.T) {
	cfg := &ddqcore.ChecksFileConfig{
		Version: "1",
		Suites: []ddqcore.CheckSuite{
			{Dataset: "missing"},
		},
	}

	_, err := ddqcore.BuildChecks(cfg, memtable.NewCatalog())
	if err == nil {
		t.Fatal("expected an error for an unknown dataset")
	}
	var cfgErr *ddqcore.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.TableName != "missing" {
		t.Errorf("table name = %q, expected %q", cfgErr.TableName, "missing")
	}
}

func TestBuildChecksUnknownReference(t *testing.T) {
	cfg := &ddqcore.ChecksFileConfig{
		Version: "1",
		Suites: []ddqcore.CheckSuite{
			{
				Dataset: "customers",
				Constraints: []ddqcore.ConstraintConfig{
					parseConstraintEntry(t, `has_foreign_key: {reference: nowhere, keys: [{base: country, ref: code}]}`),
				},
			},
		},
	}

	_, err := ddqcore.BuildChecks(cfg, customersCatalog(t))
	var cfgErr *ddqcore.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.TableName != "nowhere" {
		t.Errorf("table name = %q, expected %q", cfgErr.TableName, "nowhere")
	}
}

func TestBuildChecksValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"unknown kind", `does_not_exist: {}`},
		{"unique key without columns", `has_unique_key: {}`},
		{"never null without column", `is_never_null: {}`},
		{"satisfies without expression", `satisfies: {}`},
		{"date without layout", `is_convertible_to_date: {column: signup}`},
		{"any of without allowed set", `is_any_of: {column: status}`},
		{"foreign key without keys", `has_foreign_key: {reference: countries}`},
	}

	catalog := customersCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ddqcore.ChecksFileConfig{
				Version: "1",
				Suites: []ddqcore.CheckSuite{
					{
						Dataset:     "customers",
						Constraints: []ddqcore.ConstraintConfig{parseConstraintEntry(t, tt.entry)},
					},
				},
			}
			if _, err := ddqcore.BuildChecks(cfg, catalog); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func parseConstraintEntry(t *testing.T, entry string) ddqcore.ConstraintConfig {
	t.Helper()
	var cc ddqcore.ConstraintConfig
	if err := yaml.Unmarshal([]byte(entry), &cc); err != nil {
		t.Fatalf("failed to parse constraint entry: %v", err)
	}
	return cc
}
