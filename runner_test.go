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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/DataBridgeTech/ddqcore"
	"github.com/DataBridgeTech/ddqcore/memtable"
	"github.com/DataBridgeTech/ddqcore/reporters"
)

func numbersTable(t *testing.T, values ...int64) *memtable.MemTable {
	t.Helper()
	rows := make([]memtable.Row, len(values))
	for i, v := range values {
		rows[i] = memtable.Row{v}
	}
	table, err := memtable.New("numbers", []ddqcore.ColumnInfo{
		{Name: "column", Type: "bigint"},
	}, rows)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func TestRunnerEmptyCheck(t *testing.T) {
	table := numbersTable(t, 1, 2, 3)

	result, err := ddqcore.NewRunner(nil).Run(context.Background(), ddqcore.NewCheck(table))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Success {
		t.Error("a check without constraints should succeed")
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected a single info entry, got %d entries", len(result.Results))
	}
	expectResult(t, result.Results[0], ddqcore.StatusInfo, "Nothing to check!")
}

func TestRunnerMetadata(t *testing.T) {
	table := intStringTable(t, []memtable.Row{
		{int64(1), "a"}, {int64(2), "b"},
	})

	check := ddqcore.NewCheck(table).WithDisplayName("custom name").IsNeverNull("id")
	result, err := ddqcore.NewRunner(nil).Run(context.Background(), check)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.DisplayName != "custom name" {
		t.Errorf("display name = %q, expected %q", result.DisplayName, "custom name")
	}
	if result.CheckID != check.ID() {
		t.Errorf("check id = %q, expected %q", result.CheckID, check.ID())
	}
	if result.NumColumns != 2 {
		t.Errorf("num columns = %d, expected 2", result.NumColumns)
	}
	if result.NumRows != 2 {
		t.Errorf("num rows = %d, expected 2", result.NumRows)
	}
}

func TestRunnerOverallOutcome(t *testing.T) {
	table := numbersTable(t, 1, 2, 3)
	runner := ddqcore.NewRunner(nil)

	t.Run("all constraints pass", func(t *testing.T) {
		check := ddqcore.NewCheck(table).HasNumRowsEqualTo(3).Satisfies("column > 0")
		result, err := runner.Run(context.Background(), check)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if !result.Success {
			t.Error("expected overall success")
		}
	})

	t.Run("one failure fails the run", func(t *testing.T) {
		check := ddqcore.NewCheck(table).HasNumRowsEqualTo(3).Satisfies("column > 1")
		result, err := runner.Run(context.Background(), check)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if result.Success {
			t.Error("expected overall failure")
		}
	})

	t.Run("an error entry fails the run but later constraints still execute", func(t *testing.T) {
		check := ddqcore.NewCheck(table).
			Satisfies("column >").
			HasNumRowsEqualTo(3)
		result, err := runner.Run(context.Background(), check)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if result.Success {
			t.Error("expected overall failure")
		}
		if len(result.Results) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result.Results))
		}
		if result.Results[0].Status != ddqcore.StatusError {
			t.Errorf("first entry status = %q, expected error", result.Results[0].Status)
		}
		if result.Results[0].Err == nil {
			t.Error("error entry should carry the underlying error")
		}
		expectResult(t, result.Results[1], ddqcore.StatusSuccess, "The number of rows is equal to 3")
	})
}

func TestRunnerPersistence(t *testing.T) {
	t.Run("default strategy persists and releases", func(t *testing.T) {
		table := numbersTable(t, 1)
		persistedDuringRun := false
		check := ddqcore.NewCheck(table).Satisfies("column = 1")

		spy := reporterFunc(func(result *ddqcore.CheckRunResult) error {
			persistedDuringRun, _ = table.Persisted()
			return nil
		})
		if _, err := ddqcore.NewRunner(nil).Run(context.Background(), check, spy); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if !persistedDuringRun {
			t.Error("table should be persisted while the run is in progress")
		}
		if persisted, _ := table.Persisted(); persisted {
			t.Error("table should be released after the run")
		}
		if _, strategy := table.Persisted(); strategy != ddqcore.CacheMemoryOnly {
			t.Errorf("strategy = %q, expected %q", strategy, ddqcore.CacheMemoryOnly)
		}
	})

	t.Run("cache none skips persistence", func(t *testing.T) {
		table := numbersTable(t, 1)
		check := ddqcore.NewCheck(table).
			WithCacheStrategy(ddqcore.CacheNone).
			Satisfies("column = 1")

		spy := reporterFunc(func(result *ddqcore.CheckRunResult) error {
			if persisted, _ := table.Persisted(); persisted {
				t.Error("table should not be persisted with CacheNone")
			}
			return nil
		})
		if _, err := ddqcore.NewRunner(nil).Run(context.Background(), check, spy); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
}

type reporterFunc func(result *ddqcore.CheckRunResult) error

func (f reporterFunc) Render(result *ddqcore.CheckRunResult) error { return f(result) }

func TestRunnerEndToEnd(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	table := numbersTable(t, 1, 2, 3)
	check := ddqcore.NewCheck(table).
		HasNumRowsEqualTo(3).
		HasNumRowsEqualTo(2).
		Satisfies("column > 0")

	var console, markdown bytes.Buffer
	result, err := ddqcore.NewRunner(nil).Run(context.Background(), check,
		reporters.NewConsoleReporter(&console),
		reporters.NewMarkdownReporter(&markdown))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Success {
		t.Error("expected overall failure")
	}

	expectedEntries := []ddqcore.ConstraintResult{
		{Status: ddqcore.StatusSuccess, Message: "The number of rows is equal to 3"},
		{Status: ddqcore.StatusFailure, Message: "The actual number of rows 3 is not equal to the expected 2"},
		{Status: ddqcore.StatusSuccess, Message: "Constraint column > 0 is satisfied"},
	}
	if len(result.Results) != len(expectedEntries) {
		t.Fatalf("expected %d entries, got %d", len(expectedEntries), len(result.Results))
	}
	for i, expected := range expectedEntries {
		expectResult(t, result.Results[i], expected.Status, expected.Message)
	}

	expectedConsole := strings.Join([]string{
		"Checking numbers",
		"It has a total number of 1 columns and 3 rows.",
		"- The number of rows is equal to 3",
		"- The actual number of rows 3 is not equal to the expected 2",
		"- Constraint column > 0 is satisfied",
		"",
	}, "\n")
	if console.String() != expectedConsole {
		t.Errorf("console output:\n%s\nexpected:\n%s", console.String(), expectedConsole)
	}

	expectedMarkdown := strings.Join([]string{
		"# Checking numbers",
		"",
		"It has a total number of 1 columns and 3 rows.",
		"",
		"* [success]: The number of rows is equal to 3",
		"* [failure]: The actual number of rows 3 is not equal to the expected 2",
		"* [success]: Constraint column > 0 is satisfied",
		"",
	}, "\n")
	if markdown.String() != expectedMarkdown {
		t.Errorf("markdown output:\n%s\nexpected:\n%s", markdown.String(), expectedMarkdown)
	}
}
