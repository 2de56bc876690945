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

// Package reporters renders completed check runs to text sinks. Reporters
// never participate in evaluation; they copy constraint messages verbatim.
package reporters

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/DataBridgeTech/ddqcore"
)

// ConsoleReporter renders a check run as colored console lines: successes
// in green, failures in red, evaluation errors in magenta and informational
// entries in cyan.
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Render(result *ddqcore.CheckRunResult) error {
	header := fmt.Sprintf("Checking %s", result.DisplayName)
	metadata := fmt.Sprintf("It has a total number of %d columns and %d rows.",
		result.NumColumns, result.NumRows)

	if _, err := fmt.Fprintln(r.out, pterm.Bold.Sprint(header)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.out, metadata); err != nil {
		return err
	}

	for _, entry := range result.Results {
		line := "- " + entry.Message
		switch entry.Status {
		case ddqcore.StatusSuccess:
			line = pterm.Green(line)
		case ddqcore.StatusFailure:
			line = pterm.Red(line)
		case ddqcore.StatusError:
			line = pterm.Magenta(line)
		default:
			line = pterm.Cyan(line)
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}
