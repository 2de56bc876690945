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

package reporters

import (
	"fmt"
	"io"

	"github.com/DataBridgeTech/ddqcore"
)

// MarkdownReporter renders a check run as a markdown document:
//
//	# Checking <name>
//
//	It has a total number of <C> columns and <R> rows.
//
//	* [success]: <message>
//	* [failure]: <message>
type MarkdownReporter struct {
	out io.Writer
}

func NewMarkdownReporter(out io.Writer) *MarkdownReporter {
	return &MarkdownReporter{out: out}
}

func (r *MarkdownReporter) Render(result *ddqcore.CheckRunResult) error {
	if _, err := fmt.Fprintf(r.out, "# Checking %s\n\n", result.DisplayName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.out, "It has a total number of %d columns and %d rows.\n\n",
		result.NumColumns, result.NumRows); err != nil {
		return err
	}

	for _, entry := range result.Results {
		if _, err := fmt.Fprintf(r.out, "* [%s]: %s\n", entry.Status, entry.Message); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.out)
	return err
}
