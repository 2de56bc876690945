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

import "fmt"

// TableProvider resolves a named table from a catalog or session.
type TableProvider interface {
	LookupTable(name string) (Table, error)
}

// ConfigurationError reports that a named table could not be resolved. It is
// fatal and raised before any Check exists, so a misconfigured suite never
// produces a partial run.
type ConfigurationError struct {
	TableName string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("table %q cannot be resolved: %v", e.TableName, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CheckTable looks up the named table and returns an empty Check bound to
// it. Lookup failure is a fail-fast *ConfigurationError.
func CheckTable(provider TableProvider, name string) (Check, error) {
	table, err := provider.LookupTable(name)
	if err != nil {
		return Check{}, &ConfigurationError{TableName: name, Err: err}
	}
	return NewCheck(table), nil
}
