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

// Package ddqcore attaches chains of declarative quality assertions to
// tabular datasets and evaluates them in one pass, producing a structured
// pass/fail report. Datasets are reached through the Table interface;
// backends live in the memtable and sqltable subpackages.
package ddqcore

const (
	Version = "v0.1.0"
)

func GetDdqCoreLibVersion() string {
	return Version
}
