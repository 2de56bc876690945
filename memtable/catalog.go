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
	"sync"

	"github.com/DataBridgeTech/ddqcore"
)

// Catalog is a named registry of in-memory tables implementing
// ddqcore.TableProvider.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*MemTable
}

func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*MemTable)}
}

// Register adds or replaces a table under its name. Tables registered under
// an empty name are rejected.
func (c *Catalog) Register(table *MemTable) error {
	if table.name == "" {
		return fmt.Errorf("cannot register a table without a name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[table.name] = table
	return nil
}

func (c *Catalog) LookupTable(name string) (ddqcore.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return table, nil
}
