/*
 * Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * A copy of the License is located at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * or in the "license" file accompanying this file. This file is distributed
 * on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 */

package ion

import "fmt"

// A Catalog provides access to shared symbol tables by name and version, for
// resolving a local symbol table's imports during decode.
type Catalog interface {
	// FindExact finds a shared symbol table with exactly the given name and
	// version, or nil if the catalog doesn't have one.
	FindExact(name string, version int) SharedSymbolTable
	// FindLatest finds the shared symbol table with the given name and the
	// largest version the catalog holds, or nil if it has none by that name.
	FindLatest(name string) SharedSymbolTable
}

// A basicCatalog wraps an in-memory collection of shared symbol tables.
type basicCatalog struct {
	ssts   map[string]SharedSymbolTable
	latest map[string]SharedSymbolTable
}

// NewCatalog creates a new catalog containing the given shared symbol
// tables.
func NewCatalog(ssts ...SharedSymbolTable) Catalog {
	cat := &basicCatalog{
		ssts:   make(map[string]SharedSymbolTable),
		latest: make(map[string]SharedSymbolTable),
	}
	for _, s := range ssts {
		cat.add(s)
	}
	return cat
}

func (c *basicCatalog) add(s SharedSymbolTable) {
	key := fmt.Sprintf("%v/%v", s.Name(), s.Version())
	c.ssts[key] = s

	cur, ok := c.latest[s.Name()]
	if !ok || s.Version() > cur.Version() {
		c.latest[s.Name()] = s
	}
}

func (c *basicCatalog) FindExact(name string, version int) SharedSymbolTable {
	key := fmt.Sprintf("%v/%v", name, version)
	return c.ssts[key]
}

func (c *basicCatalog) FindLatest(name string) SharedSymbolTable {
	return c.latest[name]
}
