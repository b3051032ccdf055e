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

// A SymbolTable maps binary-representation symbol IDs to text-representation
// strings and vice versa. A local symbol table's ID space is the
// concatenation of its imports' ID spaces (in import order) followed by its
// own locally-declared symbols.
type SymbolTable interface {
	// Imports returns the symbol tables this table imports, not including
	// the implicit system import.
	Imports() []SharedSymbolTable
	// Symbols returns the symbols this symbol table declares locally.
	Symbols() []string
	// MaxID returns the maximum ID this symbol table defines.
	MaxID() uint64
	// FindByName finds the ID of a symbol by its name. When a name occurs
	// in more than one place, the lowest ID wins.
	FindByName(symbol string) (uint64, bool)
	// FindByID finds the name of a symbol given its ID.
	FindByID(id uint64) (string, bool)
}

// A SharedSymbolTable is distributed out-of-band (e.g. via a Catalog) and
// referenced from a local SymbolTable's imports list to save space on the
// wire.
type SharedSymbolTable interface {
	SymbolTable

	// Name returns the name of this shared symbol table.
	Name() string
	// Version returns the version of this shared symbol table.
	Version() int
	// Adjust returns a new shared symbol table limited or extended to the
	// given max ID, per the Ion spec's rules for resolving an import whose
	// max_id disagrees with the catalog's copy.
	Adjust(maxID uint64) SharedSymbolTable
}

type sst struct {
	name    string
	version int
	symbols []string
	index   map[string]uint64
	maxID   uint64
}

// NewSharedSymbolTable creates a new shared symbol table.
func NewSharedSymbolTable(name string, version int, symbols []string) SharedSymbolTable {
	syms := make([]string, len(symbols))
	copy(syms, symbols)

	return &sst{
		name:    name,
		version: version,
		symbols: syms,
		index:   buildIndex(syms, 1),
		maxID:   uint64(len(syms)),
	}
}

func (s *sst) Name() string                 { return s.name }
func (s *sst) Version() int                 { return s.version }
func (s *sst) Imports() []SharedSymbolTable { return nil }

func (s *sst) Symbols() []string {
	syms := make([]string, s.maxID)
	copy(syms, s.symbols)
	return syms
}

func (s *sst) MaxID() uint64 { return s.maxID }

func (s *sst) Adjust(maxID uint64) SharedSymbolTable {
	if maxID == s.maxID {
		return s
	}
	if maxID > uint64(len(s.symbols)) {
		return &sst{name: s.name, version: s.version, symbols: s.symbols, index: s.index, maxID: maxID}
	}
	symbols := s.symbols[:maxID]
	return &sst{name: s.name, version: s.version, symbols: symbols, index: buildIndex(symbols, 1), maxID: maxID}
}

func (s *sst) FindByName(sym string) (uint64, bool) {
	id, ok := s.index[sym]
	return id, ok
}

func (s *sst) FindByID(id uint64) (string, bool) {
	if id <= 0 || id > uint64(len(s.symbols)) {
		return "", false
	}
	return s.symbols[id-1], true
}

// V1SystemSymbolTable is the implicit system symbol table for Ion 1.0,
// always present as import zero of every local symbol table.
var V1SystemSymbolTable = NewSharedSymbolTable("$ion", 1, []string{
	"$ion",
	"$ion_1_0",
	"$ion_symbol_table",
	"name",
	"version",
	"imports",
	"symbols",
	"max_id",
	"$ion_shared_symbol_table",
})

// A bogusSST stands in for a shared symbol table import the catalog can't
// resolve. It reserves its slice of the symbol ID space (sized by the
// import's max_id) so later imports still land on the right IDs; every ID
// within its range resolves to unknown text (the Ion Hash SID-0 case).
type bogusSST struct {
	name    string
	version int
	maxID   uint64
}

var _ SharedSymbolTable = (*bogusSST)(nil)

func (s *bogusSST) Name() string                 { return s.name }
func (s *bogusSST) Version() int                 { return s.version }
func (s *bogusSST) Imports() []SharedSymbolTable { return nil }
func (s *bogusSST) Symbols() []string            { return nil }
func (s *bogusSST) MaxID() uint64                { return s.maxID }

func (s *bogusSST) Adjust(maxID uint64) SharedSymbolTable {
	return &bogusSST{name: s.name, version: s.version, maxID: maxID}
}

func (s *bogusSST) FindByName(sym string) (uint64, bool) { return 0, false }
func (s *bogusSST) FindByID(id uint64) (string, bool)    { return "", false }

// A lst is a local symbol table, transmitted in-band with the binary data
// it describes. Its ID space is the concatenation of its imports (including
// the implicit system import prepended by processImports) followed by its
// own locally-declared symbols.
type lst struct {
	imports     []SharedSymbolTable
	offsets     []uint64
	maxImportID uint64

	symbols []string
	index   map[string]uint64
}

// NewLocalSymbolTable creates a new local symbol table.
func NewLocalSymbolTable(imports []SharedSymbolTable, symbols []string) SymbolTable {
	imps, offsets, maxID := processImports(imports)
	syms := make([]string, len(symbols))
	copy(syms, symbols)

	return &lst{
		imports:     imps,
		offsets:     offsets,
		maxImportID: maxID,
		symbols:     syms,
		index:       buildIndex(syms, maxID+1),
	}
}

func (t *lst) Imports() []SharedSymbolTable {
	imps := make([]SharedSymbolTable, len(t.imports))
	copy(imps, t.imports)
	return imps
}

func (t *lst) Symbols() []string {
	syms := make([]string, len(t.symbols))
	copy(syms, t.symbols)
	return syms
}

func (t *lst) MaxID() uint64 { return t.maxImportID + uint64(len(t.symbols)) }

func (t *lst) FindByName(s string) (uint64, bool) {
	for i, imp := range t.imports {
		if id, ok := imp.FindByName(s); ok {
			return t.offsets[i] + id, true
		}
	}
	if id, ok := t.index[s]; ok {
		return id, true
	}
	return 0, false
}

func (t *lst) FindByID(id uint64) (string, bool) {
	if id <= 0 {
		return "", false
	}
	if id <= t.maxImportID {
		return t.findByIDInImports(id)
	}
	idx := id - t.maxImportID - 1
	if idx < uint64(len(t.symbols)) {
		return t.symbols[idx], true
	}
	return "", false
}

func (t *lst) findByIDInImports(id uint64) (string, bool) {
	i := 1
	off := uint64(0)
	for ; i < len(t.imports); i++ {
		if id <= t.offsets[i] {
			break
		}
		off = t.offsets[i]
	}
	return t.imports[i-1].FindByID(id - off)
}

// A SymbolTableBuilder helps you iteratively build a local symbol table,
// assigning each newly-seen name the next available local ID.
type SymbolTableBuilder interface {
	SymbolTable

	// Add interns symbol into the table, returning its ID and whether it
	// was newly added (false if it already had an ID, local or imported).
	// It fails with a *SymbolTableOverflowError if the next ID would reach
	// maxLocalSymbolID.
	Add(symbol string) (uint64, bool, error)
	// Build creates an immutable local symbol table snapshot.
	Build() SymbolTable
}

type symbolTableBuilder struct {
	lst
}

// NewSymbolTableBuilder creates a new symbol table builder with the given
// shared-table imports.
func NewSymbolTableBuilder(imports ...SharedSymbolTable) SymbolTableBuilder {
	imps, offsets, maxID := processImports(imports)
	return &symbolTableBuilder{
		lst{
			imports:     imps,
			offsets:     offsets,
			maxImportID: maxID,
			index:       make(map[string]uint64),
		},
	}
}

// maxLocalSymbolID is the largest local symbol ID this implementation will
// assign. spec.md's Encoder contract requires SymbolTableOverflow once a
// local table would need an ID at or past 2^31.
const maxLocalSymbolID = 1 << 31

func (b *symbolTableBuilder) Add(symbol string) (uint64, bool, error) {
	if id, ok := b.FindByName(symbol); ok {
		return id, false, nil
	}
	id := b.maxImportID + uint64(len(b.symbols)) + 1
	if id >= maxLocalSymbolID {
		return 0, false, &SymbolTableOverflowError{Count: id}
	}
	b.symbols = append(b.symbols, symbol)
	b.index[symbol] = id
	return id, true, nil
}

func (b *symbolTableBuilder) Build() SymbolTable {
	symbols := append([]string{}, b.symbols...)
	index := make(map[string]uint64, len(b.index))
	for s, i := range b.index {
		index[s] = i
	}
	return &lst{
		imports:     b.imports,
		offsets:     b.offsets,
		maxImportID: b.maxImportID,
		symbols:     symbols,
		index:       index,
	}
}

// processImports prepends the implicit system import (if not already
// present) and computes each import's offset into the combined ID space,
// along with the overall max imported ID.
func processImports(imports []SharedSymbolTable) ([]SharedSymbolTable, []uint64, uint64) {
	var imps []SharedSymbolTable
	if len(imports) > 0 && imports[0].Name() == "$ion" {
		imps = make([]SharedSymbolTable, len(imports))
		copy(imps, imports)
	} else {
		imps = make([]SharedSymbolTable, len(imports)+1)
		imps[0] = V1SystemSymbolTable
		copy(imps[1:], imports)
	}

	maxID := uint64(0)
	offsets := make([]uint64, len(imps))
	for i, imp := range imps {
		offsets[i] = maxID
		maxID += imp.MaxID()
	}

	return imps, offsets, maxID
}

// buildIndex builds a name->ID index, skipping empty symbol table slots
// (from $0-reserving tricks) and never letting a later duplicate name
// shadow an earlier, lower ID.
func buildIndex(symbols []string, offset uint64) map[string]uint64 {
	index := make(map[string]uint64, len(symbols))
	for i, sym := range symbols {
		if sym != "" {
			if _, ok := index[sym]; !ok {
				index[sym] = offset + uint64(i)
			}
		}
	}
	return index
}
