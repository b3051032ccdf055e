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

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var bvm = []byte{0xE0, 0x01, 0x00, 0xEA}

// A Decoder parses a sequence of top-level Ion values out of an in-memory
// octet buffer. The whole input is read up front (see §5 of the design:
// decoding always materializes values, never lazy views into the source),
// so construction is the only place an I/O error can surface; every
// subsequent call only walks the buffer already in hand.
type Decoder struct {
	data []byte
	pos  int

	cat    Catalog
	symtab SymbolTable
	log    *zap.Logger
}

// SetLogger attaches a logger the Decoder uses for Debug-level diagnostics
// about symbol table resolution (import fallbacks, append vs. reset). A nil
// logger (the default) makes these diagnostics a no-op: the Decoder itself
// never needs to log to do its job correctly.
func (d *Decoder) SetLogger(log *zap.Logger) { d.log = log }

func (d *Decoder) debug(msg string, fields ...zap.Field) {
	if d.log != nil {
		d.log.Debug(msg, fields...)
	}
}

// NewDecoder creates a Decoder over r, with no shared symbol table catalog.
func NewDecoder(r io.Reader) (*Decoder, error) {
	return NewDecoderCatalog(r, nil)
}

// NewDecoderCatalog creates a Decoder over r, resolving local symbol table
// imports against cat.
func NewDecoderCatalog(r io.Reader, cat Catalog) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Err: wrapf(err, "reading Ion binary stream")}
	}
	return NewDecoderBytesCatalog(data, cat), nil
}

// NewDecoderBytes creates a Decoder directly over an in-memory buffer, with
// no shared symbol table catalog.
func NewDecoderBytes(data []byte) *Decoder {
	return NewDecoderBytesCatalog(data, nil)
}

// NewDecoderBytesCatalog creates a Decoder directly over an in-memory
// buffer, resolving local symbol table imports against cat.
func NewDecoderBytesCatalog(data []byte, cat Catalog) *Decoder {
	return &Decoder{
		data:   data,
		cat:    cat,
		symtab: NewLocalSymbolTable(nil, nil),
	}
}

// SymbolTable returns the local symbol table currently in effect. It
// changes as ConsumeValue/ConsumeAll cross $ion_symbol_table directives.
func (d *Decoder) SymbolTable() SymbolTable { return d.symtab }

// ConsumeValue returns the next top-level value, advancing past it. It
// returns io.EOF (wrapping nothing) once the buffer is exhausted. Binary
// version markers and $ion_symbol_table directives are consumed
// transparently and never returned as values.
func (d *Decoder) ConsumeValue() (Value, error) {
	for {
		if d.pos >= len(d.data) {
			return Value{}, io.EOF
		}

		if d.pos == 0 || d.looksLikeBVM() {
			consumed, err := d.consumeBVM()
			if err != nil {
				return Value{}, err
			}
			if consumed {
				continue
			}
		}

		v, isNop, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		if isNop {
			continue
		}

		if isSymbolTableDirective(v) {
			if err := d.installSymbolTable(v); err != nil {
				return Value{}, err
			}
			continue
		}

		return v, nil
	}
}

// ConsumeAll decodes every top-level value in the stream.
func (d *Decoder) ConsumeAll() ([]Value, error) {
	var out []Value
	for {
		v, err := d.ConsumeValue()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (d *Decoder) looksLikeBVM() bool {
	return d.pos+4 <= len(d.data) &&
		d.data[d.pos] == bvm[0] && d.data[d.pos+1] == bvm[1] &&
		d.data[d.pos+2] == bvm[2] && d.data[d.pos+3] == bvm[3]
}

// consumeBVM consumes a binary version marker if one is present at the
// cursor. At offset zero, a BVM is mandatory. A non-BVM byte at offset zero
// is an error; elsewhere it just means there's no marker here; the caller
// falls through to ordinary value decoding.
func (d *Decoder) consumeBVM() (bool, error) {
	if d.pos+4 > len(d.data) || d.data[d.pos] != 0xE0 {
		if d.pos == 0 {
			return false, &BinaryVersionMarkerNotFoundError{Offset: 0}
		}
		return false, nil
	}

	major, minor, end := d.data[d.pos+1], d.data[d.pos+2], d.data[d.pos+3]
	if end != 0xEA {
		return false, &BinaryVersionMarkerNotFoundError{Offset: uint64(d.pos)}
	}
	if major != 1 || minor != 0 {
		return false, &UnsupportedVersionError{Major: int(major), Minor: int(minor), Offset: uint64(d.pos)}
	}

	d.pos += 4
	d.symtab = NewLocalSymbolTable(nil, nil)
	return true, nil
}

func isSymbolTableDirective(v Value) bool {
	if v.Type() != StructType {
		return false
	}
	ann := v.Annotations()
	return len(ann) > 0 && ann[0] == "$ion_symbol_table"
}

// installSymbolTable interprets a decoded $ion_symbol_table directive
// struct and replaces the decoder's active local symbol table, per §4.2:
// an "imports" field naming the special symbol id 3 ($ion_symbol_table)
// appends to the current table; any other imports list (or its absence)
// resets to system symbols plus the named imports.
func (d *Decoder) installSymbolTable(v Value) error {
	strct := v.Struct()

	var imports []SharedSymbolTable
	var symbols []string
	sawImports, sawSymbols := false, false

	for _, f := range strct.Fields() {
		switch f.Name {
		case "imports":
			if sawImports {
				return &DuplicateSymbolTableFieldError{Field: "imports"}
			}
			sawImports = true

			imp, err := d.readImportsField(f.Value)
			if err != nil {
				return err
			}
			imports = imp

		case "symbols":
			if sawSymbols {
				return &DuplicateSymbolTableFieldError{Field: "symbols"}
			}
			sawSymbols = true

			syms, err := readSymbolsField(f.Value)
			if err != nil {
				return err
			}
			symbols = syms
		}
	}

	d.symtab = NewLocalSymbolTable(imports, symbols)
	return nil
}

// readImportsField handles both forms of the "imports" field: the special
// symbol $ion_symbol_table, meaning "append to the current table", and an
// ordinary list of {name, version, max_id} import structs.
func (d *Decoder) readImportsField(v Value) ([]SharedSymbolTable, error) {
	if v.Type() == SymbolType {
		text, ok := v.Text()
		if ok && text == "$ion_symbol_table" {
			if d.symtab == nil {
				return nil, nil
			}
			d.debug("local symbol table appending to current table")
			lsst := NewSharedSymbolTable("", 0, d.symtab.Symbols())
			return append(d.symtab.Imports(), lsst), nil
		}
		return nil, nil
	}

	if v.Type() != ListType || v.IsNull() {
		return nil, nil
	}
	d.debug("local symbol table resetting to system symbols plus declared imports")

	var imps []SharedSymbolTable
	for _, e := range v.Elements() {
		imp, err := d.readImportEntry(e)
		if err != nil {
			return nil, err
		}
		if imp != nil {
			imps = append(imps, imp)
		}
	}
	return imps, nil
}

func (d *Decoder) readImportEntry(v Value) (SharedSymbolTable, error) {
	if v.Type() != StructType || v.IsNull() {
		return nil, nil
	}

	name := ""
	version := -1
	maxID := int64(-1)

	for _, f := range v.Struct().Fields() {
		switch f.Name {
		case "name":
			if f.Value.Type() == StringType {
				if t, ok := f.Value.Text(); ok {
					name = t
				}
			}
		case "version":
			if f.Value.Type() == IntType && !f.Value.IsNull() {
				if n, ok := f.Value.Int64(); ok {
					version = int(n)
				}
			}
		case "max_id":
			if f.Value.Type() == IntType {
				if f.Value.IsNull() {
					return nil, &UnknownLocalTableImportError{Name: name, Version: version}
				}
				if n, ok := f.Value.Int64(); ok {
					maxID = n
				}
			}
		}
	}

	if name == "" || name == "$ion" {
		return nil, nil
	}
	if version < 1 {
		version = 1
	}

	var imp SharedSymbolTable
	if d.cat != nil {
		imp = d.cat.FindExact(name, version)
		if imp == nil {
			imp = d.cat.FindLatest(name)
			if imp != nil {
				d.debug("shared symbol table import fell back to latest version",
					zap.String("name", name), zap.Int("requested_version", version), zap.Int("resolved_version", imp.Version()))
			}
		}
	}

	if maxID < 0 {
		if imp == nil || version != imp.Version() {
			return nil, &UnknownLocalTableImportError{Name: name, Version: version}
		}
		maxID = int64(imp.MaxID())
	}

	if imp == nil {
		return &bogusSST{name: name, version: version, maxID: uint64(maxID)}, nil
	}
	return imp.Adjust(uint64(maxID)), nil
}

func readSymbolsField(v Value) ([]string, error) {
	if v.Type() != ListType || v.IsNull() {
		return nil, nil
	}
	syms := make([]string, 0, len(v.Elements()))
	for _, e := range v.Elements() {
		if e.Type() == StringType {
			if t, ok := e.Text(); ok {
				syms = append(syms, t)
				continue
			}
		}
		syms = append(syms, "")
	}
	return syms, nil
}

// decodeValue decodes one value (or nop pad) at the cursor. isNop reports a
// nop pad (or a struct/list/sexp nop-pad child): it carries no value and
// must not be surfaced to the caller.
func (d *Decoder) decodeValue() (v Value, isNop bool, err error) {
	if d.pos >= len(d.data) {
		return Value{}, false, io.ErrUnexpectedEOF
	}

	tagStart := d.pos
	b := d.data[d.pos]
	T := b >> 4
	L := b & 0x0F
	d.pos++

	switch T {
	case 0x0: // null.null / nop pad
		if L == 0x0F {
			return Null(NullType), false, nil
		}
		length, err := d.consumeLength(L)
		if err != nil {
			return Value{}, false, err
		}
		if err := d.skip(length, tagStart); err != nil {
			return Value{}, false, err
		}
		return Value{}, true, nil

	case 0x1: // bool
		switch L {
		case 0:
			return Bool(false), false, nil
		case 1:
			return Bool(true), false, nil
		case 0x0F:
			return Null(BoolType), false, nil
		default:
			return Value{}, false, &InvalidBoolLengthError{Length: L, Offset: uint64(tagStart)}
		}

	case 0x0E: // annotation wrapper
		return d.decodeAnnotated(tagStart)
	}

	isNull := L == 0x0F
	sorted := false
	var length uint64

	switch {
	case T == 0x0D && L == 1:
		sorted = true
		length, err = d.readVarUintLen()
		if err == nil && length == 0 {
			err = &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
		}
	case isNull:
		length = 0
	default:
		length, err = d.consumeLength(L)
	}
	if err != nil {
		return Value{}, false, err
	}

	if err := d.checkRemaining(length, tagStart); err != nil {
		return Value{}, false, err
	}

	switch T {
	case 0x2:
		return d.decodeInt(length, false, isNull, tagStart)
	case 0x3:
		return d.decodeInt(length, true, isNull, tagStart)
	case 0x4:
		return d.decodeFloat(length, isNull, tagStart)
	case 0x5:
		return d.decodeDecimalValue(length, isNull)
	case 0x6:
		return d.decodeTimestampValue(length, isNull, tagStart)
	case 0x7:
		return d.decodeSymbol(length, isNull, tagStart)
	case 0x8:
		return d.decodeString(length, isNull, tagStart)
	case 0x9:
		return d.decodeLob(ClobType, length, isNull)
	case 0xA:
		return d.decodeLob(BlobType, length, isNull)
	case 0xB:
		return d.decodeSequence(ListType, length, isNull)
	case 0xC:
		return d.decodeSequence(SexpType, length, isNull)
	case 0xD:
		return d.decodeStruct(length, isNull, sorted)
	default:
		return Value{}, false, &InvalidReservedTypeError{Byte: b, Offset: uint64(tagStart)}
	}
}

func (d *Decoder) consumeLength(L byte) (uint64, error) {
	if L == 0x0E {
		return d.readVarUintLen()
	}
	return uint64(L), nil
}

func (d *Decoder) readVarUintLen() (uint64, error) {
	v, n, err := decodeVarUint(d.data, d.pos)
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) readVarIntLen() (int64, error) {
	v, n, err := decodeVarInt(d.data, d.pos)
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) checkRemaining(length uint64, tagStart int) error {
	if uint64(d.pos)+length > uint64(len(d.data)) {
		return &TruncatedError{Offset: uint64(tagStart), Want: length, HaveMax: uint64(len(d.data) - d.pos)}
	}
	return nil
}

func (d *Decoder) skip(length uint64, tagStart int) error {
	if err := d.checkRemaining(length, tagStart); err != nil {
		return err
	}
	d.pos += int(length)
	return nil
}

func (d *Decoder) takePayload(length uint64) []byte {
	b := d.data[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return b
}

func (d *Decoder) decodeAnnotated(tagStart int) (Value, bool, error) {
	b := d.data[tagStart]
	L := b & 0x0F

	switch L {
	case 0x0:
		// Length zero only occurs as part of a BVM. ConsumeValue intercepts
		// a well-formed top-level BVM before calling decodeValue, so an
		// 0xE0 that reaches here (inside a container, or not followed by
		// 01 00 EA) is malformed.
		return Value{}, false, &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
	case 0x0F:
		return Value{}, false, &InvalidReservedTypeError{Byte: b, Offset: uint64(tagStart)}
	}

	length, err := d.consumeLength(L)
	if err != nil {
		return Value{}, false, err
	}
	if err := d.checkRemaining(length, tagStart); err != nil {
		return Value{}, false, err
	}
	end := d.pos + int(length)

	annotLen, err := d.readVarUintLen()
	if err != nil {
		return Value{}, false, err
	}
	if annotLen == 0 {
		return Value{}, false, &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
	}

	annotEnd := d.pos + int(annotLen)
	var names []string
	for d.pos < annotEnd {
		id, n, err := decodeVarUint(d.data, d.pos)
		if err != nil {
			return Value{}, false, err
		}
		d.pos += n

		text, ok := d.symtab.FindByID(id)
		if !ok && id != 0 {
			return Value{}, false, &InvalidSymbolIDError{ID: id, Offset: uint64(d.pos)}
		}
		names = append(names, text)
	}

	if d.pos >= end {
		return Value{}, false, &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
	}

	inner, isNop, err := d.decodeValue()
	if err != nil {
		return Value{}, false, err
	}
	if isNop {
		return Value{}, false, &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
	}
	if d.pos != end {
		return Value{}, false, &InvalidAnnotationStructureError{Offset: uint64(tagStart)}
	}

	return inner.WithAnnotations(names...), false, nil
}

func (d *Decoder) decodeInt(length uint64, negative, isNull bool, tagStart int) (Value, bool, error) {
	if isNull {
		return Null(IntType), false, nil
	}
	payload := d.takePayload(length)
	n := new(big.Int).SetBytes(payload)
	if negative {
		if n.Sign() == 0 {
			return Value{}, false, &NegativeIntegerZeroError{Offset: uint64(tagStart)}
		}
		n.Neg(n)
	}
	return BigInt(n), false, nil
}

func (d *Decoder) decodeFloat(length uint64, isNull bool, tagStart int) (Value, bool, error) {
	if isNull {
		return Null(FloatType), false, nil
	}
	payload := d.takePayload(length)
	switch len(payload) {
	case 0:
		return Float64(0), false, nil
	case 4:
		bits := binary.BigEndian.Uint32(payload)
		return Float32(math.Float32frombits(bits)), false, nil
	case 8:
		bits := binary.BigEndian.Uint64(payload)
		return Float64(math.Float64frombits(bits)), false, nil
	default:
		return Value{}, false, &TruncatedError{Offset: uint64(tagStart), Want: 4, HaveMax: length}
	}
}

func (d *Decoder) decodeDecimalValue(length uint64, isNull bool) (Value, bool, error) {
	if isNull {
		return Null(DecimalType), false, nil
	}
	end := d.pos + int(length)

	exp := int64(0)
	if d.pos < end {
		v, err := d.readVarIntLen()
		if err != nil {
			return Value{}, false, err
		}
		exp = v
	}

	coef := new(big.Int)
	negZero := false
	if d.pos < end {
		payload := d.data[d.pos:end]
		negZero = len(payload) > 0 && payload[0] == 0x80
		coef = decodeSignMagnitude(payload)
		d.pos = end
	}

	return DecimalValue(NewDecimal(coef, int32(exp), negZero)), false, nil
}

func (d *Decoder) decodeTimestampValue(length uint64, isNull bool, tagStart int) (Value, bool, error) {
	if isNull {
		return Null(TimestampType), false, nil
	}
	end := d.pos + int(length)

	offsetStart := d.pos
	offset, err := d.readVarIntLen()
	if err != nil {
		return Value{}, false, err
	}
	unknownOffset := length > 0 && d.pos-offsetStart == 1 && d.data[offsetStart] == 0xC0

	fields := []int{1, 1, 1, 0, 0, 0}
	precision := TimestampNoPrecision
	for i := 0; d.pos < end && i < 6 && precision < TimestampPrecisionSecond; i++ {
		v, n, err := decodeVarUint(d.data, d.pos)
		if err != nil {
			return Value{}, false, err
		}
		d.pos += n
		fields[i] = int(v)

		if i == 3 {
			if d.pos >= end {
				return Value{}, false, &InvalidTimestampError{Offset: uint64(tagStart), Msg: "hour present without minute"}
			}
		} else {
			precision++
		}
	}

	nsecs := 0
	fracPrecision := uint8(0)
	overflow := false
	if d.pos < end {
		fracPayload := d.data[d.pos:end]
		fracExp, n, err := decodeVarInt(fracPayload, 0)
		if err != nil {
			return Value{}, false, err
		}
		// ShiftL(9) below adds 9 to the exponent, taking 9 off the Decimal's
		// scale (the negated exponent); keep the exponent at least 9 away from
		// either int32 bound so neither the negation nor the shift can leave
		// int32, instead of letting Decimal panic on it.
		if fracExp < math.MinInt32+9 || fracExp > math.MaxInt32-9 {
			return Value{}, false, &InvalidTimestampError{Offset: uint64(tagStart), Msg: "fractional seconds exponent out of range"}
		}
		coefPayload := fracPayload[n:]
		coef := decodeSignMagnitude(coefPayload)
		frac := NewDecimal(coef, int32(fracExp), false)
		d.pos = end

		shifted := frac.ShiftL(9)
		truncated, err := shifted.trunc()
		if err != nil || truncated < 0 || truncated > 999999999 {
			return Value{}, false, &InvalidTimestampError{Offset: uint64(tagStart), Msg: "invalid fractional seconds"}
		}
		rounded, err := shifted.round()
		if err != nil {
			return Value{}, false, &InvalidTimestampError{Offset: uint64(tagStart), Msg: "invalid fractional seconds"}
		}

		if fracExp < 0 && rounded == 0 {
			fracPrecision = 0
		} else {
			fracPrecision = uint8(-fracExp)
		}
		if rounded == 1000000000 {
			overflow = true
		} else {
			nsecs = int(rounded)
		}
		if fracPrecision > 0 {
			precision = TimestampPrecisionNanosecond
		}
	}

	date := time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], nsecs, time.UTC)
	if fields[0] != date.Year() || time.Month(fields[1]) != date.Month() || fields[2] != date.Day() {
		return Value{}, false, &InvalidTimestampError{Offset: uint64(tagStart), Msg: "impossible calendar date"}
	}

	if precision <= TimestampPrecisionDay {
		return TimestampValue(NewDateTimestamp(date, precision)), false, nil
	}

	if overflow {
		date = date.Add(time.Second)
	}

	var ts Timestamp
	if unknownOffset {
		ts = NewTimestampWithFractionalSeconds(date, precision, TimezoneUnspecified, fracPrecision)
	} else if offset == 0 {
		ts = NewTimestampWithFractionalSeconds(date, precision, TimezoneUTC, fracPrecision)
	} else {
		date = date.In(time.FixedZone("fixed", int(offset)*60))
		ts = NewTimestampWithFractionalSeconds(date, precision, TimezoneLocal, fracPrecision)
	}

	return TimestampValue(ts), false, nil
}

func (d *Decoder) decodeSymbol(length uint64, isNull bool, tagStart int) (Value, bool, error) {
	if isNull {
		return Null(SymbolType), false, nil
	}
	if length > 8 {
		return Value{}, false, &SymbolIDTooLargeError{Offset: uint64(tagStart)}
	}
	payload := d.takePayload(length)
	id := decodeUint(payload)

	if id == 0 {
		return UnknownSymbol(), false, nil
	}
	text, ok := d.symtab.FindByID(id)
	if !ok {
		if id <= d.symtab.MaxID() {
			// Inside the table's ID space but without text, e.g. a slot
			// reserved for an import the catalog doesn't have.
			return UnknownSymbol(), false, nil
		}
		return Value{}, false, &InvalidSymbolIDError{ID: id, Offset: uint64(tagStart)}
	}
	return Symbol(text), false, nil
}

func (d *Decoder) decodeString(length uint64, isNull bool, tagStart int) (Value, bool, error) {
	if isNull {
		return Null(StringType), false, nil
	}
	payload := d.takePayload(length)
	if !utf8.Valid(payload) {
		return Value{}, false, &InvalidUTF8Error{Offset: uint64(tagStart)}
	}
	return String(string(payload)), false, nil
}

func (d *Decoder) decodeLob(t Type, length uint64, isNull bool) (Value, bool, error) {
	if isNull {
		return Null(t), false, nil
	}
	payload := d.takePayload(length)
	b := append([]byte{}, payload...)
	if t == ClobType {
		return Clob(b), false, nil
	}
	return Blob(b), false, nil
}

func (d *Decoder) decodeSequence(t Type, length uint64, isNull bool) (Value, bool, error) {
	if isNull {
		return Null(t), false, nil
	}

	end := d.pos + int(length)
	var elems []Value
	for d.pos < end {
		v, isNop, err := d.decodeValue()
		if err != nil {
			return Value{}, false, err
		}
		if isNop {
			continue
		}
		elems = append(elems, v)
	}
	if elems == nil {
		elems = []Value{}
	}
	if t == ListType {
		return List(elems), false, nil
	}
	return Sexp(elems), false, nil
}

func (d *Decoder) decodeStruct(length uint64, isNull, sorted bool) (Value, bool, error) {
	if isNull {
		return Null(StructType), false, nil
	}

	end := d.pos + int(length)
	var fields []Field
	lastID := int64(-1)

	for d.pos < end {
		id, n, err := decodeVarUint(d.data, d.pos)
		if err != nil {
			return Value{}, false, err
		}
		d.pos += n

		if sorted {
			if int64(id) <= lastID {
				return Value{}, false, &StructFieldsNotSortedError{Offset: uint64(d.pos)}
			}
			lastID = int64(id)
		}

		name, ok := d.symtab.FindByID(id)
		if !ok && id != 0 {
			return Value{}, false, &InvalidSymbolIDError{ID: id, Offset: uint64(d.pos)}
		}

		v, isNop, err := d.decodeValue()
		if err != nil {
			return Value{}, false, err
		}
		if isNop {
			continue
		}

		fields = append(fields, Field{Name: name, Value: v})
	}

	return StructValue(NewStruct(fields...)), false, nil
}
