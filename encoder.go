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
	"math"
	"math/big"
	"time"
	"unicode/utf8"
)

// binaryNulls maps each type to its typed-null typedesc byte (L=0x0F).
var binaryNulls = func() []byte {
	ret := make([]byte, StructType+1)
	ret[NullType] = 0x0F
	ret[BoolType] = 0x1F
	ret[IntType] = 0x2F
	ret[FloatType] = 0x4F
	ret[DecimalType] = 0x5F
	ret[TimestampType] = 0x6F
	ret[SymbolType] = 0x7F
	ret[StringType] = 0x8F
	ret[ClobType] = 0x9F
	ret[BlobType] = 0xAF
	ret[ListType] = 0xBF
	ret[SexpType] = 0xCF
	ret[StructType] = 0xDF
	return ret
}()

// ionSymbolTableFieldID and symbolsFieldID are the fixed system-symbol IDs
// for "$ion_symbol_table" and "symbols".
const (
	ionSymbolTableFieldID = 3
	symbolsFieldID        = 7
)

// An Encoder serializes a sequence of top-level values into binary Ion. It
// collects every symbol referenced across all added values up front, so the
// local symbol table directive is emitted once, before any data, rather
// than threaded through value-by-value as the teacher's streaming Writer
// does: Encode's whole-tree input makes the two-pass approach both simpler
// and cheaper than incremental buffering.
type Encoder struct {
	values []Value
}

// NewEncoder creates an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Add appends a top-level value to be encoded.
func (e *Encoder) Add(v Value) {
	e.values = append(e.values, v)
}

// Encode serializes every added value into a single binary Ion stream: a
// binary version marker, an optional local symbol table directive, and
// then each value in the order it was added.
func (e *Encoder) Encode() ([]byte, error) {
	builder := NewSymbolTableBuilder()
	for _, v := range e.values {
		if err := collectSymbols(v, builder); err != nil {
			return nil, err
		}
	}
	lst := builder.Build()

	buf := make([]byte, 0, 64)
	buf = append(buf, bvm...)

	if len(lst.Symbols()) > 0 {
		buf = appendSymbolTableDirective(buf, lst)
	}

	for _, v := range e.values {
		b, err := appendValue(buf, v, lst)
		if err != nil {
			return nil, err
		}
		buf = b
	}

	return buf, nil
}

// collectSymbols interns every symbol this value tree references: its own
// text (if it's a symbol), its annotations, and recursively its struct
// field names and container elements. System symbols already have IDs in
// builder's implicit system import, so Add is a no-op for them.
func collectSymbols(v Value, b SymbolTableBuilder) error {
	for _, a := range v.Annotations() {
		if _, _, err := b.Add(a); err != nil {
			return err
		}
	}

	switch v.Type() {
	case SymbolType:
		if text, ok := v.Text(); ok {
			if _, _, err := b.Add(text); err != nil {
				return err
			}
		}
	case StructType:
		if s := v.Struct(); s != nil {
			for _, f := range s.Fields() {
				if _, _, err := b.Add(f.Name); err != nil {
					return err
				}
				if err := collectSymbols(f.Value, b); err != nil {
					return err
				}
			}
		}
	case ListType, SexpType:
		for _, e := range v.Elements() {
			if err := collectSymbols(e, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendSymbolTableDirective appends a $ion_symbol_table-annotated struct
// declaring lst's locally-added symbols. It always emits the resetting
// form (no "imports" field): an Encoder never imports a shared symbol
// table, since it has no catalog to resolve one against.
func appendSymbolTableDirective(buf []byte, lst SymbolTable) []byte {
	syms := lst.Symbols()

	listPayload := make([]byte, 0, len(syms)*4)
	for _, s := range syms {
		listPayload = appendStringTag(listPayload, s)
	}
	list := appendTag(nil, 0xB0, uint64(len(listPayload)))
	list = append(list, listPayload...)

	fieldPayload := make([]byte, 0, len(list)+2)
	fieldPayload = appendVarUint(fieldPayload, symbolsFieldID)
	fieldPayload = append(fieldPayload, list...)

	strct := appendTag(nil, 0xD0, uint64(len(fieldPayload)))
	strct = append(strct, fieldPayload...)

	annotIDs := make([]byte, 0, 1)
	annotIDs = appendVarUint(annotIDs, ionSymbolTableFieldID)

	wrapperPayload := make([]byte, 0, len(annotIDs)+2+len(strct))
	wrapperPayload = appendVarUint(wrapperPayload, uint64(len(annotIDs)))
	wrapperPayload = append(wrapperPayload, annotIDs...)
	wrapperPayload = append(wrapperPayload, strct...)

	buf = appendTag(buf, 0xE0, uint64(len(wrapperPayload)))
	return append(buf, wrapperPayload...)
}

// appendValue appends v's full wire representation, including any
// annotation wrapper, to buf.
func appendValue(buf []byte, v Value, st SymbolTable) ([]byte, error) {
	inner, err := appendUnannotated(nil, v, st)
	if err != nil {
		return nil, err
	}

	ann := v.Annotations()
	if len(ann) == 0 {
		return append(buf, inner...), nil
	}

	annotPayload := make([]byte, 0, len(ann)*2)
	for _, a := range ann {
		id, ok := st.FindByName(a)
		if !ok {
			return nil, &SymbolNotInternedError{Text: a}
		}
		annotPayload = appendVarUint(annotPayload, id)
	}

	wrapperPayload := make([]byte, 0, len(annotPayload)+2+len(inner))
	wrapperPayload = appendVarUint(wrapperPayload, uint64(len(annotPayload)))
	wrapperPayload = append(wrapperPayload, annotPayload...)
	wrapperPayload = append(wrapperPayload, inner...)

	buf = appendTag(buf, 0xE0, uint64(len(wrapperPayload)))
	return append(buf, wrapperPayload...), nil
}

// appendUnannotated appends v's wire representation without any
// annotation wrapper.
func appendUnannotated(buf []byte, v Value, st SymbolTable) ([]byte, error) {
	if v.IsNull() {
		t := v.Type()
		if int(t) >= len(binaryNulls) {
			t = NullType
		}
		return append(buf, binaryNulls[t]), nil
	}

	switch v.Type() {
	case BoolType:
		b := byte(0x10)
		if v.Bool() {
			b = 0x11
		}
		return append(buf, b), nil

	case IntType:
		return appendIntValue(buf, v.BigInt()), nil

	case FloatType:
		return appendFloatValue(buf, v), nil

	case DecimalType:
		return appendDecimalValue(buf, v.Decimal()), nil

	case TimestampType:
		return appendTimestampValue(buf, v.Timestamp()), nil

	case SymbolType:
		if text, ok := v.Text(); ok && !utf8.ValidString(text) {
			return nil, &InvalidUTF8StringError{}
		}
		return appendSymbolValue(buf, v, st)

	case StringType:
		s, _ := v.Text()
		if !utf8.ValidString(s) {
			return nil, &InvalidUTF8StringError{}
		}
		return appendStringTag(buf, s), nil

	case ClobType:
		return appendLob(buf, 0x90, v.Bytes()), nil

	case BlobType:
		return appendLob(buf, 0xA0, v.Bytes()), nil

	case ListType:
		return appendSequence(buf, 0xB0, v.Elements(), st)

	case SexpType:
		return appendSequence(buf, 0xC0, v.Elements(), st)

	case StructType:
		return appendStructValue(buf, v.Struct(), st)

	default:
		return nil, &UsageError{API: "Encoder.Encode", Msg: "value has no type"}
	}
}

func appendIntValue(buf []byte, n *big.Int) []byte {
	sign := n.Sign()
	if sign == 0 {
		return append(buf, 0x20)
	}
	code := byte(0x20)
	if sign < 0 {
		code = 0x30
	}
	mag := new(big.Int).Abs(n).Bytes()
	buf = appendTag(buf, code, uint64(len(mag)))
	return append(buf, mag...)
}

func appendFloatValue(buf []byte, v Value) []byte {
	f := v.Float64()
	if f == 0 && !math.Signbit(f) {
		return append(buf, 0x40)
	}

	if v.IsFloat32() {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(f)))
		buf = append(buf, 0x44)
		return append(buf, b[:]...)
	}

	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf = append(buf, 0x48)
	return append(buf, b[:]...)
}

func appendDecimalValue(buf []byte, d *Decimal) []byte {
	coef, exp := d.CoEx()

	if coef.Sign() == 0 && exp == 0 && !d.IsNegativeZero() {
		return append(buf, 0x50)
	}

	vlength := varIntLen(int64(exp))
	if d.IsNegativeZero() {
		vlength++
	} else {
		vlength += bigIntLen(coef)
	}

	buf = appendTag(buf, 0x50, vlength)
	buf = appendVarInt(buf, int64(exp))
	if d.IsNegativeZero() {
		return append(buf, 0x80)
	}
	return appendBigInt(buf, coef)
}

func appendTimestampValue(buf []byte, ts Timestamp) []byte {
	_, offset := ts.dateTime.Zone()
	offset /= 60
	utc := ts
	utc.dateTime = ts.dateTime.In(time.UTC)

	vlength := timestampLen(offset, utc)
	buf = appendTag(buf, 0x60, vlength)
	return appendTimestamp(buf, offset, utc)
}

func appendSymbolValue(buf []byte, v Value, st SymbolTable) ([]byte, error) {
	if v.SymbolIsUnknown() {
		// Symbol ID 0: a zero-length UInt payload.
		return appendTag(buf, 0x70, 0), nil
	}

	text, _ := v.Text()
	id, ok := st.FindByName(text)
	if !ok {
		return nil, &SymbolNotInternedError{Text: text}
	}

	vlength := uintLen(id)
	buf = appendTag(buf, 0x70, vlength)
	return appendUint(buf, id), nil
}

func appendStringTag(buf []byte, s string) []byte {
	buf = appendTag(buf, 0x80, uint64(len(s)))
	return append(buf, s...)
}

func appendLob(buf []byte, code byte, b []byte) []byte {
	buf = appendTag(buf, code, uint64(len(b)))
	return append(buf, b...)
}

func appendSequence(buf []byte, code byte, elems []Value, st SymbolTable) ([]byte, error) {
	var payload []byte
	for _, e := range elems {
		p, err := appendValue(payload, e, st)
		if err != nil {
			return nil, err
		}
		payload = p
	}
	buf = appendTag(buf, code, uint64(len(payload)))
	return append(buf, payload...), nil
}

func appendStructValue(buf []byte, s *Struct, st SymbolTable) ([]byte, error) {
	var payload []byte
	for _, f := range s.Fields() {
		id, ok := st.FindByName(f.Name)
		if !ok {
			return nil, &SymbolNotInternedError{Text: f.Name}
		}
		payload = appendVarUint(payload, id)

		p, err := appendValue(payload, f.Value, st)
		if err != nil {
			return nil, err
		}
		payload = p
	}
	buf = appendTag(buf, 0xD0, uint64(len(payload)))
	return append(buf, payload...), nil
}
