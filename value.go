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
	"math/big"
)

// A Value is a single Ion value: a tagged union over every type the data
// model supports, plus a possibly-empty set of annotations. Values are
// immutable once constructed. The zero Value has NoType and is not a valid
// Ion value (the Encoder and Ion Hash reject it); use Null(NullType) for
// null.null.
//
// Integers are always held as arbitrary-precision (math/big.Int) so that
// Integer and BigInteger are, structurally, the same representation: the
// encoder is the thing that decides whether a given value's magnitude fits
// in the narrow wire form. There's no separate "big" flag to keep in sync.
//
// Containers (List, Sexp, Struct) own their children outright; Value is a
// finite tree; there is no way to construct a cycle.
type Value struct {
	typ         Type
	null        bool
	annotations []string

	boolVal  bool
	intVal   *big.Int
	f64      float64
	f32      bool // true if this FloatType value is the 4-octet (Float32) form
	dec      *Decimal
	ts       Timestamp
	text     string // StringType or SymbolType payload
	noSymbol bool   // SymbolType with unresolved/unknown text (SID-0)
	bytes    []byte // ClobType or BlobType payload
	elems    []Value
	strct    *Struct
}

// Null returns the typed null of type t (e.g. Null(IntType) is Ion's
// null.int). Null(NullType) is null.null.
func Null(t Type) Value {
	return Value{typ: t, null: true}
}

// Bool returns a non-null Ion boolean.
func Bool(b bool) Value {
	return Value{typ: BoolType, boolVal: b}
}

// Int returns a non-null Ion integer with the given value.
func Int(n int64) Value {
	return Value{typ: IntType, intVal: big.NewInt(n)}
}

// BigInt returns a non-null Ion integer with arbitrary-precision magnitude.
// A nil n is treated as null.int.
func BigInt(n *big.Int) Value {
	if n == nil {
		return Null(IntType)
	}
	return Value{typ: IntType, intVal: n}
}

// Float32 returns a non-null Ion float whose wire representation is the
// 4-octet IEEE-754 single-precision form.
func Float32(f float32) Value {
	return Value{typ: FloatType, f64: float64(f), f32: true}
}

// Float64 returns a non-null Ion float whose wire representation is the
// 8-octet IEEE-754 double-precision form.
func Float64(f float64) Value {
	return Value{typ: FloatType, f64: f}
}

// DecimalValue returns a non-null Ion decimal. A nil d is treated as
// null.decimal.
func DecimalValue(d *Decimal) Value {
	if d == nil {
		return Null(DecimalType)
	}
	return Value{typ: DecimalType, dec: d}
}

// TimestampValue returns a non-null Ion timestamp.
func TimestampValue(ts Timestamp) Value {
	return Value{typ: TimestampType, ts: ts}
}

// String returns a non-null Ion string.
func String(s string) Value {
	return Value{typ: StringType, text: s}
}

// Symbol returns a non-null Ion symbol with known text.
func Symbol(s string) Value {
	return Value{typ: SymbolType, text: s}
}

// UnknownSymbol returns a non-null Ion symbol whose text could not be
// resolved: symbol ID 0, or an ID that maps into an import the catalog
// doesn't have. It hashes via Ion Hash's SID-0 rule.
func UnknownSymbol() Value {
	return Value{typ: SymbolType, noSymbol: true}
}

// Clob returns a non-null Ion clob. A nil b is treated as null.clob.
func Clob(b []byte) Value {
	if b == nil {
		return Null(ClobType)
	}
	return Value{typ: ClobType, bytes: b}
}

// Blob returns a non-null Ion blob. A nil b is treated as null.blob.
func Blob(b []byte) Value {
	if b == nil {
		return Null(BlobType)
	}
	return Value{typ: BlobType, bytes: b}
}

// List returns a non-null Ion list. A nil elems is treated as null.list.
func List(elems []Value) Value {
	if elems == nil {
		return Null(ListType)
	}
	return Value{typ: ListType, elems: elems}
}

// Sexp returns a non-null Ion s-expression. A nil elems is treated as
// null.sexp.
func Sexp(elems []Value) Value {
	if elems == nil {
		return Null(SexpType)
	}
	return Value{typ: SexpType, elems: elems}
}

// StructValue returns a non-null Ion struct. A nil s is treated as
// null.struct.
func StructValue(s *Struct) Value {
	if s == nil {
		return Null(StructType)
	}
	return Value{typ: StructType, strct: s}
}

// WithAnnotations returns a copy of v carrying the given annotations, in
// order. Per the data model, wrapping an already-annotated value flattens:
// v.WithAnnotations("a").WithAnnotations("b") is equal to
// v.WithAnnotations("a", "b"), never a nested annotation-of-annotation.
func (v Value) WithAnnotations(names ...string) Value {
	cp := v
	cp.annotations = append(append([]string{}, v.annotations...), names...)
	return cp
}

// Type returns v's Ion type.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is a (possibly typed) null.
func (v Value) IsNull() bool { return v.null }

// Annotations returns v's annotations in wire order, or nil if there are
// none.
func (v Value) Annotations() []string { return v.annotations }

// Bool returns the payload of a BoolType value.
func (v Value) Bool() bool { return v.boolVal }

// BigInt returns the payload of an IntType value as an arbitrary-precision
// integer. The returned value must not be mutated.
func (v Value) BigInt() *big.Int {
	if v.intVal == nil {
		return new(big.Int)
	}
	return v.intVal
}

// Int64 returns the payload of an IntType value along with whether it fits
// losslessly in an int64.
func (v Value) Int64() (int64, bool) {
	if v.intVal == nil || !v.intVal.IsInt64() {
		return 0, false
	}
	return v.intVal.Int64(), true
}

// IntSize reports the narrowest native width that losslessly holds this
// IntType value's magnitude; it's advisory only (the encoder always picks
// the minimum-length wire form regardless).
func (v Value) IntSize() IntSize {
	if v.null || v.intVal == nil {
		return NullInt
	}
	bl := v.intVal.BitLen()
	switch {
	case bl < 32:
		return Int32
	case bl < 64:
		return Int64
	case bl == 64 && v.intVal.Sign() > 0:
		return Uint64
	default:
		return BigInt
	}
}

// IsFloat32 reports whether this FloatType value's wire form is the 4-octet
// single-precision encoding.
func (v Value) IsFloat32() bool { return v.f32 }

// Float64 returns the payload of a FloatType value, widened to float64 if
// necessary. NaN and +/-Inf round-trip.
func (v Value) Float64() float64 { return v.f64 }

// Decimal returns the payload of a DecimalType value.
func (v Value) Decimal() *Decimal { return v.dec }

// Timestamp returns the payload of a TimestampType value.
func (v Value) Timestamp() Timestamp { return v.ts }

// Text returns the payload of a StringType or SymbolType value. For a
// SymbolType value whose text is unknown, ok is false.
func (v Value) Text() (text string, ok bool) {
	if v.typ == SymbolType && v.noSymbol {
		return "", false
	}
	return v.text, true
}

// SymbolIsUnknown reports whether a SymbolType value has unresolved text
// (the SID-0 case).
func (v Value) SymbolIsUnknown() bool { return v.typ == SymbolType && v.noSymbol }

// Bytes returns the payload of a ClobType or BlobType value.
func (v Value) Bytes() []byte { return v.bytes }

// Elements returns the children of a ListType or SexpType value, in wire
// order.
func (v Value) Elements() []Value { return v.elems }

// Struct returns the payload of a StructType value.
func (v Value) Struct() *Struct { return v.strct }
