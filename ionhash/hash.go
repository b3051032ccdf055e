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

package ionhash

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"go.uber.org/multierr"
	"golang.org/x/exp/slices"

	"github.com/tidalgo/ion"
)

// Escape octets: a framed representation that happens to contain one of
// these gets 0x0C spliced in front of it, so the begin/end markers stay
// unambiguous no matter what a child digest or a string payload contains.
const (
	begin  = 0x0B
	escape = 0x0C
	end    = 0x0E
)

// Type nibbles, matching the binary codec's typedesc type codes so the two
// encodings stay easy to cross-reference.
const (
	tNull      = 0x0
	tBool      = 0x1
	tInt       = 0x2
	tFloat     = 0x4
	tDecimal   = 0x5
	tTimestamp = 0x6
	tSymbol    = 0x7
	tString    = 0x8
	tClob      = 0x9
	tBlob      = 0xA
	tList      = 0xB
	tSexp      = 0xC
	tStruct    = 0xD
	tAnnot     = 0xE
)

const qNull = 0xF

// Hash computes the Ion Hash digest of a single value using newHash as the
// underlying digest algorithm.
func Hash(v ion.Value, newHash DigestFactory) ([]byte, error) {
	return hashAnnotated(v, newHash)
}

// HashAll hashes every value independently, returning one digest per value
// (nil at any index that failed) and every failure combined via multierr,
// so a caller auditing a batch sees every bad value instead of just the
// first.
func HashAll(values []ion.Value, newHash DigestFactory) ([][]byte, error) {
	hashes := make([][]byte, len(values))
	var errs error
	for i, v := range values {
		h, err := Hash(v, newHash)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("value %d: %w", i, err))
			continue
		}
		hashes[i] = h
	}
	return hashes, errs
}

func hashAnnotated(v ion.Value, newHash DigestFactory) ([]byte, error) {
	ann := v.Annotations()
	if len(ann) == 0 {
		return hashUnannotated(v, newHash)
	}

	var rep []byte
	for _, name := range ann {
		h := frame(newHash, tSymbol, 0, []byte(name))
		rep = append(rep, h...)
	}

	inner, err := hashUnannotated(v, newHash)
	if err != nil {
		return nil, err
	}
	rep = append(rep, inner...)

	return frame(newHash, tAnnot, 0, rep), nil
}

func hashUnannotated(v ion.Value, newHash DigestFactory) ([]byte, error) {
	if v.IsNull() {
		return frame(newHash, typeCode(v.Type()), qNull, nil), nil
	}

	switch v.Type() {
	case ion.BoolType:
		q := byte(0)
		if v.Bool() {
			q = 1
		}
		return frame(newHash, tBool, q, nil), nil

	case ion.IntType:
		mag, neg := intRepresentation(v.BigInt())
		q := byte(0)
		if neg {
			q = 1
		}
		return frame(newHash, tInt, q, mag), nil

	case ion.FloatType:
		return frame(newHash, tFloat, 0, floatRepresentation(v.Float64(), v.IsFloat32())), nil

	case ion.DecimalType:
		coef, exp := v.Decimal().CoEx()
		return frame(newHash, tDecimal, 0, decimalRepresentation(coef, exp, v.Decimal().IsNegativeZero())), nil

	case ion.TimestampType:
		return frame(newHash, tTimestamp, 0, timestampRepresentation(v.Timestamp())), nil

	case ion.SymbolType:
		if v.SymbolIsUnknown() {
			// SID-0 rule: empty representation, qualifier 1 (distinct from
			// null.symbol's qNull and from a known symbol's 0).
			return frame(newHash, tSymbol, 1, nil), nil
		}
		text, _ := v.Text()
		return frame(newHash, tSymbol, 0, []byte(text)), nil

	case ion.StringType:
		text, _ := v.Text()
		return frame(newHash, tString, 0, []byte(text)), nil

	case ion.ClobType:
		return frame(newHash, tClob, 0, v.Bytes()), nil

	case ion.BlobType:
		return frame(newHash, tBlob, 0, v.Bytes()), nil

	case ion.ListType:
		rep, err := hashSequence(v.Elements(), newHash)
		if err != nil {
			return nil, err
		}
		return frame(newHash, tList, 0, rep), nil

	case ion.SexpType:
		rep, err := hashSequence(v.Elements(), newHash)
		if err != nil {
			return nil, err
		}
		return frame(newHash, tSexp, 0, rep), nil

	case ion.StructType:
		rep, err := hashStruct(v.Struct(), newHash)
		if err != nil {
			return nil, err
		}
		return frame(newHash, tStruct, 0, rep), nil

	default:
		return nil, fmt.Errorf("ionhash: value has no type")
	}
}

// hashSequence hashes every child independently and concatenates their
// digests in byte-lexicographic order: a container's representation must
// not depend on its children's wire order, only on the multiset of values
// it holds.
func hashSequence(elems []ion.Value, newHash DigestFactory) ([]byte, error) {
	hashes := make([][]byte, len(elems))
	for i, e := range elems {
		h, err := hashAnnotated(e, newHash)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
	}
	sortHashes(hashes)

	var rep []byte
	for _, h := range hashes {
		rep = append(rep, h...)
	}
	return rep, nil
}

// hashStruct hashes each field as H(field-name-hash ‖ value-hash) (a plain
// digest, not a framed one: the struct's own frame is what carries the
// escape/wrap rule), then concatenates the per-field digests in
// byte-lexicographic order so field order never affects the result.
func hashStruct(s *ion.Struct, newHash DigestFactory) ([]byte, error) {
	fields := s.Fields()
	hashes := make([][]byte, len(fields))
	for i, f := range fields {
		nameHash := frame(newHash, tSymbol, 0, []byte(f.Name))
		valueHash, err := hashAnnotated(f.Value, newHash)
		if err != nil {
			return nil, err
		}

		h := newHash()
		h.Write(nameHash)
		h.Write(valueHash)
		hashes[i] = h.Sum(nil)
	}
	sortHashes(hashes)

	var rep []byte
	for _, h := range hashes {
		rep = append(rep, h...)
	}
	return rep, nil
}

func sortHashes(hashes [][]byte) {
	slices.SortFunc(hashes, func(a, b []byte) bool {
		return bytes.Compare(a, b) < 0
	})
}

// frame wraps representation in the begin/TQ/escape(representation)/end
// envelope and returns its digest under newHash.
func frame(newHash DigestFactory, t, q byte, representation []byte) []byte {
	h := newHash()
	h.Write([]byte{begin, t<<4 | q})
	h.Write(escapeBytes(representation))
	h.Write([]byte{end})
	return h.Sum(nil)
}

// escapeBytes inserts an escape octet before every begin/escape/end octet
// already present in b, so a digest or payload that happens to contain one
// can never be mistaken for a frame boundary.
func escapeBytes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c == begin || c == escape || c == end {
			out = append(out, escape)
		}
		out = append(out, c)
	}
	return out
}

func typeCode(t ion.Type) byte {
	switch t {
	case ion.NullType:
		return tNull
	case ion.BoolType:
		return tBool
	case ion.IntType:
		return tInt
	case ion.FloatType:
		return tFloat
	case ion.DecimalType:
		return tDecimal
	case ion.TimestampType:
		return tTimestamp
	case ion.SymbolType:
		return tSymbol
	case ion.StringType:
		return tString
	case ion.ClobType:
		return tClob
	case ion.BlobType:
		return tBlob
	case ion.ListType:
		return tList
	case ion.SexpType:
		return tSexp
	case ion.StructType:
		return tStruct
	default:
		return tNull
	}
}

func floatRepresentation(f float64, is32 bool) []byte {
	if f == 0 && !math.Signbit(f) {
		return nil
	}
	if is32 {
		return appendFloat32(f)
	}
	return appendFloat64(f)
}

func appendFloat32(f float64) []byte {
	var b [4]byte
	bits := math.Float32bits(float32(f))
	b[0] = byte(bits >> 24)
	b[1] = byte(bits >> 16)
	b[2] = byte(bits >> 8)
	b[3] = byte(bits)
	return b[:]
}

func appendFloat64(f float64) []byte {
	var b [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (56 - 8*i))
	}
	return b[:]
}

func timestampRepresentation(ts ion.Timestamp) []byte {
	var rep []byte

	kind := ts.GetTimezoneKind()
	if kind == ion.TimezoneUnspecified {
		rep = append(rep, 0xC0)
	} else {
		_, offsetSec := ts.GetDateTime().Zone()
		rep = appendVarInt(rep, int64(offsetSec/60))
	}

	dt := ts.GetDateTime()
	rep = appendVarUint(rep, uint64(dt.Year()))

	switch ts.GetPrecision() {
	case ion.TimestampPrecisionMonth:
		rep = appendVarUint(rep, uint64(dt.Month()))
	case ion.TimestampPrecisionDay:
		rep = appendVarUint(rep, uint64(dt.Month()))
		rep = appendVarUint(rep, uint64(dt.Day()))
	case ion.TimestampPrecisionMinute:
		rep = appendVarUint(rep, uint64(dt.Month()))
		rep = appendVarUint(rep, uint64(dt.Day()))
		rep = appendVarUint(rep, uint64(dt.Hour()))
		rep = appendVarUint(rep, uint64(dt.Minute()))
	case ion.TimestampPrecisionSecond, ion.TimestampPrecisionNanosecond:
		rep = appendVarUint(rep, uint64(dt.Month()))
		rep = appendVarUint(rep, uint64(dt.Day()))
		rep = appendVarUint(rep, uint64(dt.Hour()))
		rep = appendVarUint(rep, uint64(dt.Minute()))
		rep = appendVarUint(rep, uint64(dt.Second()))
	}

	if ts.GetPrecision() == ion.TimestampPrecisionNanosecond && ts.GetNumberOfFractionalSeconds() > 0 {
		rep = append(rep, ts.GetNumberOfFractionalSeconds()|0xC0)
		ns := ts.TruncatedNanoseconds()
		if ns > 0 {
			rep = appendSignMagnitude(rep, big.NewInt(int64(ns)))
		}
	}

	return rep
}
