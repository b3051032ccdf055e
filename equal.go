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

import "math"

// Equal reports whether v and o are the same Ion value.
//
// Integer and BigInteger are the same representation in this package (see
// Value), so numeric equivalence falls out of the big.Int comparison with no
// special case. Struct fields compare as a multiset: order doesn't matter,
// but repeated fields must be matched one-for-one. List and Sexp compare
// element-by-element in order. Timestamps must agree on precision and
// offset kind, not just on instant. Decimals compare numerically except
// that negative zero is distinct from positive zero, matching the wire
// distinction Ion Hash depends on.
func (v Value) Equal(o Value) bool {
	if !equalStrings(v.annotations, o.annotations) {
		return false
	}
	if v.typ != o.typ {
		return false
	}
	if v.null != o.null {
		return false
	}
	if v.null {
		return true
	}

	switch v.typ {
	case BoolType:
		return v.boolVal == o.boolVal
	case IntType:
		return v.BigInt().Cmp(o.BigInt()) == 0
	case FloatType:
		if math.IsNaN(v.f64) || math.IsNaN(o.f64) {
			return math.IsNaN(v.f64) && math.IsNaN(o.f64)
		}
		return v.f64 == o.f64 && math.Signbit(v.f64) == math.Signbit(o.f64)
	case DecimalType:
		if v.dec.IsNegativeZero() != o.dec.IsNegativeZero() {
			return false
		}
		return v.dec.Equal(o.dec)
	case TimestampType:
		return v.ts.Equal(o.ts)
	case StringType:
		return v.text == o.text
	case SymbolType:
		if v.noSymbol || o.noSymbol {
			return v.noSymbol == o.noSymbol
		}
		return v.text == o.text
	case ClobType, BlobType:
		return equalBytes(v.bytes, o.bytes)
	case ListType, SexpType:
		return equalSequence(v.elems, o.elems)
	case StructType:
		return equalStructs(v.strct, o.strct)
	default:
		return true
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalSequence(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// equalStructs compares two structs as multisets of (name, value) pairs.
func equalStructs(a, b *Struct) bool {
	af, bf := a.Fields(), b.Fields()
	if len(af) != len(bf) {
		return false
	}

	used := make([]bool, len(bf))
	for _, fa := range af {
		matched := false
		for j, fb := range bf {
			if used[j] || fa.Name != fb.Name {
				continue
			}
			if fa.Value.Equal(fb.Value) {
				used[j] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
