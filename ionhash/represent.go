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
	"math/big"
)

// This file builds the tag-less "representation" bytes the hash envelope
// wraps for each scalar type. It mirrors the binary codec's wire
// primitives (VarUInt/VarInt/sign-magnitude Int) but never a length tag: a
// hash representation's length is implicit in the escaped, framed byte
// string itself, not a field a reader seeks past.

// appendVarUint appends an Ion VarUInt encoding of v.
func appendVarUint(b []byte, v uint64) []byte {
	var buf [10]byte
	i := 9
	buf[i] = 0x80 | byte(v&0x7F)
	v >>= 7
	for v > 0 {
		i--
		buf[i] = byte(v & 0x7F)
		v >>= 7
	}
	return append(b, buf[i:]...)
}

// appendVarInt appends an Ion VarInt encoding of v.
func appendVarInt(b []byte, v int64) []byte {
	signbit := byte(0)
	mag := uint64(v)
	if v < 0 {
		signbit = 0x40
		mag = uint64(-v)
	}

	next := mag >> 6
	if next == 0 {
		return append(b, 0x80|signbit|byte(mag&0x3F))
	}

	var buf [10]byte
	i := 9
	buf[i] = 0x80 | byte(mag&0x7F)
	mag >>= 7
	next = mag >> 6

	for next > 0 {
		i--
		buf[i] = byte(mag & 0x7F)
		mag >>= 7
		next = mag >> 6
	}

	i--
	buf[i] = signbit | byte(mag&0x3F)
	return append(b, buf[i:]...)
}

// appendSignMagnitude appends the Int-grammar sign-magnitude encoding of n:
// the sign lives in the high bit of the first octet, rather than in an
// enclosing type descriptor the way a positive/negative-int value's does.
func appendSignMagnitude(b []byte, n *big.Int) []byte {
	sign := n.Sign()
	if sign == 0 {
		return b
	}
	bits := new(big.Int).Abs(n).Bytes()
	if bits[0]&0x80 == 0 {
		if sign < 0 {
			bits[0] ^= 0x80
		}
		return append(b, bits...)
	}
	lead := byte(0)
	if sign < 0 {
		lead = 0x80
	}
	b = append(b, lead)
	return append(b, bits...)
}

// intRepresentation returns the plain UInt magnitude of n (no sign bit: a
// positive/negative-int value's sign lives in its TQ qualifier, not its
// representation) and whether n is negative.
func intRepresentation(n *big.Int) ([]byte, bool) {
	if n.Sign() == 0 {
		return nil, false
	}
	return new(big.Int).Abs(n).Bytes(), n.Sign() < 0
}

// decimalRepresentation returns a decimal's tag-less VarInt-exponent +
// Int-coefficient payload.
func decimalRepresentation(coef *big.Int, exp int32, negZero bool) []byte {
	if coef.Sign() == 0 && exp == 0 && !negZero {
		return nil
	}
	rep := appendVarInt(nil, int64(exp))
	if negZero {
		return append(rep, 0x80)
	}
	return appendSignMagnitude(rep, coef)
}
