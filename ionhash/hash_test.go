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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidalgo/ion"
)

func TestHashIsDeterministic(t *testing.T) {
	v := ion.StructValue(ion.NewStruct(
		ion.Field{Name: "a", Value: ion.Int(1)},
		ion.Field{Name: "b", Value: ion.String("x")},
	))

	h1, err := Hash(v, SHA256)
	require.NoError(t, err)
	h2, err := Hash(v, SHA256)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestHashIonEquivalentValuesMatch(t *testing.T) {
	// Field order must not affect a struct's hash (P2).
	a := ion.StructValue(ion.NewStruct(
		ion.Field{Name: "a", Value: ion.Int(1)},
		ion.Field{Name: "b", Value: ion.Int(2)},
	))
	b := ion.StructValue(ion.NewStruct(
		ion.Field{Name: "b", Value: ion.Int(2)},
		ion.Field{Name: "a", Value: ion.Int(1)},
	))

	ha, err := Hash(a, SHA256)
	require.NoError(t, err)
	hb, err := Hash(b, SHA256)
	require.NoError(t, err)
	require.Equal(t, ha, hb)
}

func TestHashListOrderInsensitive(t *testing.T) {
	a := ion.List([]ion.Value{ion.Int(1), ion.Int(2)})
	b := ion.List([]ion.Value{ion.Int(2), ion.Int(1)})

	ha, _ := Hash(a, SHA256)
	hb, _ := Hash(b, SHA256)
	require.Equal(t, ha, hb)
}

func TestHashDistinctValuesDiffer(t *testing.T) {
	values := []ion.Value{
		ion.Int(0),
		ion.Int(1),
		ion.Bool(false),
		ion.Bool(true),
		ion.Null(ion.IntType),
		ion.String(""),
		ion.Symbol(""),
		ion.List(nil),
		ion.Sexp(nil),
	}

	seen := make(map[string]ion.Value)
	for _, v := range values {
		h, err := Hash(v, SHA256)
		require.NoError(t, err)
		key := string(h)
		if prior, ok := seen[key]; ok {
			t.Fatalf("hash collision between %#v and %#v", prior, v)
		}
		seen[key] = v
	}
}

func TestHashNegativeZeroDecimalDiffersFromZero(t *testing.T) {
	negZero := ion.DecimalValue(ion.NewDecimal(big.NewInt(0), 0, true))
	zero := ion.DecimalValue(ion.NewDecimal(big.NewInt(0), 0, false))

	hNegZero, err := Hash(negZero, SHA256)
	require.NoError(t, err)
	hZero, err := Hash(zero, SHA256)
	require.NoError(t, err)
	require.NotEqual(t, hNegZero, hZero)
}

func TestHashUnknownSymbolUsesSIDZeroRule(t *testing.T) {
	unknown := ion.UnknownSymbol()
	known := ion.Symbol("$0") // distinct text, must not collide with the SID-0 rule

	hUnknown, err := Hash(unknown, SHA256)
	require.NoError(t, err)
	hKnown, err := Hash(known, SHA256)
	require.NoError(t, err)
	require.NotEqual(t, hUnknown, hKnown)

	// Two unknown-text symbols always hash identically.
	hUnknown2, err := Hash(ion.UnknownSymbol(), SHA256)
	require.NoError(t, err)
	require.Equal(t, hUnknown, hUnknown2)
}

func TestHashAllReturnsOneHashPerValue(t *testing.T) {
	values := []ion.Value{ion.Int(1), ion.Int(2), ion.Int(3)}
	hashes, err := HashAll(values, SHA256)
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	for _, h := range hashes {
		require.NotEmpty(t, h)
	}
}

func TestDigestFactoriesProduceDifferentLengths(t *testing.T) {
	v := ion.Int(42)

	sha256Hash, err := Hash(v, SHA256)
	require.NoError(t, err)
	require.Len(t, sha256Hash, 32)

	sha1Hash, err := Hash(v, SHA1)
	require.NoError(t, err)
	require.Len(t, sha1Hash, 20)

	md5Hash, err := Hash(v, MD5)
	require.NoError(t, err)
	require.Len(t, md5Hash, 16)

	blakeHash, err := Hash(v, Blake2b256)
	require.NoError(t, err)
	require.Len(t, blakeHash, 32)

	sipHash, err := Hash(v, SipHash(1, 2))
	require.NoError(t, err)
	require.Len(t, sipHash, 8)
}

func TestAnnotationsChangeTheHash(t *testing.T) {
	plain := ion.String("x")
	annotated := ion.String("x").WithAnnotations("note")

	hPlain, _ := Hash(plain, SHA256)
	hAnnotated, _ := Hash(annotated, SHA256)
	require.NotEqual(t, hPlain, hAnnotated)
}
