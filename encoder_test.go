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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes v alone and decodes it back, for P1 (round-trip).
func roundTrip(t *testing.T, v Value) Value {
	t.Helper()

	e := NewEncoder()
	e.Add(v)
	data, err := e.Encode()
	require.NoError(t, err)

	d := NewDecoderBytes(data)
	got, err := d.ConsumeValue()
	require.NoError(t, err)
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := []Value{
		Null(IntType),
		Null(StructType),
		Null(ListType),
		Null(SexpType),
		Bool(true),
		Bool(false),
		Int(0),
		Int(-1),
		Int(1 << 40),
		Float64(3.14159),
		Float64(0),
		DecimalValue(NewDecimal(big.NewInt(-0), 0, true)),
		DecimalValue(NewDecimal(big.NewInt(123), -2, false)),
		String("hello, ion"),
		Symbol("greeting"),
		Clob([]byte("clob bytes")),
		Blob([]byte{0x01, 0x02, 0x03}),
	}

	for _, v := range cases {
		got := roundTrip(t, v)
		require.True(t, v.Equal(got), "expected %#v to round-trip, got %#v", v, got)
	}
}

func TestRoundTripBoundaryIntegers(t *testing.T) {
	vals := []string{
		"0", "1", "-1",
		"9223372036854775807",
		"-9223372036854775808",
		"9223372036854775808",
		"-170141183460469231731687303715884105728",
		"1" + repeat("0", 100),
	}

	for _, s := range vals {
		n, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok, s)

		got := roundTrip(t, BigInt(n))
		require.Equal(t, IntType, got.Type())
		require.Equal(t, 0, n.Cmp(got.BigInt()), s)
	}
}

func TestRoundTripNegativeZeroDecimalPreservesDistinctness(t *testing.T) {
	negZero := DecimalValue(NewDecimal(big.NewInt(0), -1, true))
	zero := DecimalValue(NewDecimal(big.NewInt(0), -1, false))

	gotNegZero := roundTrip(t, negZero)
	gotZero := roundTrip(t, zero)

	require.True(t, gotNegZero.Decimal().IsNegativeZero())
	require.False(t, gotZero.Decimal().IsNegativeZero())

	// Numerically equal, but the encoder must not collapse the distinction.
	require.Equal(t, 0, gotNegZero.Decimal().Cmp(gotZero.Decimal()))
}

func TestRoundTripTimestampPrecision(t *testing.T) {
	dt := time.Date(2015, time.March, 14, 9, 26, 53, 0, time.UTC)
	ts := NewTimestamp(dt, TimestampPrecisionSecond, TimezoneUTC)

	got := roundTrip(t, TimestampValue(ts))
	require.Equal(t, TimestampPrecisionSecond, got.Timestamp().GetPrecision())
	require.True(t, ts.Equal(got.Timestamp()))
}

func TestRoundTripListAndStruct(t *testing.T) {
	v := StructValue(NewStruct(
		Field{Name: "tags", Value: List([]Value{String("a"), String("b")})},
		Field{Name: "count", Value: Int(2)},
	))

	got := roundTrip(t, v)
	require.True(t, v.Equal(got))

	diff := cmp.Diff(v.Struct().Fields(), got.Struct().Fields(),
		cmpopts.IgnoreUnexported(Value{}))
	require.Empty(t, diff, "struct fields should match field-for-field")
}

func TestRoundTripAnnotations(t *testing.T) {
	v := String("annotated").WithAnnotations("a", "b")

	got := roundTrip(t, v)
	require.Equal(t, []string{"a", "b"}, got.Annotations())
}

func TestEncodeOmitsSymbolTableDirectiveWhenNoSymbolsReferenced(t *testing.T) {
	e := NewEncoder()
	e.Add(Int(42))
	data, err := e.Encode()
	require.NoError(t, err)

	// BVM, then directly the int tag: no $ion_symbol_table directive.
	require.Equal(t, bvm, data[:4])
	require.NotEqual(t, byte(0xE0), data[4]&0xF0, "should not start an annotation wrapper")
}

func TestEncodeEmitsSymbolTableDirectiveForSymbolValues(t *testing.T) {
	e := NewEncoder()
	e.Add(Symbol("custom"))
	data, err := e.Encode()
	require.NoError(t, err)

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, SymbolType, v.Type())
	text, _ := v.Text()
	require.Equal(t, "custom", text)

	_, ok := d.SymbolTable().FindByName("custom")
	require.True(t, ok)
}
