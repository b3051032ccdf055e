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
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeQLDBSample(t *testing.T) {
	data := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0xEE, 0xA6, 0x81, 0x83, 0xDE, 0xA2, 0x87, 0xBE, 0x9F,
		0x83, 0x56, 0x49, 0x4E, 0x84, 0x54, 0x79, 0x70, 0x65, 0x84, 0x59, 0x65, 0x61, 0x72, 0x84, 0x4D,
		0x61, 0x6B, 0x65, 0x85, 0x4D, 0x6F, 0x64, 0x65, 0x6C, 0x85, 0x43, 0x6F, 0x6C, 0x6F, 0x72,
		0xDE, 0xB9, 0x8A, 0x8E, 0x91, 0x31, 0x43, 0x34, 0x52, 0x4A, 0x46, 0x41, 0x47, 0x30, 0x46, 0x43,
		0x36, 0x32, 0x35, 0x37, 0x39, 0x37,
		0x8B, 0x85, 0x53, 0x65, 0x64, 0x61, 0x6E,
		0x8C, 0x22, 0x07, 0xE3,
		0x8D, 0x88, 0x4D, 0x65, 0x72, 0x63, 0x65, 0x64, 0x65, 0x73,
		0x8E, 0x87, 0x43, 0x4C, 0x4B, 0x20, 0x33, 0x35, 0x30,
		0x8F, 0x85, 0x57, 0x68, 0x69, 0x74, 0x65,
	}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, StructType, v.Type())

	s := v.Struct()
	require.NotNil(t, s)

	check := func(name, expect string) {
		fv, ok := s.Find(name)
		require.True(t, ok, "missing field %q", name)
		text, ok := fv.Text()
		require.True(t, ok)
		require.Equal(t, expect, text)
	}

	check("VIN", "1C4RJFAG0FC625797")
	check("Type", "Sedan")
	check("Make", "Mercedes")
	check("Model", "CLK 350")
	check("Color", "White")

	year, ok := s.Find("Year")
	require.True(t, ok)
	require.Equal(t, IntType, year.Type())
	n, exact := year.Int64()
	require.True(t, exact)
	require.Equal(t, int64(2019), n)

	_, err = d.ConsumeValue()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecodeTypedNull(t *testing.T) {
	data := []byte{0xE0, 0x01, 0x00, 0xEA, 0x2F}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, IntType, v.Type())
	require.True(t, v.IsNull())
}

func TestDecodeNegativeZeroDecimal(t *testing.T) {
	data := []byte{0xE0, 0x01, 0x00, 0xEA, 0x52, 0xC1, 0x80}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, DecimalType, v.Type())

	dec := v.Decimal()
	require.True(t, dec.IsNegativeZero())
	coef, exp := dec.CoEx()
	require.Equal(t, 0, coef.Sign())
	require.Equal(t, int32(-1), exp)
}

func TestDecodeTimestampUnknownOffsetMinutePrecision(t *testing.T) {
	// T=6 (timestamp), L=7: unknown-offset marker, VarUint year 2015, then
	// VarUint month/day/hour/minute for Jan 1 at midnight.
	data := []byte{0xE0, 0x01, 0x00, 0xEA, 0x67, 0xC0, 0x0F, 0xDF, 0x81, 0x81, 0x80, 0x80}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, TimestampType, v.Type())

	ts := v.Timestamp()
	require.Equal(t, TimestampPrecisionMinute, ts.GetPrecision())
	require.Equal(t, TimezoneUnspecified, ts.GetTimezoneKind())

	dt := ts.GetDateTime()
	require.Equal(t, 2015, dt.Year())
	require.Equal(t, 1, int(dt.Month()))
	require.Equal(t, 1, dt.Day())
	require.Equal(t, 0, dt.Hour())
	require.Equal(t, 0, dt.Minute())
}

func TestDecodeLocalSymbolTableAppend(t *testing.T) {
	// $ion_symbol_table::{imports: $ion_symbol_table, symbols: ["foo"]}
	// followed by the symbol with local id 10 (system max is 9, so "foo" is 10).
	data := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0xEC, // annotation wrapper, L=12
		0x81, 0x83, // annot-length=1, annotation id 3 ($ion_symbol_table)
		0xD9,             // struct, L=9
		0x86, 0x71, 0x03, // imports: $ion_symbol_table (symbol id 3)
		0x87, 0xB4, 0x83, 'f', 'o', 'o', // symbols: ["foo"]
		0x71, 0x0A, // symbol id 10
	}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, SymbolType, v.Type())
	text, ok := v.Text()
	require.True(t, ok)
	require.Equal(t, "foo", text)
}

func TestDecodeNopPadsAreSkipped(t *testing.T) {
	data := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0x01, 0x00, // 2-byte nop pad at top level
		0x11, // true
	}

	d := NewDecoderBytes(data)
	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, BoolType, v.Type())
	require.True(t, v.Bool())
}

func TestDecodeStructSortFlagRejectsUnsorted(t *testing.T) {
	// Struct with L=1 (sorted, VarUint length follows) but field ids out of
	// order: 5 then 4 (both system symbols, so they resolve without a local
	// table). Each field is a 1-byte VarUint id + a 1-byte false.
	data := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0xD1, 0x84,
		0x85, 0x10,
		0x84, 0x10,
	}

	d := NewDecoderBytes(data)
	_, err := d.ConsumeValue()
	require.Error(t, err)
	var sortErr *StructFieldsNotSortedError
	require.ErrorAs(t, err, &sortErr)
}

func TestDecodeNullListAndSexp(t *testing.T) {
	data := []byte{0xE0, 0x01, 0x00, 0xEA, 0xBF, 0xCF}

	d := NewDecoderBytes(data)

	v, err := d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, ListType, v.Type())
	require.True(t, v.IsNull())

	v, err = d.ConsumeValue()
	require.NoError(t, err)
	require.Equal(t, SexpType, v.Type())
	require.True(t, v.IsNull())
}

func TestDecodeTimestampFractionalExponentOutOfRangeIsAnError(t *testing.T) {
	// T=6 (timestamp), L=0x0E (length follows as a VarUint: 14), full
	// year/month/day/hour/minute/second precision, then a fractional-seconds
	// VarInt exponent of exactly math.MinInt32 - too negative for
	// ShiftL(9) to rescale without underflowing int32 - and a 1-byte
	// sign-magnitude coefficient.
	data := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0x6E, 0x8E,
		0xC0,       // unknown offset
		0x0F, 0xDF, // year 2015
		0x81,       // month 1
		0x81,       // day 1
		0x80,       // hour 0
		0x80,       // minute 0
		0x80,       // second 0
		0x48, 0x00, 0x00, 0x00, 0x80, // VarInt exponent = math.MinInt32
		0x01, // coefficient = 1
	}

	d := NewDecoderBytes(data)
	_, err := d.ConsumeValue()
	require.Error(t, err)
	var tsErr *InvalidTimestampError
	require.ErrorAs(t, err, &tsErr)
}

func TestDecodeBoundaryIntegers(t *testing.T) {
	cases := []string{
		"0", "1", "-1",
		"9223372036854775807",  // 2^63-1
		"-9223372036854775807", // -(2^63-1)
		"9223372036854775808",  // 2^63
		"170141183460469231731687303715884105728", // 2^127
		"1" + repeat("0", 100),                    // 10^100
	}

	for _, c := range cases {
		n, ok := new(big.Int).SetString(c, 10)
		require.True(t, ok, c)

		e := NewEncoder()
		e.Add(BigInt(n))
		out, err := e.Encode()
		require.NoError(t, err)

		d := NewDecoderBytes(out)
		v, err := d.ConsumeValue()
		require.NoError(t, err)
		require.Equal(t, IntType, v.Type())
		require.Equal(t, 0, n.Cmp(v.BigInt()), "%v round-trips", c)
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
