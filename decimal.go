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
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// A ParseError is returned if ParseDecimal is called with a parameter that
// cannot be parsed as a Decimal.
type ParseError struct {
	Num string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ion: ParseDecimal(%v): %v", e.Num, e.Msg)
}

// Decimal is an arbitrary-precision decimal value: coefficient * 10^exponent.
//
// The sign of a zero coefficient is tracked separately from the coefficient
// itself (isNegZero), because Ion distinguishes "-0" from "0" as a matter of
// representation: the two compare numerically equal but are not the same
// value for Ion Hash purposes.
type Decimal struct {
	n         *big.Int
	scale     int32 // scale == -exponent
	isNegZero bool
}

// NewDecimal creates a new decimal whose value is n * 10^exp. negZero marks
// a zero coefficient as negative; it is ignored when n is non-zero.
func NewDecimal(n *big.Int, exp int32, negZero bool) *Decimal {
	return &Decimal{
		n:         n,
		scale:     -exp,
		isNegZero: negZero && n.Sign() == 0,
	}
}

// NewDecimalInt creates a new decimal whose value is equal to n.
func NewDecimalInt(n int64) *Decimal {
	return NewDecimal(big.NewInt(n), 0, false)
}

// MustParseDecimal parses the given string into a decimal object,
// panicking on error.
func MustParseDecimal(in string) *Decimal {
	d, err := ParseDecimal(in)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal parses the given string into a decimal object,
// returning an error on failure. Ion text decimals use 'd' (or 'D') to
// separate an explicit exponent, e.g. "1.23d2".
func ParseDecimal(in string) (*Decimal, error) {
	if len(in) == 0 {
		return nil, &ParseError{in, "empty string"}
	}

	exponent := int32(0)

	d := strings.IndexAny(in, "Dd")
	if d != -1 {
		exp := in[d+1:]
		if len(exp) == 0 {
			return nil, &ParseError{in, "unexpected end of input after d"}
		}

		tmp, err := strconv.ParseInt(exp, 10, 32)
		if err != nil {
			return nil, &ParseError{in, err.Error()}
		}

		exponent = int32(tmp)
		in = in[:d]
	}

	d = strings.Index(in, ".")
	if d != -1 {
		ipart := in[:d]
		fpart := in[d+1:]

		exponent -= int32(len(fpart))
		in = ipart + fpart
	}

	n, ok := new(big.Int).SetString(in, 10)
	if !ok {
		return nil, &ParseError{in, "cannot parse coefficient"}
	}

	isNegZero := n.Sign() == 0 && len(in) > 0 && in[0] == '-'

	return NewDecimal(n, exponent, isNegZero), nil
}

// CoEx returns this decimal's coefficient and exponent.
func (d *Decimal) CoEx() (*big.Int, int32) {
	return d.n, -d.scale
}

// IsNegativeZero reports whether this decimal is a negative zero: a zero
// coefficient whose sign bit was set on the wire. Negative-zero and
// positive-zero decimals are numerically equal but hash differently.
func (d *Decimal) IsNegativeZero() bool {
	return d.n.Sign() == 0 && d.isNegZero
}

// Abs returns the absolute value of this Decimal.
func (d *Decimal) Abs() *Decimal {
	return &Decimal{n: new(big.Int).Abs(d.n), scale: d.scale}
}

// Add returns the result of adding this Decimal to another Decimal.
func (d *Decimal) Add(o *Decimal) *Decimal {
	dd, oo := rescale(d, o)
	return &Decimal{n: new(big.Int).Add(dd.n, oo.n), scale: dd.scale}
}

// Sub returns the result of subtracting another Decimal from this Decimal.
func (d *Decimal) Sub(o *Decimal) *Decimal {
	dd, oo := rescale(d, o)
	return &Decimal{n: new(big.Int).Sub(dd.n, oo.n), scale: dd.scale}
}

// Neg returns the negative of this Decimal.
func (d *Decimal) Neg() *Decimal {
	return &Decimal{n: new(big.Int).Neg(d.n), scale: d.scale, isNegZero: d.n.Sign() == 0 && !d.isNegZero}
}

// Mul multiplies two decimals and returns the result.
func (d *Decimal) Mul(o *Decimal) *Decimal {
	scale := int64(d.scale) + int64(o.scale)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}
	return &Decimal{n: new(big.Int).Mul(d.n, o.n), scale: int32(scale)}
}

// ShiftL returns a new decimal shifted the given number of decimal places to
// the left: a computationally-cheap way to compute d * 10^shift.
func (d *Decimal) ShiftL(shift int) *Decimal {
	scale := int64(d.scale) - int64(shift)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}
	return &Decimal{n: d.n, scale: int32(scale), isNegZero: d.isNegZero}
}

// ShiftR returns a new decimal shifted the given number of decimal places to
// the right: a computationally-cheap way to compute d / 10^shift.
func (d *Decimal) ShiftR(shift int) *Decimal {
	scale := int64(d.scale) + int64(shift)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}
	return &Decimal{n: d.n, scale: int32(scale), isNegZero: d.isNegZero}
}

// Sign returns -1 if the value is less than 0, 0 if it is equal to zero,
// and +1 if it is greater than zero.
func (d *Decimal) Sign() int {
	return d.n.Sign()
}

// Cmp compares two decimals numerically, returning -1 if d is smaller, +1 if
// d is larger, and 0 if they are equal. Negative zero compares equal to zero.
func (d *Decimal) Cmp(o *Decimal) int {
	dd, oo := rescale(d, o)
	return dd.n.Cmp(oo.n)
}

// Equal determines if two decimals are numerically equal, without regard to
// precision or the negative-zero distinction. Use IsNegativeZero to tell
// "-0" apart from "0" when that distinction matters (e.g. for Ion Hash).
func (d *Decimal) Equal(o *Decimal) bool {
	return d.Cmp(o) == 0
}

func rescale(a, b *Decimal) (*Decimal, *Decimal) {
	if a.scale < b.scale {
		return a.upscale(b.scale), b
	} else if a.scale > b.scale {
		return a, b.upscale(a.scale)
	}
	return a, b
}

var ten = big.NewInt(10)

// upscale makes n bigger by making the exponent smaller (the scale larger),
// since we know we can do that (1d100 -> 10d99). Makes comparisons and math easier at the expense of
// storage space.
func (d *Decimal) upscale(scale int32) *Decimal {
	diff := int64(scale) - int64(d.scale)
	if diff < 0 {
		panic("can't upscale to a smaller scale")
	}

	pow := new(big.Int).Exp(ten, big.NewInt(diff), nil)
	n := new(big.Int).Mul(d.n, pow)

	return &Decimal{n: n, scale: scale, isNegZero: d.isNegZero}
}

// checkToUpscale upscales negative-scale decimals to scale 0 so trunc/round
// can work directly off the decimal digit string; values with a
// sufficiently negative scale are rejected rather than upscaled, since that
// would otherwise materialize an enormous coefficient.
func (d *Decimal) checkToUpscale() (*Decimal, error) {
	if d.scale < 0 {
		if d.scale < -20 {
			return d, fmt.Errorf("ion: decimal %v out of int64 range", d)
		}
		return d.upscale(0), nil
	}
	return d, nil
}

// trunc returns this decimal's value truncated to an int64, discarding any
// fractional digits. It fails if the integral part does not fit in an
// int64.
func (d *Decimal) trunc() (int64, error) {
	ud, err := d.checkToUpscale()
	if err != nil {
		return 0, err
	}
	str := ud.n.String()

	truncateTo := len(str) - int(ud.scale)
	if truncateTo <= 0 {
		return 0, nil
	}
	return strconv.ParseInt(str[:truncateTo], 10, 64)
}

// round returns this decimal's value rounded to the nearest int64.
func (d *Decimal) round() (int64, error) {
	ud, err := d.checkToUpscale()
	if err != nil {
		return 0, err
	}
	floatValue := float64(ud.n.Int64()) / math.Pow10(int(ud.scale))
	return int64(math.Round(floatValue)), nil
}

// String formats the decimal in Ion text notation (nn.nn, nnd+ee, etc).
// Negative zero prints as "-0." to preserve the distinction on round-trip
// through text, even though this library does not otherwise speak Ion text.
func (d *Decimal) String() string {
	if d.IsNegativeZero() {
		return "-0."
	}

	switch {
	case d.scale == 0:
		return d.n.String() + "."

	case d.scale < 0:
		return d.n.String() + "d" + fmt.Sprintf("%d", -d.scale)

	default:
		str := d.n.String()
		idx := len(str) - int(d.scale)

		prefix := 1
		if d.n.Sign() < 0 {
			prefix++
		}

		if idx >= prefix {
			return str[:idx] + "." + str[idx:]
		}

		b := strings.Builder{}
		b.WriteString(str[:prefix])
		if len(str) > prefix {
			b.WriteString(".")
			b.WriteString(str[prefix:])
		}
		b.WriteString("d")
		b.WriteString(fmt.Sprintf("%d", idx-prefix))
		return b.String()
	}
}
