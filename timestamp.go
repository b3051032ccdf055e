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
	"time"
)

// TimestampPrecision is for tracking the precision of a timestamp
type TimestampPrecision uint8

// Possible TimestampPrecision values
const (
	TimestampNoPrecision TimestampPrecision = iota
	TimestampPrecisionYear
	TimestampPrecisionMonth
	TimestampPrecisionDay
	TimestampPrecisionMinute
	TimestampPrecisionSecond
	TimestampPrecisionNanosecond
)

const maxFractionalPrecision = 9

func (tp TimestampPrecision) String() string {
	switch tp {
	case TimestampNoPrecision:
		return "<no precision>"
	case TimestampPrecisionYear:
		return "Year"
	case TimestampPrecisionMonth:
		return "Month"
	case TimestampPrecisionDay:
		return "Day"
	case TimestampPrecisionMinute:
		return "Minute"
	case TimestampPrecisionSecond:
		return "Second"
	case TimestampPrecisionNanosecond:
		return "Nanosecond"
	default:
		return fmt.Sprintf("<unknown precision %v>", uint8(tp))
	}
}

// TimezoneKind tracks the type of timezone.
type TimezoneKind uint8

const (
	// TimezoneUnspecified is for timestamps without a timezone such as dates with no time component (ie. Year/Month/Day precision).
	// Negative zero offsets (ie. yyyy-mm-ddThh:mm-00:00) are also considered Unspecified.
	TimezoneUnspecified TimezoneKind = iota

	// TimezoneUTC is for UTC timestamps and they are usually denoted with a trailing 'Z' (ie. yyyy-mm-ddThh:mmZ).
	// Timestamps with a positive zero offset (ie. yyyy-mm-ddThh:mm+00:00) are also considered UTC.
	TimezoneUTC

	// TimezoneLocal is for timestamps that have a non-zero offset from UTC (ie. 2001-02-03T04:05+08:30, 2009-05-18T16:20-04:00).
	TimezoneLocal
)

// Timestamp struct
type Timestamp struct {
	dateTime             time.Time
	precision            TimestampPrecision
	kind                 TimezoneKind
	numFractionalSeconds uint8
}

// NewDateTimestamp constructor meant for timestamps that only have a date portion (ie. no time portion).
func NewDateTimestamp(dateTime time.Time, precision TimestampPrecision) Timestamp {
	numDecimalPlacesOfFractionalSeconds := uint8(0)
	if precision >= TimestampPrecisionNanosecond {
		numDecimalPlacesOfFractionalSeconds = maxFractionalPrecision
	}
	return Timestamp{dateTime, precision, TimezoneUnspecified, numDecimalPlacesOfFractionalSeconds}
}

// NewTimestamp constructor
func NewTimestamp(dateTime time.Time, precision TimestampPrecision, kind TimezoneKind) Timestamp {
	numDecimalPlacesOfFractionalSeconds := uint8(0)

	if precision <= TimestampPrecisionDay {
		// Timestamps with Year, Month, or Day precision necessarily have TimezoneUnspecified timezone.
		kind = TimezoneUnspecified
	} else if precision >= TimestampPrecisionNanosecond {
		numDecimalPlacesOfFractionalSeconds = maxFractionalPrecision
	}
	return Timestamp{dateTime, precision, kind, numDecimalPlacesOfFractionalSeconds}
}

// NewTimestampWithFractionalSeconds constructor
func NewTimestampWithFractionalSeconds(dateTime time.Time, precision TimestampPrecision, kind TimezoneKind, fractionPrecision uint8) Timestamp {
	if fractionPrecision > maxFractionalPrecision {
		// 9 is the max precision supported
		fractionPrecision = maxFractionalPrecision
	}
	if precision < TimestampPrecisionNanosecond {
		fractionPrecision = 0
	}
	return Timestamp{dateTime, precision, kind, fractionPrecision}
}

// GetDateTime returns the timestamps date time.
func (ts Timestamp) GetDateTime() time.Time {
	return ts.dateTime
}

// GetPrecision returns the timestamp's precision.
func (ts Timestamp) GetPrecision() TimestampPrecision {
	return ts.precision
}

// GetTimezoneKind returns the kind of timezone.
func (ts Timestamp) GetTimezoneKind() TimezoneKind {
	return ts.kind
}

// GetNumberOfFractionalSeconds returns the number of precision units in the timestamp's fractional seconds.
func (ts Timestamp) GetNumberOfFractionalSeconds() uint8 {
	return ts.numFractionalSeconds
}

// Equal figures out if two timestamps are equal for each component.
func (ts Timestamp) Equal(ts1 Timestamp) bool {
	_, offset := ts.dateTime.Zone()
	_, offset1 := ts1.dateTime.Zone()

	return ts.dateTime.Equal(ts1.dateTime) &&
		offset == offset1 &&
		ts.precision == ts1.precision &&
		ts.kind == ts1.kind &&
		ts.numFractionalSeconds == ts1.numFractionalSeconds
}

// TruncatedNanoseconds returns nanoseconds with trailing values removed up to the difference of max fractional precision - time stamp's fractional precision
// e.g. 123456000 with fractional precision: 3 will get truncated to 123.
func (ts Timestamp) TruncatedNanoseconds() int {
	nsecs := ts.dateTime.Nanosecond()

	for i := uint8(0); i < (maxFractionalPrecision-ts.numFractionalSeconds) && nsecs > 0; i++ {
		nsecs /= 10
	}
	return nsecs
}
