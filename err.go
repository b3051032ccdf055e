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

	"golang.org/x/xerrors"
)

// A UsageError is returned when the Decoder or Encoder is used in a way its
// contract forbids (e.g. encoding the zero Value, which has no type).
type UsageError struct {
	API string
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("ion: usage error in %v: %v", e.API, e.Msg)
}

// An IOError wraps a failure reading from or writing to an underlying
// io.Reader/io.Writer.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("ion: i/o error: %v", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Structural decode errors: the octet stream itself doesn't parse as Ion
// binary, independent of what any particular value means.

// A BinaryVersionMarkerNotFoundError is returned when a byte stream doesn't
// begin with the 4-octet BVM (E0 01 00 EA).
type BinaryVersionMarkerNotFoundError struct {
	Offset uint64
}

func (e *BinaryVersionMarkerNotFoundError) Error() string {
	return fmt.Sprintf("ion: binary version marker not found (offset %v)", e.Offset)
}

// An UnsupportedVersionError is returned when a BVM names an Ion version
// this package does not understand.
type UnsupportedVersionError struct {
	Major, Minor int
	Offset       uint64
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("ion: unsupported version %v.%v (offset %v)", e.Major, e.Minor, e.Offset)
}

// A TruncatedError is returned when a length field promises more octets
// than remain in the stream (or in the enclosing container).
type TruncatedError struct {
	Offset  uint64
	Want    uint64
	HaveMax uint64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("ion: truncated value at offset %v: wants %v octets, only %v available", e.Offset, e.Want, e.HaveMax)
}

// An InvalidReservedTypeError is returned when a typedesc byte names the
// reserved type code (T=15), or is an annotation wrapper with length
// nibble 15 (0xEF).
type InvalidReservedTypeError struct {
	Byte   byte
	Offset uint64
}

func (e *InvalidReservedTypeError) Error() string {
	return fmt.Sprintf("ion: reserved typedesc 0x%02X (offset %v)", e.Byte, e.Offset)
}

// An InvalidVarUIntError is returned when a VarUInt/VarInt runs past the end
// of the stream without a terminating octet.
type InvalidVarUIntError struct {
	Offset uint64
}

func (e *InvalidVarUIntError) Error() string {
	return fmt.Sprintf("ion: truncated VarUInt/VarInt (offset %v)", e.Offset)
}

// Semantic decode errors: the stream parses, but a value's payload violates
// a rule specific to its type.

// An InvalidUTF8Error is returned when a string's payload is not valid
// UTF-8.
type InvalidUTF8Error struct {
	Offset uint64
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("ion: invalid UTF-8 (offset %v)", e.Offset)
}

// An InvalidBoolLengthError is returned when a bool typedesc's length
// nibble is anything but 0 (false), 1 (true), or 15 (null.bool).
type InvalidBoolLengthError struct {
	Length uint8
	Offset uint64
}

func (e *InvalidBoolLengthError) Error() string {
	return fmt.Sprintf("ion: invalid bool length %v (offset %v)", e.Length, e.Offset)
}

// A NegativeIntegerZeroError is returned for a negative-int (T=3) value
// whose magnitude is zero; Ion treats that encoding as illegal, unlike a
// negative-zero Decimal, which is a legal, meaningful value.
type NegativeIntegerZeroError struct {
	Offset uint64
}

func (e *NegativeIntegerZeroError) Error() string {
	return fmt.Sprintf("ion: negative int zero is illegal (offset %v)", e.Offset)
}

// An InvalidAnnotationStructureError is returned for an annotation wrapper
// with a zero-length annotation list, or one that doesn't wrap exactly one
// value.
type InvalidAnnotationStructureError struct {
	Offset uint64
}

func (e *InvalidAnnotationStructureError) Error() string {
	return fmt.Sprintf("ion: invalid annotation wrapper (offset %v)", e.Offset)
}

// An InvalidTimestampError is returned when a timestamp's fields don't name
// a real calendar instant, or when its fractional-seconds coefficient is out
// of range.
type InvalidTimestampError struct {
	Offset uint64
	Msg    string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("ion: invalid timestamp: %v (offset %v)", e.Msg, e.Offset)
}

// A StructFieldsNotSortedError is returned when a struct's length nibble
// declares sorted field order (L=1) but the field IDs are not strictly
// ascending.
type StructFieldsNotSortedError struct {
	Offset uint64
}

func (e *StructFieldsNotSortedError) Error() string {
	return fmt.Sprintf("ion: struct declared sorted but field IDs are not strictly ascending (offset %v)", e.Offset)
}

// An InvalidSymbolIDError is returned when a symbol ID can't be resolved
// against the symbol table in effect, or is otherwise out of range.
type InvalidSymbolIDError struct {
	ID     uint64
	Offset uint64
}

func (e *InvalidSymbolIDError) Error() string {
	return fmt.Sprintf("ion: invalid symbol id %v (offset %v)", e.ID, e.Offset)
}

// Symbol table errors: the $ion_symbol_table directive itself is malformed,
// or an import it names can't be resolved.

// A SymbolNotFoundError describes an ID the symbol table (local plus
// imports) doesn't define. FindByID reports a missing ID through its bool
// result and the Decoder reports one as *InvalidSymbolIDError, so no
// function in this package returns it.
type SymbolNotFoundError struct {
	ID uint64
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("ion: symbol id %v not found", e.ID)
}

// A SymbolIDTooLargeError is returned when a symbol id overflows the space
// this implementation is willing to track.
type SymbolIDTooLargeError struct {
	Offset uint64
}

func (e *SymbolIDTooLargeError) Error() string {
	return fmt.Sprintf("ion: symbol id too large (offset %v)", e.Offset)
}

// A DuplicateSymbolTableFieldError is returned when a local symbol table
// directive struct repeats its "symbols" or "imports" field.
type DuplicateSymbolTableFieldError struct {
	Field string
}

func (e *DuplicateSymbolTableFieldError) Error() string {
	return fmt.Sprintf("ion: duplicate %q field in local symbol table directive", e.Field)
}

// An UnknownLocalTableImportError is returned when a local symbol table
// imports a shared table the catalog doesn't have, and the import entry
// doesn't carry a max_id to fall back on.
type UnknownLocalTableImportError struct {
	Name    string
	Version int
}

func (e *UnknownLocalTableImportError) Error() string {
	return fmt.Sprintf("ion: import of shared table %v/%v is unresolvable: not in catalog and no max_id given", e.Name, e.Version)
}

// Encode errors.

// A SymbolTableOverflowError is returned when the encoder would need to
// assign a local symbol ID past what this implementation tracks (2^31).
type SymbolTableOverflowError struct {
	Count uint64
}

func (e *SymbolTableOverflowError) Error() string {
	return fmt.Sprintf("ion: local symbol table overflow: %v symbols", e.Count)
}

// An InvalidUTF8StringError is returned when the encoder is asked to write a
// String or Symbol value whose text is not valid UTF-8.
type InvalidUTF8StringError struct{}

func (e *InvalidUTF8StringError) Error() string {
	return "ion: string/symbol text is not valid UTF-8"
}

// A SymbolNotInternedError is returned when the encoder needs the ID of a
// symbol text that never made it into the local symbol table it built; this
// would indicate a bug in the encoder's symbol-collection pass rather than
// bad input, since every symbol/field-name/annotation text is interned
// before any value is written.
type SymbolNotInternedError struct {
	Text string
}

func (e *SymbolNotInternedError) Error() string {
	return fmt.Sprintf("ion: symbol %q was never interned", e.Text)
}

// A NumericOverflowError describes a Decimal exponent or Timestamp field
// that exceeds what the binary encoding can represent. The Encoder does not
// check for either case, so no function in this package returns it.
type NumericOverflowError struct {
	Msg string
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("ion: numeric overflow: %v", e.Msg)
}

// wrapf annotates an error with a caller-supplied message while preserving
// the original error for errors.Is/errors.As.
func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf(format+": %w", append(args, err)...)
}
