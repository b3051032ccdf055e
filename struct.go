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

// A Field is a single (name, value) pair of a Struct, in the order it was
// added.
type Field struct {
	Name  string
	Value Value
}

// A Struct is an ordered collection of fields. Ion structs may repeat field
// names; wire decoding preserves every field in the order it appeared.
// Equality between structs (see Value.Equal) is a multiset over (name,
// value) pairs, not an order-sensitive comparison - two structs with the
// same fields in different orders are the same Ion value, even though their
// wire encodings and Ion Hash child orderings may differ.
type Struct struct {
	fields []Field
}

// NewStruct builds a Struct from the given fields, preserving order.
func NewStruct(fields ...Field) *Struct {
	return &Struct{fields: append([]Field{}, fields...)}
}

// Len returns the number of fields, counting repeats.
func (s *Struct) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns the struct's fields in wire order. The returned slice must
// not be mutated.
func (s *Struct) Fields() []Field {
	if s == nil {
		return nil
	}
	return s.fields
}

// Find returns the value of the first field named name, if any.
func (s *Struct) Find(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// FindAll returns the values of every field named name, in wire order.
func (s *Struct) FindAll(name string) []Value {
	if s == nil {
		return nil
	}
	var out []Value
	for _, f := range s.fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// With returns a copy of s with an additional (name, value) field appended.
func (s *Struct) With(name string, v Value) *Struct {
	fields := append([]Field{}, s.Fields()...)
	fields = append(fields, Field{Name: name, Value: v})
	return &Struct{fields: fields}
}
