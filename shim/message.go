//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package shim

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// NullMessage replaces a nil or empty message.
	NullMessage = "Null message"
	// NullFormat replaces an empty format template.
	NullFormat = "Null format"
)

// Message normalizes a message object: nil and "" become NullMessage, errors
// and Stringers render through their own method, anything else through
// fmt.Sprint.
func Message(v any) string {
	switch m := v.(type) {
	case nil:
		return NullMessage
	case string:
		if m == "" {
			return NullMessage
		}
		return m
	}
	if s := Stringify(v); s != "" {
		return s
	}
	return NullMessage
}

// Format renders a printf template, "%%" is unescaped even without
// arguments. An empty template becomes NullFormat and its arguments are
// ignored. Mismatched verbs and arguments render fmt's in-band diagnostics.
func Format(format string, args ...any) string {
	if format == "" {
		return NullFormat
	}
	return fmt.Sprintf(format, args...)
}

// Stringify renders v the way Message does without the null replacement.
// Errors and Stringers go through fmt so a nil receiver renders "<nil>" and a
// panicking method renders fmt's PANIC marker instead of unwinding the
// caller.
func Stringify(v any) string {
	switch m := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return m
	default:
		return fmt.Sprint(m)
	}
}

// AppendField appends " key=value" to sb, quoting the value when it contains
// spaces, quotes or equal signs.
func AppendField(sb *strings.Builder, key string, value any) {
	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')
	s := Stringify(value)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	sb.WriteString(s)
}
