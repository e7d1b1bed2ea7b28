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

package backend

import (
	"fmt"
	"strings"
)

const (
	placeholder = "{}"
	escapeChar  = '\\'
)

// FormatBraces replaces each "{}" in format with the next argument. A
// trailing error argument is never substituted, it is returned as the
// failure. Placeholders without an argument are kept, "\{}" renders a
// literal "{}" and "\\{}" a backslash followed by the argument.
//
// When no argument is left to substitute format is returned unchanged.
func FormatBraces(format string, args []any) (string, error) {
	var failure error
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			failure = err
			args = args[:len(args)-1]
		}
	}
	if len(args) == 0 {
		return format, failure
	}

	var sb strings.Builder
	sb.Grow(len(format) + 16*len(args))

	next := 0
	rest := format
	for next < len(args) {
		idx := strings.Index(rest, placeholder)
		if idx < 0 {
			break
		}
		escaped := idx > 0 && rest[idx-1] == escapeChar
		doubleEscaped := idx > 1 && rest[idx-2] == escapeChar
		switch {
		case escaped && !doubleEscaped:
			sb.WriteString(rest[:idx-1])
			sb.WriteString(placeholder)
		case escaped && doubleEscaped:
			sb.WriteString(rest[:idx-1])
			sb.WriteString(renderArg(args[next]))
			next++
		default:
			sb.WriteString(rest[:idx])
			sb.WriteString(renderArg(args[next]))
			next++
		}
		rest = rest[idx+len(placeholder):]
	}
	sb.WriteString(rest)
	return sb.String(), failure
}

func renderArg(arg any) string {
	if arg == nil {
		return "null"
	}
	return fmt.Sprint(arg)
}
