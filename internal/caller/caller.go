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

// Package caller derives logger identities from the call stack and from Go
// types.
package caller

import (
	"reflect"
	"runtime"
	"strings"
)

// unknown is returned when the stack can't be inspected.
const unknown = "unknown"

// Identity returns the package path of the function skip frames above the
// caller of Identity. Identity(0) names the package of the code calling
// Identity.
func Identity(skip int) string {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+2, pcs) == 0 {
		return unknown
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	if frame.Function == "" {
		return unknown
	}
	return PackageOf(frame.Function)
}

// PackageOf returns the package path of a fully qualified function name as
// reported by runtime.Frame, e.g. "github.com/acme/app/db.(*Store).Get" is in
// "github.com/acme/app/db". Dots the linker escaped in the last path element
// are restored.
func PackageOf(function string) string {
	slash := strings.LastIndex(function, "/")
	pkg := function
	if dot := strings.Index(function[slash+1:], "."); dot >= 0 {
		pkg = function[:slash+1+dot]
	}
	return strings.ReplaceAll(pkg, "%2e", ".")
}

// TypeName returns the fully qualified name of the type of v, pointers are
// dereferenced. v may be a reflect.Type. Unnamed types render as %T does.
func TypeName(v any) string {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return unknown
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
