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

package caller

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct{}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "github.com/GoogleCloudPlatform/logbridge/internal/caller", Identity(0))

	func() {
		assert.Equal(t, "github.com/GoogleCloudPlatform/logbridge/internal/caller", Identity(0))
	}()
}

func TestPackageOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main.main", "main"},
		{"github.com/acme/app/db.(*Store).Get", "github.com/acme/app/db"},
		{"github.com/acme/app/db.init.0.func1", "github.com/acme/app/db"},
		{"gopkg.in/yaml%2ev3.Unmarshal", "gopkg.in/yaml.v3"},
		{"noDot", "noDot"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, PackageOf(tc.in))
		})
	}
}

func TestTypeName(t *testing.T) {
	const pkg = "github.com/GoogleCloudPlatform/logbridge/internal/caller"

	assert.Equal(t, pkg+".sample", TypeName(sample{}))
	assert.Equal(t, pkg+".sample", TypeName(&sample{}))
	assert.Equal(t, pkg+".sample", TypeName(reflect.TypeOf(sample{})))
	assert.Equal(t, "int", TypeName(1))
	assert.Equal(t, "[]string", TypeName([]string{}))
	assert.Equal(t, "unknown", TypeName(nil))
}
