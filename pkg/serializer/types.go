// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import "context"

// URI schemes recognized for input references and output destinations.
const (
	ConfigMapURIScheme = "cm://"
	HTTPScheme         = "http://"
	HTTPSScheme        = "https://"
)

// Serializer writes a value to a destination in a configured format.
//
// The context parameter is used for cancellation and timeouts, particularly
// important for implementations that perform I/O operations (e.g., ConfigMap writes).
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// TableRenderer is implemented by values with a natural tabular form. The
// table format uses it instead of flattening the value.
type TableRenderer interface {
	TableRows() (columns []string, rows [][]string)
}
