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

package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "irule_render_duration_seconds",
			Help:    "Duration of template rendering in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
	renderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irule_render_errors_total",
			Help: "Total number of failed template renders",
		},
	)
)
