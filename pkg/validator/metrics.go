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

package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "irule_validation_duration_seconds",
			Help:    "Duration of document validation walks in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	validationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irule_validation_runs_total",
			Help: "Total number of validation walks by outcome (valid, invalid, error)",
		},
		[]string{"status"},
	)

	validationFindings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irule_validation_findings_total",
			Help: "Total number of structural findings reported",
		},
	)
)
