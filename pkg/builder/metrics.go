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

package builder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

const (
	buildStatusSuccess = "success"
	buildStatusInvalid = "invalid"
	buildStatusError   = "error"
)

var (
	buildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irule_builds_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "irule_build_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	watchRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irule_watch_rebuilds_total",
			Help: "Total number of rebuilds triggered by file changes",
		},
	)
)

func recordBuild(err error, d time.Duration) {
	status := buildStatusSuccess
	switch {
	case err == nil:
	case apperrors.CodeOf(err) == apperrors.ErrCodeValidation:
		status = buildStatusInvalid
	default:
		status = buildStatusError
	}
	buildsTotal.WithLabelValues(status).Inc()
	buildDuration.Observe(d.Seconds())
}
