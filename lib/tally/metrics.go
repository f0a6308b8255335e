// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tally

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appliedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally_events",
		Name:      "applied_total",
		Help:      "total number of voted events applied to the roster",
	})
	droppedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally_events",
		Name:      "dropped_total",
		Help:      "total number of voted events for candidates not in the roster",
	})
	votesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tally_candidate",
		Name:      "votes",
		Help:      "current vote count of each candidate",
	}, []string{"candidate"})
)
