// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package vote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outcomesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tally_votes",
	Name:      "outcomes_total",
	Help:      "total number of vote transactions by terminal status",
}, []string{"status"})
