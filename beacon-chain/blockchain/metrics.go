package blockchain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "beacon_block_processing_milliseconds",
		Help: "Time spent applying an incoming block's state transition, in milliseconds.",
		Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	blockRejectedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_block_rejected_total",
		Help: "Count of incoming blocks rejected, by reason.",
	}, []string{"reason"})
	attestationRejectedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_attestation_rejected_total",
		Help: "Count of incoming attestations rejected, by reason.",
	}, []string{"reason"})
	headElectionErrorCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_head_election_error_total",
		Help: "Count of fork_choice() calls that failed; the process continues and retries on the next call.",
	})
	reorgCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_reorg_total",
		Help: "Count of head elections that resulted in a reorg away from the previous head.",
	})
)
