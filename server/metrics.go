package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentchat_chat_requests_total",
		Help: "Completed chat turns partitioned by the tool that answered.",
	}, []string{"tool"})

	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agentchat_chat_duration_seconds",
		Help:    "Wall-clock duration of chat turns.",
		Buckets: prometheus.DefBuckets,
	})
)
