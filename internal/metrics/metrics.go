package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_messages_consumed_total",
			Help: "Messages fetched from the bus, per topic",
		},
		[]string{"topic"},
	)

	MessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_messages_failed_total",
			Help: "Messages whose processing returned an error, per topic",
		},
		[]string{"topic"},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_verification_emails_sent_total",
			Help: "Verification emails handed to the provider",
		},
	)

	EmailsLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_verification_emails_limited_total",
			Help: "Verification requests dropped by the per-address rate limit",
		},
	)

	TrendingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_trending_runs_total",
			Help: "Trending recomputes, by result",
		},
		[]string{"result"},
	)

	Registry = prometheus.NewRegistry()
)

func init() {
	Registry.MustRegister(MessagesConsumed, MessagesFailed, EmailsSent, EmailsLimited, TrendingRuns)
}
