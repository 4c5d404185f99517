package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_requests_total",
		Help: "Total number of requests evaluated by the filtering pipeline",
	})
	allowedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_allowed_total",
		Help: "Total number of requests allowed",
	})
	blockedStage1Total = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_blocked_stage1_total",
		Help: "Total number of requests blocked by the fast pattern match",
	})
	blockedStage2Total = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_blocked_stage2_total",
		Help: "Total number of requests blocked by the decision service",
	})
	errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_pipeline_errors_total",
		Help: "Total number of pipeline runs ending in an infrastructure error",
	})
	rulesLearnedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_rules_learned_total",
		Help: "Total number of rules promoted from decision-service verdicts",
	})
	analyzerFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_analyzer_failures_total",
		Help: "Total number of failed decision-service calls",
	})
	eventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_events_dropped_total",
		Help: "Total number of live-feed events dropped for slow subscribers",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		requestsTotal,
		allowedTotal,
		blockedStage1Total,
		blockedStage2Total,
		errorsTotal,
		rulesLearnedTotal,
		analyzerFailuresTotal,
		eventsDroppedTotal,
	)
}

// IncRequest increments the evaluated requests counter.
func IncRequest() { requestsTotal.Inc() }

// IncAllowed increments the allowed requests counter.
func IncAllowed() { allowedTotal.Inc() }

// IncBlockedStage1 increments the fast-path blocked counter.
func IncBlockedStage1() { blockedStage1Total.Inc() }

// IncBlockedStage2 increments the decision-service blocked counter.
func IncBlockedStage2() { blockedStage2Total.Inc() }

// IncError increments the pipeline error counter.
func IncError() { errorsTotal.Inc() }

// IncRuleLearned increments the learned rules counter.
func IncRuleLearned() { rulesLearnedTotal.Inc() }

// IncAnalyzerFailure increments the decision-service failure counter.
func IncAnalyzerFailure() { analyzerFailuresTotal.Inc() }

// IncEventDropped increments the dropped events counter.
func IncEventDropped() { eventsDroppedTotal.Inc() }
