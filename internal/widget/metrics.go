// internal/widget/metrics.go
package widget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requestOutcomes counts terminal states of widget script requests so
// dashboards can separate token problems from domain problems.
var requestOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "widget_requests_total",
	Help: "Widget script requests by endpoint and terminal outcome.",
}, []string{"endpoint", "outcome"})

const (
	outcomeServed        = "served"
	outcomeMissingToken  = "missing_token"
	outcomeInvalidToken  = "invalid_token"
	outcomeMissingOrigin = "missing_origin"
	outcomeDenied        = "domain_denied"
)
