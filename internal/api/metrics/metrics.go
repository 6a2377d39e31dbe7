// Package metrics defines and registers all custom Prometheus metrics for
// the library lending API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// LoansIssuedTotal counts successfully issued loans.
var LoansIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_issued_total",
		Help:      "Total number of loans issued.",
	},
)

// LoansReturnedTotal counts returned loans.
// Label:
//   - late: "true" when a fine was assessed, "false" otherwise
var LoansReturnedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_returned_total",
		Help:      "Total number of loans returned, by lateness.",
	},
	[]string{"late"},
)

// FinesAssessedTotal accumulates the currency amount of fines assessed at
// return time. Fines are computed and stored, never collected here.
var FinesAssessedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_total",
		Help:      "Total currency amount of late fines assessed.",
	},
)

// BooksImportedTotal counts bulk-import row outcomes.
// Label:
//   - result: "imported" or "skipped"
var BooksImportedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_imported_total",
		Help:      "Total number of bulk-import rows, by outcome.",
	},
	[]string{"result"},
)
