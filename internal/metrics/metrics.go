package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	SubmittedSearches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panel_searches_submitted_total",
			Help: "Total number of collection searches submitted.",
		},
	)
	StatusPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panel_status_polls_total",
			Help: "Total number of snapshot status checks.",
		},
	)
	FetchedResultSets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panel_result_sets_fetched_total",
			Help: "Total number of result sets fetched from the warehouse.",
		},
	)
	CollectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panel_collection_duration_seconds",
			Help:    "Time from submitting a search until its snapshot is ready.",
			Buckets: []float64{60, 120, 300, 480, 600, 900},
		},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(SubmittedSearches)
	prometheus.MustRegister(StatusPolls)
	prometheus.MustRegister(FetchedResultSets)
	prometheus.MustRegister(CollectionDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
	}()
}
