package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnnotationsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mouthwatch_dashboard_annotations_added_total",
		Help: "Annotations committed to a patient, by severity.",
	}, []string{"severity"})

	PlacementsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mouthwatch_dashboard_placements_cancelled_total",
		Help: "Placements aborted because the operator gave no label.",
	})

	NotesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mouthwatch_dashboard_notes_saved_total",
		Help: "Clinical notes saves.",
	})

	FramingsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mouthwatch_dashboard_framings_applied_total",
		Help: "Default camera framings applied to a loaded mesh.",
	})

	EventsPublishFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mouthwatch_events_publish_failed_total",
		Help: "Dashboard events that could not be published, by type.",
	}, []string{"type"})

	NotesArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mouthwatch_archiver_notes_archived_total",
		Help: "Clinical notes written to the archive.",
	})

	ExternalFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mouthwatch_companion_external_failures_total",
		Help: "Failed calls to external services that degraded to the fallback message.",
	}, []string{"service"}) // analysis, chat

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mouthwatch_http_requests_total",
		Help: "HTTP requests served, by service, method and status code.",
	}, []string{"service", "method", "code"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
