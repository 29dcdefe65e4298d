package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for commands and sent messages, new users,
// record operations and histograms for backend and database latency.
type Metrics struct {
	CommandReceived  *prometheus.CounterVec   // Counter for received commands and button presses
	SentMessages     *prometheus.CounterVec   // Counter for sent messages
	NewUsers         prometheus.Counter       // Counter for new users
	RecordOperations *prometheus.CounterVec   // Counter for record operations by outcome
	BackendDuration  *prometheus.HistogramVec // Histogram for backend request durations
	DBQueryDuration  *prometheus.HistogramVec // Histogram for database query durations
	SessionOps       *prometheus.CounterVec   // Counter for session store operations
	ExportGeneration prometheus.Histogram     // Histogram for record export durations
}

// NewMetrics creates a new Metrics instance registered on the provided Prometheus Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CommandReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_commands_received_total",
			Help: "Total number of used commands",
		}, []string{"command"}), // command: /start, get, create, toggle
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, error, document, respond
		NewUsers: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nomina_new_users_total",
			Help: "Total number of new users via /start command",
		}),
		RecordOperations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_record_operations_total",
			Help: "Record operations by entity, operation and outcome",
		}, []string{"entity", "operation", "outcome"}), // outcome: success, invalid, busy, failed, superseded
		BackendDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nomina_backend_request_duration_seconds",
			Help:    "Duration of backend HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource", "code"}), // code: 200, 404, transport
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nomina_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_language', 'set_database'
		SessionOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nomina_session_operations_total",
			Help: "Session store operations",
		}, []string{"operation", "result"}), // operation: load, save; result: hit, miss, error
		ExportGeneration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "nomina_export_generation_duration_seconds",
			Help: "Duration of record card excel generation.",
		}),
	}
}
