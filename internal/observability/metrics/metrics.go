package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters for the contact linking flow.
type ContactMetrics struct {
	directoryTotal  *prometheus.CounterVec
	linksTotal      *prometheus.CounterVec
	importsSkipped  prometheus.Counter
	searchesTotal   *prometheus.CounterVec
	linkingDuration prometheus.Histogram
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		directoryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "contacts",
			Name:      "directory_lookups_total",
			Help:      "Directory find-or-create outcomes",
		}, []string{"outcome"}),
		linksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "contacts",
			Name:      "links_total",
			Help:      "Link mutations by operation and status",
		}, []string{"operation", "status"}),
		importsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "contacts",
			Name:      "import_skipped_total",
			Help:      "Contacts skipped during bulk import",
		}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "contacts",
			Name:      "searches_total",
			Help:      "List/search requests by scope",
		}, []string{"search_by"}),
		linkingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contactbook",
			Subsystem: "contacts",
			Name:      "linking_duration_seconds",
			Help:      "Duration of the add-contact transaction",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.directoryTotal, m.linksTotal, m.importsSkipped, m.searchesTotal, m.linkingDuration)
	return m
}

// ObserveDirectory records a find-or-create outcome ("created" or "reused").
func (m *ContactMetrics) ObserveDirectory(created bool) {
	if m == nil {
		return
	}
	outcome := "reused"
	if created {
		outcome = "created"
	}
	m.directoryTotal.WithLabelValues(outcome).Inc()
}

// ObserveLink records a link mutation outcome.
func (m *ContactMetrics) ObserveLink(operation, status string) {
	if m == nil {
		return
	}
	m.linksTotal.WithLabelValues(operation, status).Inc()
}

// ObserveImportSkipped counts one skipped bulk-import entry.
func (m *ContactMetrics) ObserveImportSkipped() {
	if m == nil {
		return
	}
	m.importsSkipped.Inc()
}

// ObserveSearch records a list request by search scope.
func (m *ContactMetrics) ObserveSearch(searchBy string) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(searchBy).Inc()
}

// ObserveLinkingDuration records the add-contact transaction latency.
func (m *ContactMetrics) ObserveLinkingDuration(seconds float64) {
	if m == nil {
		return
	}
	m.linkingDuration.Observe(seconds)
}

// AuthMetrics exposes counters for the auth flows.
type AuthMetrics struct {
	registrationsTotal *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
	tokenRefreshTotal  *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		registrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by status",
		}, []string{"status"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by status",
		}, []string{"status"}),
		tokenRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contactbook",
			Subsystem: "auth",
			Name:      "token_refresh_total",
			Help:      "Refresh-token exchanges by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.registrationsTotal, m.loginsTotal, m.tokenRefreshTotal)
	return m
}

// ObserveRegistration records a registration attempt.
func (m *AuthMetrics) ObserveRegistration(status string) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(status).Inc()
}

// ObserveLogin records a login attempt.
func (m *AuthMetrics) ObserveLogin(status string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(status).Inc()
}

// ObserveTokenRefresh records a refresh-token exchange.
func (m *AuthMetrics) ObserveTokenRefresh(status string) {
	if m == nil {
		return
	}
	m.tokenRefreshTotal.WithLabelValues(status).Inc()
}
