package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotelbook"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_create_total",
			Help:      "Booking creation attempts by result.",
		},
		[]string{"result"},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transition_total",
			Help:      "Booking lifecycle transitions by target status and result.",
		},
		[]string{"status", "result"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Room availability checks by outcome.",
		},
		[]string{"outcome"},
	)

	invoicesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Count of invoices issued at checkout.",
		},
	)

	invoicedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoiced_amount_total",
			Help:      "Sum of invoice totals issued at checkout.",
		},
	)

	invoicesPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_paid_total",
			Help:      "Count of invoices flipped to paid.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2},
		},
		[]string{"route"},
	)

	sheetsSync = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_sync_total",
			Help:      "Invoice rows pushed to Google Sheets by result.",
		},
		[]string{"result"},
	)

	reportsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Occupancy workbooks built by trigger and result.",
		},
		[]string{"trigger", "result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Telegram messages to managers by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingTransition,
			availabilityChecks,
			invoicesCreated,
			invoicedAmount,
			invoicesPaid,
			httpRequests,
			httpDuration,
			sheetsSync,
			reportsBuilt,
			notifications,
		)
	})
}

func IncBookingCreated(result string) {
	bookingCreated.WithLabelValues(result).Inc()
}

func IncTransition(status, result string) {
	bookingTransition.WithLabelValues(status, result).Inc()
}

func IncAvailability(outcome string) {
	availabilityChecks.WithLabelValues(outcome).Inc()
}

// ObserveInvoice records an issued invoice and its total.
func ObserveInvoice(total float64) {
	invoicesCreated.Inc()
	invoicedAmount.Add(total)
}

func IncInvoicePaid() {
	invoicesPaid.Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, code string, seconds float64) {
	httpRequests.WithLabelValues(route, code).Inc()
	httpDuration.WithLabelValues(route).Observe(seconds)
}

func IncSheetsSync(result string) {
	sheetsSync.WithLabelValues(result).Inc()
}

func IncReport(trigger, result string) {
	reportsBuilt.WithLabelValues(trigger, result).Inc()
}

func IncNotification(kind, result string) {
	notifications.WithLabelValues(kind, result).Inc()
}
