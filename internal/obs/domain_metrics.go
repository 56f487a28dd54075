package obs

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dukaanbill/backend-billing/internal/events"
)

var (
	domainOnce sync.Once

	// InvoiceFinalizedTotal counts archived invoices.
	InvoiceFinalizedTotal prometheus.Counter
	// DraftEventTotal counts draft lifecycle events by topic.
	DraftEventTotal *prometheus.CounterVec
	// ReceiptExportTotal counts receipt downloads by format.
	ReceiptExportTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers billing-specific
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceFinalizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_finalized_total",
			Help:      "Number of invoices archived to history.",
		})
		DraftEventTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_event_total",
			Help:      "Draft lifecycle events by topic.",
		}, []string{"topic"})
		ReceiptExportTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_export_total",
			Help:      "Receipt downloads by format.",
		}, []string{"format"})

		mustRegisterCollector(reg, InvoiceFinalizedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoiceFinalizedTotal = v
			}
		})
		mustRegisterCollector(reg, DraftEventTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DraftEventTotal = v
			}
		})
		mustRegisterCollector(reg, ReceiptExportTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReceiptExportTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

// MetricsNotifier counts draft events as they flow over the bus.
type MetricsNotifier struct{}

// Notify implements events.Notifier.
func (MetricsNotifier) Notify(_ context.Context, event events.Event) error {
	if DraftEventTotal != nil {
		DraftEventTotal.WithLabelValues(event.Topic).Inc()
	}
	if event.Topic == events.TopicInvoiceFinalized && InvoiceFinalizedTotal != nil {
		InvoiceFinalizedTotal.Inc()
	}
	return nil
}
