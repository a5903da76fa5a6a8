package metrics

import (
	"context"

	"github.com/jamboree26/notifications/internal/entities"
	"github.com/jamboree26/notifications/internal/infrastructure/push"
)

// InstrumentedSender wraps a push.Sender and records delivery outcomes
// on every send.
type InstrumentedSender struct {
	next      push.Sender
	collector *Collector
	exporter  *PrometheusExporter
}

// InstrumentSender decorates a sender with delivery metrics.
// exporter may be nil.
func InstrumentSender(next push.Sender, collector *Collector, exporter *PrometheusExporter) *InstrumentedSender {
	return &InstrumentedSender{next: next, collector: collector, exporter: exporter}
}

// Send delegates to the wrapped sender and records the outcome counts
func (s *InstrumentedSender) Send(ctx context.Context, tokens []string, notification *entities.Notification) (*push.Result, error) {
	result, err := s.next.Send(ctx, tokens, notification)
	if err != nil {
		return result, err
	}

	s.collector.RecordDelivery(result.SuccessCount, result.FailureCount)
	if s.exporter != nil {
		s.exporter.RecordDelivery(result.SuccessCount, result.FailureCount)
	}
	return result, nil
}
