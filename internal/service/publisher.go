package service

import "github.com/hadirku/hadirku-api/internal/events"

// InstrumentedPublisher counts every published event before delegating to
// the real notifier.
type InstrumentedPublisher struct {
	next    events.Publisher
	metrics *MetricsService
}

// NewInstrumentedPublisher wraps a publisher with metrics.
func NewInstrumentedPublisher(next events.Publisher, metrics *MetricsService) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, metrics: metrics}
}

// Publish implements events.Publisher.
func (p *InstrumentedPublisher) Publish(evt events.Event) {
	if p.metrics != nil {
		p.metrics.RecordEventPublished(evt.Name)
	}
	p.next.Publish(evt)
}
