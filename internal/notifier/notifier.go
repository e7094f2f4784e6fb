// Package notifier formats alert notices and hands them to the delivery
// transport.
package notifier

import (
	"github.com/ilhammtg/mhew-backend/internal/observability"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// Transport performs best-effort delivery of formatted text to a recipient.
type Transport interface {
	Send(recipientID, text string) error
}

// Notifier sends alert notices to subscribers. Delivery failures are logged
// and swallowed; they never fail the caller's tick.
type Notifier struct {
	transport Transport
	metrics   *observability.Metrics
}

// NewNotifier creates a notifier over the given transport.
func NewNotifier(transport Transport, metrics *observability.Metrics) *Notifier {
	return &Notifier{
		transport: transport,
		metrics:   metrics,
	}
}

// Notify delivers one notice of the given kind to a subscriber. The SYSTEM
// subscriber has no chat behind it and is skipped.
func (n *Notifier) Notify(subscriberID, kind, text string) {
	if subscriberID == storage.SystemSubscriber {
		logger.Debug().Str("kind", kind).Msg("System tick, no recipient to notify")
		return
	}

	if err := n.transport.Send(subscriberID, text); err != nil {
		n.metrics.DeliveryErrors.Inc()
		logger.Error().
			Err(err).
			Str("subscriber", subscriberID).
			Str("kind", kind).
			Msg("Failed to deliver notice")
		return
	}

	n.metrics.NoticesSent.WithLabelValues(kind).Inc()
	logger.Info().
		Str("subscriber", subscriberID).
		Str("kind", kind).
		Msg("Notice delivered")
}
