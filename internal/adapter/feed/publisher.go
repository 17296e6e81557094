package feed

import (
	"log/slog"

	"github.com/tokenbay/marketplace-backend/internal/domain"
)

// LogPublisher writes each event to the structured log.
type LogPublisher struct {
	Logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs events.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ev domain.MarketEvent) {
	p.Logger.Info("market_event",
		"event_id", ev.ID.String(),
		"type", string(ev.Type),
		"asset_contract", string(ev.AssetContract),
		"token_id", ev.TokenID,
		"price", ev.Price.String(),
		"seller", string(ev.Seller),
		"buyer", string(ev.Buyer),
	)
}

// Fanout delivers each event to every publisher in order.
type Fanout []domain.EventPublisher

// Publish forwards the event to all publishers.
func (f Fanout) Publish(ev domain.MarketEvent) {
	for _, p := range f {
		p.Publish(ev)
	}
}
