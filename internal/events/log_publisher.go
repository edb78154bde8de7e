package events

import (
	"context"
	"log"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

// LogPublisher records events in the service log when no broker is configured.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) OrderPlaced(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error {
	p.logger.Printf("event %s session=%s ref=%s orders=%d", EventTypeOrderPlaced, s.ID, out.Reference, len(out.Orders))
	return nil
}

func (p *LogPublisher) CheckoutFailed(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error {
	p.logger.Printf("event %s session=%s ref=%s", EventTypeCheckoutFailed, s.ID, out.Reference)
	return nil
}
