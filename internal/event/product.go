package event

import (
	"context"
	"log/slog"
)

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

// ProductChangedEvent is published after a product was created or updated.
type ProductChangedEvent struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	// Discounts names the discount rules applied to Price.
	Discounts []string `json:"discounts,omitempty"`
}

type ProductDeletedEvent struct {
	ProductID int64 `json:"product_id"`
}

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event",
		slog.Int64("product_id", ev.ProductID),
		slog.Float64("price", ev.Price),
		slog.Any("discounts", ev.Discounts),
	)
	return nil
}

func (s *Service) handleProductUpdatedEvent(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product updated event",
		slog.Int64("product_id", ev.ProductID),
		slog.Float64("price", ev.Price),
		slog.Any("discounts", ev.Discounts),
	)
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event", slog.Int64("product_id", ev.ProductID))
	return nil
}
