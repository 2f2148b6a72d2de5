package services

import (
	"context"
	"fmt"
	"log/slog"

	"spotcheck/internal/amqp"
	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

// EventPublisher notifies downstream consumers of item changes.
// *amqp.Client satisfies it.
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, event amqp.ItemEvent, itemID, ownerID string) error
	Close() error
}

// ItemService orchestrates item operations across the remote store and the
// event bus.
type ItemService struct {
	store  remote.ItemStore
	events EventPublisher
}

func NewItemService(store remote.ItemStore, events EventPublisher) *ItemService {
	return &ItemService{
		store:  store,
		events: events,
	}
}

// List returns the owner's items in server order.
func (s *ItemService) List(ctx context.Context, ownerID string) ([]core.Item, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Create saves an item and publishes a created event. A publish failure does
// not fail the request; the item is already persisted.
func (s *ItemService) Create(ctx context.Context, draft core.Item) (core.Item, error) {
	stored, err := s.store.Create(ctx, draft)
	if err != nil {
		return core.Item{}, fmt.Errorf("save item: %w", err)
	}

	if err := s.publish(ctx, amqp.ItemCreated, stored.ID, stored.OwnerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"item_id", stored.ID, "error", err)
	}
	return stored, nil
}

// Delete removes an item and publishes a deleted event.
func (s *ItemService) Delete(ctx context.Context, ownerID, itemID string) error {
	if err := s.store.Delete(ctx, ownerID, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if err := s.publish(ctx, amqp.ItemDeleted, itemID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"item_id", itemID, "error", err)
	}
	return nil
}

// UpdateStatus changes an item's renewal status and publishes a status event.
func (s *ItemService) UpdateStatus(ctx context.Context, ownerID, itemID, status string) error {
	if err := s.store.UpdateStatus(ctx, ownerID, itemID, status); err != nil {
		return fmt.Errorf("update item status: %w", err)
	}

	if err := s.publish(ctx, amqp.ItemStatusChanged, itemID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish status event",
			"item_id", itemID, "error", err)
	}
	return nil
}

func (s *ItemService) publish(ctx context.Context, event amqp.ItemEvent, itemID, ownerID string) error {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping event", "event", event)
		return nil
	}
	return s.events.PublishItemEvent(ctx, event, itemID, ownerID)
}

// Close closes both the store and the event bus connections.
func (s *ItemService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close item service: %v", errs)
	}
	return nil
}
