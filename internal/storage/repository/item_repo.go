// Package repository contains database repositories for collection data.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cardbinder/cardbinder/internal/storage/models"
)

// ItemRepository handles database operations for collection items.
type ItemRepository interface {
	// GetQuantities retrieves all items a user owns for the given card IDs
	// in a single batched query.
	GetQuantities(ctx context.Context, userID string, cardIDs []string) ([]*models.CollectionItem, error)

	// GetHoldings retrieves every item the user owns with quantity > 0.
	GetHoldings(ctx context.Context, userID string) ([]*models.CollectionItem, error)

	// GetCardItems retrieves all owned variants of a single card.
	GetCardItems(ctx context.Context, userID, cardID string) ([]*models.CollectionItem, error)

	// UpsertItem inserts or updates the quantity for one (card, variant) key.
	UpsertItem(ctx context.Context, userID, cardID, variant string, quantity int) error

	// DeleteItem removes one (card, variant) row.
	DeleteItem(ctx context.Context, userID, cardID, variant string) error
}

// itemRepository is the concrete implementation of ItemRepository.
type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new collection item repository.
func NewItemRepository(db *sql.DB) ItemRepository {
	return &itemRepository{db: db}
}

// GetQuantities retrieves all items a user owns for the given card IDs.
func (r *itemRepository) GetQuantities(ctx context.Context, userID string, cardIDs []string) ([]*models.CollectionItem, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cardIDs)), ",")
	query := fmt.Sprintf(`
		SELECT user_id, card_id, variant, quantity, updated_at
		FROM collection_items
		WHERE user_id = ? AND card_id IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(cardIDs)+1)
	args = append(args, userID)
	for _, id := range cardIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quantities: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanItems(rows)
}

// GetHoldings retrieves every item the user owns with quantity > 0.
func (r *itemRepository) GetHoldings(ctx context.Context, userID string) ([]*models.CollectionItem, error) {
	query := `
		SELECT user_id, card_id, variant, quantity, updated_at
		FROM collection_items
		WHERE user_id = ? AND quantity > 0
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanItems(rows)
}

// GetCardItems retrieves all owned variants of a single card.
func (r *itemRepository) GetCardItems(ctx context.Context, userID, cardID string) ([]*models.CollectionItem, error) {
	query := `
		SELECT user_id, card_id, variant, quantity, updated_at
		FROM collection_items
		WHERE user_id = ? AND card_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanItems(rows)
}

// UpsertItem inserts or updates the quantity for one (card, variant) key.
func (r *itemRepository) UpsertItem(ctx context.Context, userID, cardID, variant string, quantity int) error {
	query := `
		INSERT INTO collection_items (user_id, card_id, variant, quantity, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, card_id, variant) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, userID, cardID, variant, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	return nil
}

// DeleteItem removes one (card, variant) row.
func (r *itemRepository) DeleteItem(ctx context.Context, userID, cardID, variant string) error {
	query := `DELETE FROM collection_items WHERE user_id = ? AND card_id = ? AND variant = ?`

	_, err := r.db.ExecContext(ctx, query, userID, cardID, variant)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func scanItems(rows *sql.Rows) ([]*models.CollectionItem, error) {
	var items []*models.CollectionItem
	for rows.Next() {
		item := &models.CollectionItem{}
		err := rows.Scan(&item.UserID, &item.CardID, &item.Variant, &item.Quantity, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}
