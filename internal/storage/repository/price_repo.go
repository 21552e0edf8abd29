package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// priceChunkSize bounds the number of parameters per IN clause. SQLite caps
// bound parameters per statement, and a full-collection valuation can ask
// for prices on an unbounded card set.
const priceChunkSize = 500

// PriceRepository handles database operations for card prices.
type PriceRepository interface {
	// GetPrices retrieves unit prices for the given cards under one pricing
	// source. Cards without a price entry are absent from the result.
	GetPrices(ctx context.Context, cardIDs []string, source string) (map[string]decimal.Decimal, error)

	// UpsertPrice inserts or updates a price entry.
	UpsertPrice(ctx context.Context, cardID, source string, amount decimal.Decimal) error
}

// priceRepository is the concrete implementation of PriceRepository.
type priceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

// GetPrices retrieves unit prices for the given cards under one pricing source.
func (r *priceRepository) GetPrices(ctx context.Context, cardIDs []string, source string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(cardIDs))

	for start := 0; start < len(cardIDs); start += priceChunkSize {
		end := start + priceChunkSize
		if end > len(cardIDs) {
			end = len(cardIDs)
		}
		if err := r.getPricesChunk(ctx, cardIDs[start:end], source, prices); err != nil {
			return nil, err
		}
	}

	return prices, nil
}

func (r *priceRepository) getPricesChunk(ctx context.Context, cardIDs []string, source string, prices map[string]decimal.Decimal) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cardIDs)), ",")
	query := fmt.Sprintf(`
		SELECT card_id, amount
		FROM card_prices
		WHERE source = ? AND card_id IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(cardIDs)+1)
	args = append(args, source)
	for _, id := range cardIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get prices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var cardID, amount string
		if err := rows.Scan(&cardID, &amount); err != nil {
			return fmt.Errorf("failed to scan price: %w", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid price amount %q for card %s: %w", amount, cardID, err)
		}
		prices[cardID] = value
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating prices: %w", err)
	}

	return nil
}

// UpsertPrice inserts or updates a price entry.
func (r *priceRepository) UpsertPrice(ctx context.Context, cardID, source string, amount decimal.Decimal) error {
	query := `
		INSERT INTO card_prices (card_id, source, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(card_id, source) DO UPDATE SET
			amount = excluded.amount,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, cardID, source, amount.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}

	return nil
}
