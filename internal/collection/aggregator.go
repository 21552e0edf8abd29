package collection

import (
	"context"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cardbinder/cardbinder/internal/storage/models"
	"github.com/cardbinder/cardbinder/internal/variant"
)

// HoldingsReader is the storage capability the aggregator needs for items.
type HoldingsReader interface {
	GetHoldings(ctx context.Context, userID string) ([]*models.CollectionItem, error)
}

// PriceReader is the pricing capability the aggregator needs.
type PriceReader interface {
	GetPrices(ctx context.Context, cardIDs []string, source string) (map[string]decimal.Decimal, error)
}

// Summary holds collection-wide statistics, computed on demand and never
// stored.
type Summary struct {
	TotalDistinctCards int             `json:"totalDistinctCards"`
	TotalQuantity      int             `json:"totalQuantity"`
	TotalValue         string          `json:"totalValue"`   // decimal string, rounded to the currency fraction
	DisplayValue       string          `json:"displayValue"` // formatted with the currency symbol
	Currency           string          `json:"currency"`
	PricingSource      PricingSource   `json:"pricingSource"`
	Metadata           SummaryMetadata `json:"metadata"`
}

// SummaryMetadata carries processing counters for observability. Nothing in
// it affects correctness.
type SummaryMetadata struct {
	VariantGroupsMerged    int `json:"variantGroupsMerged"`
	UnknownVariantsDropped int `json:"unknownVariantsDropped"`
	CardsPriced            int `json:"cardsPriced"`
	CardsUnpriced          int `json:"cardsUnpriced"`
}

// Aggregator computes collection summaries from full holdings plus a bulk
// price lookup.
type Aggregator struct {
	items  HoldingsReader
	prices PriceReader
}

// NewAggregator creates a new Aggregator.
func NewAggregator(items HoldingsReader, prices PriceReader) *Aggregator {
	return &Aggregator{items: items, prices: prices}
}

// Summarize walks the user's full holdings and values them under the given
// pricing source.
//
// Unlike bulk quantity resolution this path fails closed: a wrong collection
// value is worse than no value, so storage or pricing failures surface as
// errors. Cards without a price entry still count toward distinct-card and
// quantity totals and contribute zero value. Sums stay in decimal; rounding
// happens once, at presentation.
func (a *Aggregator) Summarize(ctx context.Context, userID string, source PricingSource) (*Summary, error) {
	holdings, err := a.items.GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}

	meta := SummaryMetadata{}
	perCard := make(map[string]int)
	totalQuantity := 0

	for _, item := range holdings {
		if _, ok := variant.ToUIVariant(item.Variant); !ok {
			meta.UnknownVariantsDropped++
			continue
		}
		if _, seen := perCard[item.CardID]; seen {
			meta.VariantGroupsMerged++
		}
		perCard[item.CardID] += item.Quantity
		totalQuantity += item.Quantity
	}

	cardIDs := make([]string, 0, len(perCard))
	for cardID := range perCard {
		cardIDs = append(cardIDs, cardID)
	}

	prices := map[string]decimal.Decimal{}
	if len(cardIDs) > 0 {
		prices, err = a.prices.GetPrices(ctx, cardIDs, string(source))
		if err != nil {
			return nil, fmt.Errorf("failed to read prices: %w", err)
		}
	}

	totalValue := decimal.Zero
	for cardID, quantity := range perCard {
		price, ok := prices[cardID]
		if !ok {
			meta.CardsUnpriced++
			continue
		}
		meta.CardsPriced++
		totalValue = totalValue.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	}

	currency := money.GetCurrency(source.Currency())
	fraction := int32(currency.Fraction)
	minorUnits := totalValue.Shift(fraction).Round(0).IntPart()

	return &Summary{
		TotalDistinctCards: len(perCard),
		TotalQuantity:      totalQuantity,
		TotalValue:         totalValue.StringFixed(fraction),
		DisplayValue:       money.New(minorUnits, currency.Code).Display(),
		Currency:           currency.Code,
		PricingSource:      source,
		Metadata:           meta,
	}, nil
}
