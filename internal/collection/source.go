// Package collection implements bulk quantity resolution and collection
// valuation over the storage repositories.
package collection

import (
	"errors"
	"fmt"
	"strings"
)

// PricingSource identifies a market-data origin used to value cards.
type PricingSource string

const (
	SourceTCGPlayer  PricingSource = "tcgplayer"
	SourceCardmarket PricingSource = "cardmarket"
)

// DefaultSource is used when a request does not pick a source.
const DefaultSource = SourceTCGPlayer

// ErrUnknownSource is returned when a pricing source is not in the known set.
var ErrUnknownSource = errors.New("unknown pricing source")

// ParseSource validates a pricing source selector.
func ParseSource(s string) (PricingSource, error) {
	switch PricingSource(strings.ToLower(strings.TrimSpace(s))) {
	case SourceTCGPlayer:
		return SourceTCGPlayer, nil
	case SourceCardmarket:
		return SourceCardmarket, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownSource, s, SourceTCGPlayer, SourceCardmarket)
	}
}

// Currency returns the ISO currency code the source quotes prices in.
func (s PricingSource) Currency() string {
	if s == SourceCardmarket {
		return "EUR"
	}
	return "USD"
}
