// Package models defines the row types read from and written to storage.
package models

import "time"

// CollectionItem represents one owned print variant of a card.
// Rows are unique per (user, card, variant); a quantity of zero is
// equivalent to the row being absent.
type CollectionItem struct {
	UserID    string
	CardID    string
	Variant   string // stored variant code, normalized via internal/variant on read
	Quantity  int
	UpdatedAt time.Time
}
