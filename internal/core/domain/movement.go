package domain

import "time"

// MovementKind tells whether stock left or entered the shop.
type MovementKind string

const (
	MovementPurchase MovementKind = "purchase"
	MovementRestock  MovementKind = "restock"
)

// StockMovement is the audit record of a successful stock adjustment.
type StockMovement struct {
	SweetID   string       `json:"sweetId"`
	Kind      MovementKind `json:"kind"`
	Quantity  int          `json:"quantity"`
	Resulting int          `json:"resultingQuantity"`
	ActorID   string       `json:"actorId"`
	At        time.Time    `json:"at"`
}
