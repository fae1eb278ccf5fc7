package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CartChangeAdded       = "added"
	CartChangeRemoved     = "removed"
	CartChangeIncremented = "incremented"
	CartChangeDecremented = "decremented"
	CartChangeReset       = "reset"
)

type CartChanged struct {
	Change        string
	ItemID        ItemID
	TotalQuantity int
	LineCount     int
}

func (e CartChanged) Type() string { return "CartChanged" }

type SessionChanged struct {
	Previous Identity
	Current  Identity
}

func (e SessionChanged) Type() string { return "SessionChanged" }

type TopologyRemounted struct {
	Topology   Topology
	Generation int
}

func (e TopologyRemounted) Type() string { return "TopologyRemounted" }

// WishlistItemAdded and WishlistItemRemoved back the transient confirmation notice.
type WishlistItemAdded struct {
	Username string
	ItemID   ItemID
}

func (e WishlistItemAdded) Type() string { return "WishlistItemAdded" }

type WishlistItemRemoved struct {
	Username string
	ItemID   ItemID
}

func (e WishlistItemRemoved) Type() string { return "WishlistItemRemoved" }

// WishlistToggleFailed backs the blocking error notice.
type WishlistToggleFailed struct {
	Username string
	ItemID   ItemID
	Message  string
}

func (e WishlistToggleFailed) Type() string { return "WishlistToggleFailed" }

type OrderConfirmed struct {
	OrderID   uuid.UUID
	Total     decimal.Decimal
	LineCount int
}

func (e OrderConfirmed) Type() string { return "OrderConfirmed" }
