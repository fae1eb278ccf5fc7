package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/domain/model"
)

var ErrUnknownGrind = errors.New("grind option is not offered for this item")

// DetailsScreen works on its own snapshot of the item it was opened with.
type DetailsScreen struct {
	item     model.CatalogItem
	scope    *Scope
	cart     CartLedger
	wishlist *WishlistReconciler

	mu       sync.Mutex
	quantity int
	grind    string
}

func NewDetailsScreen(item model.CatalogItem, scope *Scope, cart CartLedger, wishlist *WishlistReconciler) *DetailsScreen {
	snapshot := item.Snapshot()
	return &DetailsScreen{
		item:     snapshot,
		scope:    scope,
		cart:     cart,
		wishlist: wishlist,
		quantity: 1,
		grind:    snapshot.Grinds()[0],
	}
}

// Enter seeds the wishlist flag; it reports false for anonymous viewers.
func (d *DetailsScreen) Enter() bool {
	return d.wishlist.Seed(d.item.ID)
}

func (d *DetailsScreen) Scope() *Scope { return d.scope }

func (d *DetailsScreen) Item() model.CatalogItem { return d.item.Snapshot() }

func (d *DetailsScreen) RoastLabel() string { return d.item.RoastLevel.Label() }

func (d *DetailsScreen) Quantity() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quantity
}

func (d *DetailsScreen) IncreaseQuantity() {
	d.mu.Lock()
	d.quantity++
	d.mu.Unlock()
}

func (d *DetailsScreen) DecreaseQuantity() {
	d.mu.Lock()
	if d.quantity > 1 {
		d.quantity--
	}
	d.mu.Unlock()
}

func (d *DetailsScreen) Grind() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grind
}

func (d *DetailsScreen) SelectGrind(grind string) error {
	for _, option := range d.item.Grinds() {
		if option == grind {
			d.mu.Lock()
			d.grind = grind
			d.mu.Unlock()
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownGrind, "%q", grind)
}

// PricePreview is the unrounded price of the chosen quantity.
func (d *DetailsScreen) PricePreview() decimal.Decimal {
	return d.item.Price.Mul(decimal.NewFromInt(int64(d.Quantity())))
}

func (d *DetailsScreen) AddToCart() model.CartLine {
	return d.cart.Add(d.item, d.Quantity())
}

func (d *DetailsScreen) InWishlist() bool {
	return d.wishlist.IsInWishlist(d.item.ID)
}

func (d *DetailsScreen) WishlistLabel() string {
	if d.InWishlist() {
		return "Remove from Wishlist"
	}
	return "Add to Wishlist"
}

func (d *DetailsScreen) ToggleWishlist(ctx context.Context) (ToggleOutcome, error) {
	return d.wishlist.Toggle(ctx, d.item.ID)
}
