package model

import "context"

type WishlistAction string

const (
	WishlistAdd    WishlistAction = "add"
	WishlistRemove WishlistAction = "remove"
)

// SyncClient is the personalization backend. Failures are *AuthError or
// *NetworkError; nothing is retried.
type SyncClient interface {
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, form RegistrationForm) error
	FetchProfile(ctx context.Context, username string) (Profile, error)
	FetchPreferences(ctx context.Context, username string) ([]CatalogItem, error)
	FetchWishlist(ctx context.Context, username string) ([]CatalogItem, error)
	ToggleWishlist(ctx context.Context, username string, itemID ItemID, action WishlistAction) error
}

// CatalogSource is the read-only external catalog. limit <= 0 means everything.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, limit int) ([]CatalogItem, error)
}
