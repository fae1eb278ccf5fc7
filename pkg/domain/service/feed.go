package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

const (
	NoPreferencesMessage = "Please wait for our new product"
	SignInPromptMessage  = "Sign in to see picks for your taste"
)

// HomeScreen shows popular items for everyone and preference picks for a
// named viewer.
type HomeScreen struct {
	scope    *Scope
	catalog  model.CatalogSource
	client   model.SyncClient
	identity model.Identity
	limit    int
	logger   logrus.FieldLogger

	mu          sync.Mutex
	popular     []model.CatalogItem
	preferences []model.CatalogItem
	popularErr  error
}

func NewHomeScreen(scope *Scope, catalog model.CatalogSource, client model.SyncClient, identity model.Identity, limit int, logger logrus.FieldLogger) *HomeScreen {
	return &HomeScreen{
		scope:    scope,
		catalog:  catalog,
		client:   client,
		identity: identity,
		limit:    limit,
		logger:   logger.WithField("component", "home"),
	}
}

func (h *HomeScreen) Enter() {
	Launch(h.scope, "fetchPopular",
		func(ctx context.Context) ([]model.CatalogItem, error) {
			return h.catalog.FetchCatalog(ctx, h.limit)
		},
		func(items []model.CatalogItem, err error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if err != nil {
				h.logger.WithError(err).Warn("error fetching popular items")
				h.popularErr = err
				return
			}
			h.popular, h.popularErr = items, nil
		})

	if h.identity.IsAnonymous() {
		return
	}
	username := h.identity.Username()
	Launch(h.scope, "fetchPreferences",
		func(ctx context.Context) ([]model.CatalogItem, error) {
			return h.client.FetchPreferences(ctx, username)
		},
		func(items []model.CatalogItem, err error) {
			if err != nil {
				h.logger.WithError(err).Warn("error fetching preference items")
				return
			}
			h.mu.Lock()
			h.preferences = items
			h.mu.Unlock()
		})
}

func (h *HomeScreen) Popular() ([]model.CatalogItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.CatalogItem(nil), h.popular...), h.popularErr
}

func (h *HomeScreen) Preferences() []model.CatalogItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.CatalogItem(nil), h.preferences...)
}

// PreferenceNotice is the text shown instead of the preference list, or "".
func (h *HomeScreen) PreferenceNotice() string {
	if h.identity.IsAnonymous() {
		return SignInPromptMessage
	}
	if len(h.Preferences()) == 0 {
		return NoPreferencesMessage
	}
	return ""
}

// ExploreScreen lists the whole catalog under the viewer's filters.
type ExploreScreen struct {
	scope   *Scope
	catalog model.CatalogSource
	logger  logrus.FieldLogger

	mu     sync.Mutex
	items  []model.CatalogItem
	filter model.CatalogFilter
	err    error
}

func NewExploreScreen(scope *Scope, catalog model.CatalogSource, logger logrus.FieldLogger) *ExploreScreen {
	return &ExploreScreen{scope: scope, catalog: catalog, logger: logger.WithField("component", "explore")}
}

func (e *ExploreScreen) Enter() {
	Launch(e.scope, "fetchCatalog",
		func(ctx context.Context) ([]model.CatalogItem, error) {
			return e.catalog.FetchCatalog(ctx, 0)
		},
		func(items []model.CatalogItem, err error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if err != nil {
				e.logger.WithError(err).Warn("error fetching catalog")
				e.err = err
				return
			}
			e.items, e.err = items, nil
		})
}

func (e *ExploreScreen) SetFilter(filter model.CatalogFilter) {
	e.mu.Lock()
	e.filter = filter
	e.mu.Unlock()
}

func (e *ExploreScreen) Filter() model.CatalogFilter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

func (e *ExploreScreen) ResetFilters() {
	e.SetFilter(model.CatalogFilter{})
}

func (e *ExploreScreen) Items() ([]model.CatalogItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Apply(e.items), e.err
}

// WishlistScreen lists the signed-in viewer's wishlist.
type WishlistScreen struct {
	scope    *Scope
	client   model.SyncClient
	username string
	logger   logrus.FieldLogger

	mu    sync.Mutex
	items []model.CatalogItem
}

func NewWishlistScreen(scope *Scope, client model.SyncClient, username string, logger logrus.FieldLogger) *WishlistScreen {
	return &WishlistScreen{scope: scope, client: client, username: username, logger: logger.WithField("component", "wishlist-list")}
}

func (w *WishlistScreen) Enter() {
	if w.username == "" {
		return
	}
	Launch(w.scope, "fetchWishlist",
		func(ctx context.Context) ([]model.CatalogItem, error) {
			return w.client.FetchWishlist(ctx, w.username)
		},
		func(items []model.CatalogItem, err error) {
			if err != nil {
				w.logger.WithError(err).Warn("error fetching wishlist")
				return
			}
			w.mu.Lock()
			w.items = items
			w.mu.Unlock()
		})
}

func (w *WishlistScreen) Items() []model.CatalogItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.CatalogItem(nil), w.items...)
}
