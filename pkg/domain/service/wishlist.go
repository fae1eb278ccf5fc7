package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var ErrSignInRequired = errors.New("please sign in to use the wishlist")

type ToggleOutcome int

const (
	// ToggleCommitted: the server confirmed and the membership flipped.
	ToggleCommitted ToggleOutcome = iota
	// ToggleFailed: the server did not confirm; membership is unchanged.
	ToggleFailed
	// ToggleIgnored: another toggle for the same item is still in flight, or
	// the membership has not been seeded yet.
	ToggleIgnored
	// ToggleDropped: the screen unmounted before the result arrived.
	ToggleDropped
)

func (o ToggleOutcome) String() string {
	switch o {
	case ToggleCommitted:
		return "committed"
	case ToggleFailed:
		return "failed"
	case ToggleIgnored:
		return "ignored"
	default:
		return "dropped"
	}
}

type membership struct {
	inWishlist bool
	inFlight   bool
	committed  bool
	seeding    bool
}

// WishlistReconciler holds per-item wishlist membership for one screen
// instance. It commits only after the server confirms, so a failed toggle
// never shows a flip followed by a rollback.
type WishlistReconciler struct {
	client     model.SyncClient
	session    SessionReader
	scope      *Scope
	dispatcher EventDispatcher
	logger     logrus.FieldLogger

	mu      sync.Mutex
	entries map[model.ItemID]*membership
}

func NewWishlistReconciler(client model.SyncClient, session SessionReader, scope *Scope, dispatcher EventDispatcher, logger logrus.FieldLogger) *WishlistReconciler {
	return &WishlistReconciler{
		client:     client,
		session:    session,
		scope:      scope,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "wishlist"),
		entries:    make(map[model.ItemID]*membership),
	}
}

// Seed fetches the wishlist in the background and records whether itemID is
// on it. Toggles for itemID are ignored until the fetch settles. Anonymous
// viewers are not fetched for and Seed reports false.
func (r *WishlistReconciler) Seed(itemID model.ItemID) bool {
	identity := r.session.Identity()
	if identity.IsAnonymous() {
		return false
	}
	username := identity.Username()

	r.mu.Lock()
	m := r.entry(itemID)
	m.seeding = !m.committed && !m.inFlight
	r.mu.Unlock()

	Launch(r.scope, "fetchWishlist",
		func(ctx context.Context) ([]model.CatalogItem, error) {
			return r.client.FetchWishlist(ctx, username)
		},
		func(items []model.CatalogItem, err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			m := r.entry(itemID)
			m.seeding = false
			if err != nil {
				r.logger.WithError(err).WithField("item", itemID).Warn("wishlist fetch failed")
				return
			}
			if m.committed || m.inFlight {
				return
			}
			m.inWishlist = containsItem(items, itemID)
		})
	return true
}

func (r *WishlistReconciler) IsInWishlist(itemID model.ItemID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.entries[itemID]; ok {
		return m.inWishlist
	}
	return false
}

func (r *WishlistReconciler) InFlight(itemID model.ItemID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.entries[itemID]; ok {
		return m.inFlight
	}
	return false
}

// Seeding reports whether the membership fetch for itemID is still pending.
func (r *WishlistReconciler) Seeding(itemID model.ItemID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.entries[itemID]; ok {
		return m.seeding
	}
	return false
}

// Toggle asks the server to add or remove itemID and flips the local value
// only on confirmation. A second Toggle for the same item while the first is
// in flight, or before Seed has settled, is ignored.
func (r *WishlistReconciler) Toggle(ctx context.Context, itemID model.ItemID) (ToggleOutcome, error) {
	identity := r.session.Identity()
	if identity.IsAnonymous() {
		return ToggleIgnored, ErrSignInRequired
	}
	username := identity.Username()

	// scope.mu is taken before r.mu everywhere (see Commit), never after.
	if !r.scope.Active() {
		return ToggleDropped, nil
	}

	r.mu.Lock()
	m := r.entry(itemID)
	if m.inFlight || m.seeding {
		r.mu.Unlock()
		return ToggleIgnored, nil
	}
	m.inFlight = true
	target := !m.inWishlist
	r.mu.Unlock()

	action := model.WishlistAdd
	if !target {
		action = model.WishlistRemove
	}

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.scope.Context(), cancel)
	err := r.client.ToggleWishlist(ctx, username, itemID, action)
	stop()
	cancel()

	applied := r.scope.Commit(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		m.inFlight = false
		if err == nil {
			m.inWishlist = target
			m.committed = true
		}
	})
	if !applied {
		r.mu.Lock()
		m.inFlight = false
		r.mu.Unlock()
		r.logger.WithField("item", itemID).Debug("discarding wishlist toggle for unmounted screen")
		return ToggleDropped, nil
	}

	log := r.logger.WithFields(logrus.Fields{"item": itemID, "action": string(action)})
	if err != nil {
		log.WithError(err).Warn("wishlist toggle failed")
		dispatchEvent(r.dispatcher, r.logger, model.WishlistToggleFailed{
			Username: username,
			ItemID:   itemID,
			Message:  model.UserMessage(err),
		})
		return ToggleFailed, err
	}

	log.Info("wishlist toggled")
	if target {
		dispatchEvent(r.dispatcher, r.logger, model.WishlistItemAdded{Username: username, ItemID: itemID})
	} else {
		dispatchEvent(r.dispatcher, r.logger, model.WishlistItemRemoved{Username: username, ItemID: itemID})
	}
	return ToggleCommitted, nil
}

// entry must be called with r.mu held.
func (r *WishlistReconciler) entry(itemID model.ItemID) *membership {
	m, ok := r.entries[itemID]
	if !ok {
		m = &membership{}
		r.entries[itemID] = m
	}
	return m
}

func containsItem(items []model.CatalogItem, itemID model.ItemID) bool {
	for _, item := range items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
