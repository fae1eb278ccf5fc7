package tests

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func newLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func coffee(id string, price string) model.CatalogItem {
	return model.CatalogItem{
		ID:            model.ItemID(id),
		Name:          "Coffee " + id,
		Price:         decimal.RequireFromString(price),
		Region:        "Africa",
		FlavorProfile: []string{"Citrus"},
		RoastLevel:    model.RoastMedium,
		GrindOptions:  []string{"Whole Bean", "Espresso"},
	}
}

var _ model.SyncClient = &mockSyncClient{}

type toggleCall struct {
	Username string
	ItemID   model.ItemID
	Action   model.WishlistAction
}

type mockSyncClient struct {
	mu sync.Mutex

	loginErr    error
	registerErr error
	profile     model.Profile
	preferences []model.CatalogItem
	wishlist    []model.CatalogItem
	wishlistErr error
	toggleErr   error

	// gate, when set, blocks FetchWishlist and ToggleWishlist until it is
	// closed or the context is cancelled.
	gate chan struct{}

	logins    []string
	registers []model.RegistrationForm
	toggles   []toggleCall
}

func (m *mockSyncClient) wait(ctx context.Context) error {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return &model.NetworkError{Op: "mock", Err: ctx.Err()}
	}
}

func (m *mockSyncClient) Login(_ context.Context, username, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, username)
	return m.loginErr
}

func (m *mockSyncClient) Register(_ context.Context, form model.RegistrationForm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers = append(m.registers, form)
	return m.registerErr
}

func (m *mockSyncClient) FetchProfile(_ context.Context, username string) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile := m.profile
	profile.Username = username
	return profile, nil
}

func (m *mockSyncClient) FetchPreferences(context.Context, string) ([]model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preferences, nil
}

func (m *mockSyncClient) FetchWishlist(ctx context.Context, _ string) ([]model.CatalogItem, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CatalogItem(nil), m.wishlist...), m.wishlistErr
}

func (m *mockSyncClient) ToggleWishlist(ctx context.Context, username string, itemID model.ItemID, action model.WishlistAction) error {
	m.mu.Lock()
	m.toggles = append(m.toggles, toggleCall{username, itemID, action})
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toggleErr
}

func (m *mockSyncClient) toggleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toggles)
}

var _ model.CatalogSource = &mockCatalog{}

type mockCatalog struct {
	items  []model.CatalogItem
	err    error
	limits []int
	mu     sync.Mutex
}

func (m *mockCatalog) FetchCatalog(_ context.Context, limit int) ([]model.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.items) {
		return append([]model.CatalogItem(nil), m.items[:limit]...), nil
	}
	return append([]model.CatalogItem(nil), m.items...), nil
}

var _ service.EventDispatcher = &mockEventDispatcher{}

// mockEventDispatcher records events and forwards them to handlers, so the
// navigator can be wired the way the engine wires it.
type mockEventDispatcher struct {
	mu       sync.Mutex
	events   []service.Event
	handlers []func(service.Event)
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	handlers := make([]func(service.Event), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (m *mockEventDispatcher) Subscribe(h func(service.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

func (m *mockEventDispatcher) Events() []service.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Event(nil), m.events...)
}

func (m *mockEventDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

type staticSession struct {
	identity model.Identity
}

func (s staticSession) Identity() model.Identity { return s.identity }
