// Package app wires the client state engine: one cart, one session, one
// navigator, all sharing a synchronous event bus.
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/event"
)

type Options struct {
	PopularLimit int
}

type Engine struct {
	bus       *event.Bus
	cart      service.CartLedger
	session   service.SessionController
	navigator service.Navigator
	client    model.SyncClient
	catalog   model.CatalogSource
	opts      Options
	logger    logrus.FieldLogger
}

func NewEngine(ctx context.Context, client model.SyncClient, catalog model.CatalogSource, opts Options, logger logrus.FieldLogger) *Engine {
	if opts.PopularLimit < 1 {
		opts.PopularLimit = 3
	}

	bus := event.NewBus(logger)
	cart := service.NewCartLedger(bus, logger)
	session := service.NewSessionController(client, bus, logger)
	navigator := service.NewNavigator(ctx, session.Identity(), cart.TotalQuantity(), bus, logger)

	bus.Subscribe(model.SessionChanged{}.Type(), navigator.Handle)
	bus.Subscribe(model.CartChanged{}.Type(), navigator.Handle)

	return &Engine{
		bus:       bus,
		cart:      cart,
		session:   session,
		navigator: navigator,
		client:    client,
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
	}
}

func (e *Engine) Cart() service.CartLedger { return e.cart }

func (e *Engine) Session() service.SessionController { return e.session }

func (e *Engine) Navigator() service.Navigator { return e.navigator }

// Subscribe lets a presentation layer observe engine events such as the
// wishlist notices.
func (e *Engine) Subscribe(eventType string, handler event.Handler) {
	e.bus.Subscribe(eventType, handler)
}

func (e *Engine) EnterHome() (*service.HomeScreen, error) {
	if err := e.navigator.SelectTab(model.TabHome); err != nil {
		return nil, err
	}
	scope, err := e.navigator.RootScope(model.StackHome)
	if err != nil {
		return nil, err
	}
	home := service.NewHomeScreen(scope, e.catalog, e.client, e.session.Identity(), e.opts.PopularLimit, e.logger)
	home.Enter()
	return home, nil
}

func (e *Engine) EnterExplore() (*service.ExploreScreen, error) {
	if err := e.navigator.SelectTab(model.TabExplore); err != nil {
		return nil, err
	}
	scope, err := e.navigator.RootScope(model.StackExplore)
	if err != nil {
		return nil, err
	}
	explore := service.NewExploreScreen(scope, e.catalog, e.logger)
	explore.Enter()
	return explore, nil
}

func (e *Engine) EnterWishlist() (*service.WishlistScreen, error) {
	if err := e.navigator.OpenDrawer(model.RouteWishlist); err != nil {
		return nil, err
	}
	scope, err := e.navigator.RootScope(model.StackWishlist)
	if err != nil {
		return nil, err
	}
	wishlist := service.NewWishlistScreen(scope, e.client, e.session.Identity().Username(), e.logger)
	wishlist.Enter()
	return wishlist, nil
}

func (e *Engine) EnterProfile() (*service.ProfileScreen, error) {
	if err := e.navigator.OpenDrawer(model.RouteUser); err != nil {
		return nil, err
	}
	scope, err := e.navigator.DrawerScope(model.RouteUser)
	if err != nil {
		return nil, err
	}
	profile := service.NewProfileScreen(scope, e.client, e.session, e.logger)
	profile.Enter()
	return profile, nil
}

func (e *Engine) EnterLogin() (*service.LoginScreen, error) {
	if err := e.navigator.OpenDrawer(model.RouteLogin); err != nil {
		return nil, err
	}
	scope, err := e.navigator.DrawerScope(model.RouteLogin)
	if err != nil {
		return nil, err
	}
	return service.NewLoginScreen(scope, e.session), nil
}

func (e *Engine) EnterRegistration() (*service.RegistrationScreen, error) {
	if err := e.navigator.OpenDrawer(model.RouteRegister); err != nil {
		return nil, err
	}
	scope, err := e.navigator.DrawerScope(model.RouteRegister)
	if err != nil {
		return nil, err
	}
	return service.NewRegistrationScreen(scope, e.client, e.navigator, e.logger), nil
}

// OpenDetails pushes Details for item onto stack and seeds its wishlist flag.
func (e *Engine) OpenDetails(stack model.StackID, item model.CatalogItem) (*service.DetailsScreen, error) {
	scope, err := e.navigator.ShowDetails(stack, item)
	if err != nil {
		return nil, err
	}
	reconciler := service.NewWishlistReconciler(e.client, e.session, scope, e.bus, e.logger)
	details := service.NewDetailsScreen(item, scope, e.cart, reconciler)
	details.Enter()
	return details, nil
}

func (e *Engine) OpenCheckout() (*service.CheckoutScreen, error) {
	scope, err := e.navigator.ShowCheckout()
	if err != nil {
		return nil, err
	}
	return service.NewCheckoutScreen(scope, e.cart, e.navigator, e.bus, e.logger), nil
}
