package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var (
	ErrRouteUnreachable = errors.New("route is not reachable in the current topology")
	ErrStackUnavailable = errors.New("stack is not mounted in the current topology")
	ErrNoDetails        = errors.New("stack does not push a details screen")
	ErrCartEmpty        = errors.New("cart is empty")
)

// Frame is one screen on a push stack. Item is a private snapshot for
// Details frames and nil elsewhere.
type Frame struct {
	Screen model.Screen
	Item   *model.CatalogItem
	Scope  *Scope
}

func (f Frame) clone() Frame {
	if f.Item != nil {
		item := f.Item.Snapshot()
		f.Item = &item
	}
	return f
}

// Navigator mounts exactly one screen graph at a time. Session changes
// discard the mounted graph and build the other one from scratch.
type Navigator interface {
	Topology() model.Topology
	Generation() int
	Location() model.Location

	OpenDrawer(route model.Route) error
	SelectTab(tab model.Tab) error
	ShowDetails(stack model.StackID, item model.CatalogItem) (*Scope, error)
	ShowCheckout() (*Scope, error)
	Back(stack model.StackID) bool
	ReturnHome()

	Stack(stack model.StackID) []Frame
	RootScope(stack model.StackID) (*Scope, error)
	DrawerScope(route model.Route) (*Scope, error)
	Reachable(screen model.Screen) bool
	HasDrawerControl(screen model.Screen) bool
	Badge() (count int, visible bool)

	// Handle consumes SessionChanged and CartChanged events.
	Handle(event Event)
}

func NewNavigator(ctx context.Context, identity model.Identity, cartQuantity int, dispatcher EventDispatcher, logger logrus.FieldLogger) Navigator {
	n := &navigator{
		ctx:        ctx,
		badge:      cartQuantity,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "navigator"),
	}
	n.mount(model.SelectTopology(identity))
	return n
}

type navigator struct {
	mu         sync.RWMutex
	topology   model.Topology
	generation int
	route      model.Route
	tab        model.Tab
	stacks     map[model.StackID][]Frame
	drawer     map[model.Route]*Scope
	badge      int

	ctx        context.Context
	dispatcher EventDispatcher
	logger     logrus.FieldLogger
}

func (n *navigator) Topology() model.Topology {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.topology
}

func (n *navigator) Generation() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.generation
}

func (n *navigator) Location() model.Location {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.route {
	case model.RouteMainTabs:
		stack := model.TabStack(n.tab)
		return model.Location{Route: n.route, Tab: n.tab, Stack: stack, Screen: n.top(stack).Screen}
	case model.RouteWishlist:
		return model.Location{Route: n.route, Stack: model.StackWishlist, Screen: n.top(model.StackWishlist).Screen}
	default:
		return model.Location{Route: n.route, Screen: model.DrawerScreen(n.route)}
	}
}

func (n *navigator) OpenDrawer(route model.Route) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.topology.Reachable(route) {
		return errors.Wrapf(ErrRouteUnreachable, "%s in %s graph", route, n.topology.Graph)
	}
	n.route = route
	if _, stacked := n.stackFor(route); !stacked && route != model.RouteMainTabs {
		if _, ok := n.drawer[route]; !ok {
			n.drawer[route] = NewScope(n.ctx, model.DrawerScreen(route), n.logger)
		}
	}
	return nil
}

func (n *navigator) SelectTab(tab model.Tab) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !validTab(tab) {
		return errors.Wrapf(ErrRouteUnreachable, "unknown tab %s", tab)
	}
	n.route = model.RouteMainTabs
	n.tab = tab
	return nil
}

// ShowDetails pushes Details carrying a snapshot of item. A Details screen
// already on the stack is replaced and its scope unmounted.
func (n *navigator) ShowDetails(stack model.StackID, item model.CatalogItem) (*Scope, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.topology.HasStack(stack) {
		return nil, errors.Wrapf(ErrStackUnavailable, "%s in %s graph", stack, n.topology.Graph)
	}
	if model.PushedScreen(stack) != model.ScreenDetails {
		return nil, errors.Wrapf(ErrNoDetails, "%s", stack)
	}

	snapshot := item.Snapshot()
	scope := n.push(stack, Frame{Screen: model.ScreenDetails, Item: &snapshot})
	n.focus(stack)
	return scope, nil
}

func (n *navigator) ShowCheckout() (*Scope, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.badge == 0 {
		return nil, ErrCartEmpty
	}
	scope := n.push(model.StackCart, Frame{Screen: model.ScreenCheckout})
	n.focus(model.StackCart)
	return scope, nil
}

func (n *navigator) Back(stack model.StackID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	frames, ok := n.stacks[stack]
	if !ok || len(frames) < 2 {
		return false
	}
	frames[len(frames)-1].Scope.Unmount()
	n.stacks[stack] = frames[:len(frames)-1]
	return true
}

// ReturnHome shows the Home tab and pops the cart stack to its root.
func (n *navigator) ReturnHome() {
	n.mu.Lock()
	defer n.mu.Unlock()

	frames := n.stacks[model.StackCart]
	for len(frames) > 1 {
		frames[len(frames)-1].Scope.Unmount()
		frames = frames[:len(frames)-1]
	}
	n.stacks[model.StackCart] = frames
	n.route = model.RouteMainTabs
	n.tab = model.TabHome
}

func (n *navigator) Stack(stack model.StackID) []Frame {
	n.mu.RLock()
	defer n.mu.RUnlock()

	frames := n.stacks[stack]
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = f.clone()
	}
	return out
}

func (n *navigator) RootScope(stack model.StackID) (*Scope, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	frames, ok := n.stacks[stack]
	if !ok {
		return nil, errors.Wrapf(ErrStackUnavailable, "%s in %s graph", stack, n.topology.Graph)
	}
	return frames[0].Scope, nil
}

func (n *navigator) DrawerScope(route model.Route) (*Scope, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.topology.Reachable(route) {
		return nil, errors.Wrapf(ErrRouteUnreachable, "%s in %s graph", route, n.topology.Graph)
	}
	scope, ok := n.drawer[route]
	if !ok {
		return nil, errors.Errorf("%s has not been opened", route)
	}
	return scope, nil
}

func (n *navigator) Reachable(screen model.Screen) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.reachable(screen)
}

// HasDrawerControl reports whether screen carries the header control that
// opens the drawer. Every screen reachable from the drawer has one.
func (n *navigator) HasDrawerControl(screen model.Screen) bool {
	return n.Reachable(screen)
}

// Badge is hidden rather than rendered as zero.
func (n *navigator) Badge() (int, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.badge, n.badge > 0
}

func (n *navigator) Handle(event Event) {
	switch e := event.(type) {
	case model.SessionChanged:
		n.remount(model.SelectTopology(e.Current))
	case model.CartChanged:
		n.mu.Lock()
		n.badge = e.TotalQuantity
		n.mu.Unlock()
	}
}

func (n *navigator) remount(topology model.Topology) {
	n.mu.Lock()
	n.unmountAll()
	n.mount(topology)
	event := model.TopologyRemounted{Topology: n.topology, Generation: n.generation}
	n.mu.Unlock()

	n.logger.WithFields(logrus.Fields{
		"graph":      topology.Graph.String(),
		"generation": event.Generation,
	}).Info("navigation remounted")
	dispatchEvent(n.dispatcher, n.logger, event)
}

// mount must be called with n.mu held, or before n is shared.
func (n *navigator) mount(topology model.Topology) {
	n.topology = topology
	n.generation++
	n.route = model.RouteMainTabs
	n.tab = model.TabHome
	n.stacks = make(map[model.StackID][]Frame)
	n.drawer = make(map[model.Route]*Scope)
	for _, stack := range topology.Stacks() {
		root := model.RootScreen(stack)
		n.stacks[stack] = []Frame{{Screen: root, Scope: NewScope(n.ctx, root, n.logger)}}
	}
}

func (n *navigator) unmountAll() {
	for _, frames := range n.stacks {
		for _, f := range frames {
			f.Scope.Unmount()
		}
	}
	for _, scope := range n.drawer {
		scope.Unmount()
	}
}

func (n *navigator) push(stack model.StackID, frame Frame) *Scope {
	frames := n.stacks[stack]
	if len(frames) > 1 {
		frames[len(frames)-1].Scope.Unmount()
		frames = frames[:1]
	}
	frame.Scope = NewScope(n.ctx, frame.Screen, n.logger)
	n.stacks[stack] = append(frames, frame)
	return frame.Scope
}

func (n *navigator) focus(stack model.StackID) {
	if stack == model.StackWishlist {
		n.route = model.RouteWishlist
		return
	}
	n.route = model.RouteMainTabs
	n.tab = stackTab(stack)
}

func (n *navigator) top(stack model.StackID) Frame {
	frames := n.stacks[stack]
	return frames[len(frames)-1]
}

func (n *navigator) stackFor(route model.Route) (model.StackID, bool) {
	if route == model.RouteWishlist {
		return model.StackWishlist, true
	}
	return "", false
}

func (n *navigator) reachable(screen model.Screen) bool {
	for _, stack := range n.topology.Stacks() {
		if model.RootScreen(stack) == screen || model.PushedScreen(stack) == screen {
			return true
		}
	}
	for _, route := range n.topology.DrawerRoutes() {
		if route != model.RouteMainTabs && model.DrawerScreen(route) == screen {
			return true
		}
	}
	return false
}

func validTab(tab model.Tab) bool {
	for _, t := range model.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

func stackTab(stack model.StackID) model.Tab {
	switch stack {
	case model.StackExplore:
		return model.TabExplore
	case model.StackCart:
		return model.TabCart
	default:
		return model.TabHome
	}
}
