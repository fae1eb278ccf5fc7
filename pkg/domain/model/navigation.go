package model

type Graph int

const (
	UnauthenticatedGraph Graph = iota
	AuthenticatedGraph
)

func (g Graph) String() string {
	if g == AuthenticatedGraph {
		return "authenticated"
	}
	return "unauthenticated"
}

// Topology is the tagged union Unauth | Auth(username).
type Topology struct {
	Graph    Graph
	Username string
}

// SelectTopology is total and synchronous: every identity maps to exactly one graph.
func SelectTopology(identity Identity) Topology {
	if identity.IsAnonymous() {
		return Topology{Graph: UnauthenticatedGraph}
	}
	return Topology{Graph: AuthenticatedGraph, Username: identity.Username()}
}

// Route is an entry of the side drawer.
type Route string

const (
	RouteMainTabs Route = "MainTabs"
	RouteLogin    Route = "Login"
	RouteRegister Route = "Register"
	RouteUser     Route = "User"
	RouteWishlist Route = "Wishlist"
	RouteFAQ      Route = "FAQ"
)

type Tab string

const (
	TabHome    Tab = "HomeTab"
	TabExplore Tab = "ExploreTab"
	TabCart    Tab = "CartTab"
)

var Tabs = []Tab{TabHome, TabExplore, TabCart}

type Screen string

const (
	ScreenHome     Screen = "Home"
	ScreenExplore  Screen = "Explore"
	ScreenDetails  Screen = "Details"
	ScreenCart     Screen = "Cart"
	ScreenCheckout Screen = "Checkout"
	ScreenWishlist Screen = "WishlistTab"
	ScreenLogin    Screen = "Login"
	ScreenRegister Screen = "Register"
	ScreenUser     Screen = "User"
	ScreenFAQ      Screen = "FAQ"
)

// StackID names a two-screen push stack.
type StackID string

const (
	StackHome     StackID = "home"
	StackExplore  StackID = "explore"
	StackCart     StackID = "cart"
	StackWishlist StackID = "wishlist"
)

var (
	unauthenticatedDrawer = []Route{RouteMainTabs, RouteLogin, RouteRegister, RouteFAQ}
	authenticatedDrawer   = []Route{RouteMainTabs, RouteUser, RouteWishlist, RouteFAQ}
)

func (t Topology) DrawerRoutes() []Route {
	if t.Graph == AuthenticatedGraph {
		return append([]Route(nil), authenticatedDrawer...)
	}
	return append([]Route(nil), unauthenticatedDrawer...)
}

func (t Topology) Reachable(route Route) bool {
	for _, r := range t.DrawerRoutes() {
		if r == route {
			return true
		}
	}
	return false
}

func (t Topology) Stacks() []StackID {
	stacks := []StackID{StackHome, StackExplore, StackCart}
	if t.Graph == AuthenticatedGraph {
		stacks = append(stacks, StackWishlist)
	}
	return stacks
}

func (t Topology) HasStack(id StackID) bool {
	for _, s := range t.Stacks() {
		if s == id {
			return true
		}
	}
	return false
}

func TabStack(tab Tab) StackID {
	switch tab {
	case TabExplore:
		return StackExplore
	case TabCart:
		return StackCart
	default:
		return StackHome
	}
}

func RootScreen(stack StackID) Screen {
	switch stack {
	case StackExplore:
		return ScreenExplore
	case StackCart:
		return ScreenCart
	case StackWishlist:
		return ScreenWishlist
	default:
		return ScreenHome
	}
}

// PushedScreen is the second screen of a stack.
func PushedScreen(stack StackID) Screen {
	if stack == StackCart {
		return ScreenCheckout
	}
	return ScreenDetails
}

// DrawerScreen is the screen a non-tab drawer route shows.
func DrawerScreen(route Route) Screen {
	switch route {
	case RouteLogin:
		return ScreenLogin
	case RouteRegister:
		return ScreenRegister
	case RouteUser:
		return ScreenUser
	case RouteWishlist:
		return ScreenWishlist
	case RouteFAQ:
		return ScreenFAQ
	default:
		return ScreenHome
	}
}

// Location is what is on screen right now.
type Location struct {
	Route  Route
	Tab    Tab
	Stack  StackID
	Screen Screen
}
