package transport

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"storefront/fixtures"
	"storefront/pkg/domain/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrCoffeeNotFound     = errors.New("coffee not found")
	ErrInvalidAction      = errors.New("action must be add or remove")
)

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}

func NewBcryptPasswordManager(cost int) PasswordManager {
	return bcryptPasswordManager{cost: cost}
}

type bcryptPasswordManager struct {
	cost int
}

func (m bcryptPasswordManager) Hash(plainTextPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), m.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (m bcryptPasswordManager) Check(hashedPassword, plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainTextPassword))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "compare password")
	}
	return true, nil
}

// Backend is an in-memory personalization backend for local development.
type Backend struct {
	mu        sync.RWMutex
	catalog   []fixtures.Coffee
	users     map[string]*fixtures.User
	wishlists map[string][]int
	passwords PasswordManager
}

func NewBackend(data fixtures.Fixtures, passwords PasswordManager) (*Backend, error) {
	b := &Backend{
		catalog:   append([]fixtures.Coffee(nil), data.Catalog...),
		users:     make(map[string]*fixtures.User),
		wishlists: make(map[string][]int),
		passwords: passwords,
	}
	for _, u := range data.Users {
		user := u
		if user.PasswordHash == "" {
			hash, err := passwords.Hash(user.Password)
			if err != nil {
				return nil, errors.Wrapf(err, "seed user %s", user.Username)
			}
			user.PasswordHash = hash
		}
		user.Password = ""
		b.users[user.Username] = &user
	}
	for username, ids := range data.Wishlists {
		b.wishlists[username] = append([]int(nil), ids...)
	}
	return b, nil
}

func (b *Backend) Authenticate(username, password string) error {
	b.mu.RLock()
	user, ok := b.users[username]
	b.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}

	valid, err := b.passwords.Check(user.PasswordHash, password)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidCredentials
	}
	return nil
}

func (b *Backend) Register(form model.RegistrationForm) error {
	username := strings.TrimSpace(form.Username)
	if username == "" || strings.TrimSpace(form.Email) == "" || form.Password == "" {
		return ErrMissingFields
	}

	hash, err := b.passwords.Hash(form.Password)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[username]; exists {
		return ErrUsernameTaken
	}
	b.users[username] = &fixtures.User{
		Username:     username,
		Email:        form.Email,
		PasswordHash: hash,
		Preferences:  form.Preferences,
	}
	return nil
}

func (b *Backend) Profile(username string) (model.Profile, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	user, ok := b.users[username]
	if !ok {
		return model.Profile{}, ErrUserNotFound
	}
	return model.Profile{Username: user.Username, Email: user.Email, Preferences: user.Preferences}, nil
}

// Catalog returns the first limit coffees, or all of them when limit <= 0.
func (b *Backend) Catalog(limit int) []fixtures.Coffee {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 || limit > len(b.catalog) {
		limit = len(b.catalog)
	}
	return append([]fixtures.Coffee(nil), b.catalog[:limit]...)
}

// Preferences returns coffees that match any of the user's region, flavor or
// roast preferences.
func (b *Backend) Preferences(username string) ([]fixtures.Coffee, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	user, ok := b.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}

	prefs := user.Preferences
	matches := []fixtures.Coffee{}
	for _, coffee := range b.catalog {
		if matchesPreferences(coffee, prefs) {
			matches = append(matches, coffee)
		}
	}
	return matches, nil
}

func (b *Backend) Wishlist(username string) ([]fixtures.Coffee, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.users[username]; !ok {
		return nil, ErrUserNotFound
	}

	items := []fixtures.Coffee{}
	for _, id := range b.wishlists[username] {
		if coffee, ok := b.coffee(id); ok {
			items = append(items, coffee)
		}
	}
	return items, nil
}

// ToggleWishlist is idempotent: adding a present coffee or removing an absent
// one succeeds without change.
func (b *Backend) ToggleWishlist(username string, coffeeID model.ItemID, action model.WishlistAction) error {
	id, err := strconv.Atoi(string(coffeeID))
	if err != nil {
		return errors.Wrapf(ErrCoffeeNotFound, "id %q", coffeeID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[username]; !ok {
		return ErrUserNotFound
	}
	if _, ok := b.coffee(id); !ok {
		return errors.Wrapf(ErrCoffeeNotFound, "id %d", id)
	}

	list := b.wishlists[username]
	index := -1
	for i, existing := range list {
		if existing == id {
			index = i
			break
		}
	}

	switch action {
	case model.WishlistAdd:
		if index < 0 {
			b.wishlists[username] = append(list, id)
		}
	case model.WishlistRemove:
		if index >= 0 {
			b.wishlists[username] = append(list[:index], list[index+1:]...)
		}
	default:
		return ErrInvalidAction
	}
	return nil
}

// Snapshot returns the current state with hashed passwords only.
func (b *Backend) Snapshot() fixtures.Fixtures {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := fixtures.Fixtures{
		Catalog:   append([]fixtures.Coffee(nil), b.catalog...),
		Wishlists: make(map[string][]int, len(b.wishlists)),
	}
	for _, user := range b.users {
		data.Users = append(data.Users, *user)
	}
	sort.Slice(data.Users, func(i, j int) bool { return data.Users[i].Username < data.Users[j].Username })
	for username, ids := range b.wishlists {
		data.Wishlists[username] = append([]int(nil), ids...)
	}
	return data
}

// coffee must be called with b.mu held.
func (b *Backend) coffee(id int) (fixtures.Coffee, bool) {
	for _, c := range b.catalog {
		if c.ID == id {
			return c, true
		}
	}
	return fixtures.Coffee{}, false
}

func matchesPreferences(coffee fixtures.Coffee, prefs model.Preferences) bool {
	for _, region := range prefs.Regions {
		if coffee.Region == region {
			return true
		}
	}
	for _, wanted := range prefs.FlavorProfiles {
		for _, flavor := range coffee.FlavorProfile {
			if flavor == wanted {
				return true
			}
		}
	}
	return prefs.RoastLevel != "" && model.RoastLevel(coffee.RoastLevel).Label() == prefs.RoastLevel
}
