package transport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"storefront/fixtures"
	"storefront/pkg/domain/model"
	"storefront/transport"
)

func setup(t *testing.T, opts transport.Options) (*transport.Backend, http.Handler) {
	t.Helper()
	data := fixtures.Default()
	data.Users = []fixtures.User{{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
		Preferences: model.Preferences{
			RoastLevel:     "Dark",
			FlavorProfiles: []string{"Nutty"},
		},
	}}

	backend, err := transport.NewBackend(data, transport.NewBcryptPasswordManager(bcrypt.MinCost))
	require.NoError(t, err)
	return backend, transport.Router(backend, opts)
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler(t *testing.T) {
	_, h := setup(t, transport.Options{})

	rec := do(t, h, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/login", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", gjson.GetBytes(rec.Body.Bytes(), "error").String())

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler(t *testing.T) {
	_, h := setup(t, transport.Options{})
	form := model.RegistrationForm{Username: "bob", Email: "bob@example.com", Password: "pw"}

	rec := do(t, h, http.MethodPost, "/register", map[string]interface{}{"formData": form})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/register", map[string]interface{}{"formData": form})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", gjson.GetBytes(rec.Body.Bytes(), "error").String())

	rec = do(t, h, http.MethodPost, "/register", map[string]interface{}{"formData": model.RegistrationForm{Username: "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferenceHandler(t *testing.T) {
	_, h := setup(t, transport.Options{})

	rec := do(t, h, http.MethodGet, "/preference?username=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := gjson.GetBytes(rec.Body.Bytes(), "#.id").Array()
	require.Len(t, ids, 2)
	assert.Equal(t, int64(3), ids[0].Int())
	assert.Equal(t, int64(4), ids[1].Int())

	rec = do(t, h, http.MethodGet, "/preference?username=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistHandlers(t *testing.T) {
	backend, h := setup(t, transport.Options{})

	rec := do(t, h, http.MethodGet, "/wishlist?username=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	toggle := func(id interface{}, action string) int {
		return do(t, h, http.MethodPost, "/wishlist", map[string]interface{}{
			"coffeeId": id, "username": "alice", "action": action,
		}).Code
	}

	assert.Equal(t, http.StatusOK, toggle(2, "add"))
	assert.Equal(t, http.StatusOK, toggle("2", "add"))
	assert.Equal(t, http.StatusOK, toggle("4", "add"))
	assert.Equal(t, []int{2, 4}, backend.Snapshot().Wishlists["alice"])

	assert.Equal(t, http.StatusOK, toggle(2, "remove"))
	assert.Equal(t, http.StatusOK, toggle(2, "remove"))
	assert.Equal(t, []int{4}, backend.Snapshot().Wishlists["alice"])

	assert.Equal(t, http.StatusNotFound, toggle(42, "add"))
	assert.Equal(t, http.StatusBadRequest, toggle(4, "flip"))

	rec = do(t, h, http.MethodPost, "/wishlist", map[string]interface{}{"coffeeId": 1, "username": "nobody", "action": "add"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler(t *testing.T) {
	_, h := setup(t, transport.Options{})

	rec := do(t, h, http.MethodGet, "/api?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), gjson.GetBytes(rec.Body.Bytes(), "#").Int())
	assert.Equal(t, "Signature Blend", gjson.GetBytes(rec.Body.Bytes(), "0.name").String())

	rec = do(t, h, http.MethodGet, "/api", nil)
	assert.Equal(t, int64(4), gjson.GetBytes(rec.Body.Bytes(), "#").Int())

	rec = do(t, h, http.MethodGet, "/api?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	_, h := setup(t, transport.Options{FixturesPath: path})

	rec := do(t, h, http.MethodPost, "/wishlist", map[string]interface{}{"coffeeId": 1, "username": "alice", "action": "add"})
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := fixtures.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, saved.Wishlists["alice"])
	require.Len(t, saved.Users, 1)
	assert.Empty(t, saved.Users[0].Password)
	assert.NotEmpty(t, saved.Users[0].PasswordHash)

	reloaded, err := transport.NewBackend(saved, transport.NewBcryptPasswordManager(bcrypt.MinCost))
	require.NoError(t, err)
	assert.NoError(t, reloaded.Authenticate("alice", "secret"))
}

func TestRateLimit(t *testing.T) {
	_, h := setup(t, transport.Options{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api", nil).Code)
}
