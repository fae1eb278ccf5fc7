package tests

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"storefront/pkg/domain/model"
)

func TestItemIDJSON(t *testing.T) {
	var item struct {
		ID model.ItemID `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id": 17}`), &item))
	assert.Equal(t, model.ItemID("17"), item.ID)
	require.NoError(t, json.Unmarshal([]byte(`{"id": "17"}`), &item))
	assert.Equal(t, model.ItemID("17"), item.ID)
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &item))

	out, err := json.Marshal(model.ItemID("17"))
	require.NoError(t, err)
	assert.Equal(t, `17`, string(out))
	out, err = json.Marshal(model.ItemID("x7"))
	require.NoError(t, err)
	assert.Equal(t, `"x7"`, string(out))

	for _, id := range []model.ItemID{"007", "+5", "-0", "99999999999999999999"} {
		t.Run(string(id), func(t *testing.T) {
			body, err := json.Marshal(struct {
				CoffeeID model.ItemID `json:"coffeeId"`
			}{id})
			require.NoError(t, err)
			assert.Equal(t, `"`+string(id)+`"`, gjson.GetBytes(body, "coffeeId").Raw)

			var back struct {
				CoffeeID model.ItemID `json:"coffeeId"`
			}
			require.NoError(t, json.Unmarshal(body, &back))
			assert.Equal(t, id, back.CoffeeID)
		})
	}

	out, err = json.Marshal(model.ItemID("-42"))
	require.NoError(t, err)
	assert.Equal(t, `-42`, string(out))
}

func TestRoastLabel(t *testing.T) {
	labels := map[model.RoastLevel]string{
		0: "Medium", 1: "Light", 2: "Light-Medium", 3: "Medium", 4: "Medium-Dark", 5: "Dark", 6: "Medium",
	}
	for level, want := range labels {
		assert.Equal(t, want, level.Label(), "level %d", level)
	}
	assert.False(t, model.RoastLevel(0).Valid())
	assert.True(t, model.RoastDark.Valid())
}

func TestSnapshotSharesNothing(t *testing.T) {
	item := coffee("c1", "1.00")
	snapshot := item.Snapshot()
	item.GrindOptions[0] = "Changed"
	item.FlavorProfile = append(item.FlavorProfile, "Extra")

	want := coffee("c1", "1.00")
	if diff := cmp.Diff(want.GrindOptions, snapshot.GrindOptions); diff != "" {
		t.Errorf("grind options changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.FlavorProfile, snapshot.FlavorProfile); diff != "" {
		t.Errorf("flavor profile changed (-want +got):\n%s", diff)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"Validation", &model.ValidationError{Message: "Passwords do not match."}, "Passwords do not match."},
		{"Auth", &model.AuthError{Op: "login", Status: 401, Message: "Invalid username or password"}, "Invalid username or password"},
		{"Auth without text", &model.AuthError{Op: "login", Status: 401}, model.RetryMessage},
		{"Network", &model.NetworkError{Op: "login", Status: 500}, model.RetryMessage},
		{"Anything else", assert.AnError, model.RetryMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.UserMessage(tt.err))
		})
	}
}

func TestRegistrationFormValidate(t *testing.T) {
	form := model.RegistrationForm{Email: "a@b.c", Password: "x", ConfirmPassword: "y"}

	var validation *model.ValidationError
	require.ErrorAs(t, form.Validate(), &validation)
	assert.Equal(t, []string{"username"}, validation.Fields)

	form.Username = "alice"
	require.ErrorAs(t, form.Validate(), &validation)
	assert.Equal(t, model.PasswordMismatchMessage, validation.Message)

	form.ConfirmPassword = "x"
	assert.NoError(t, form.Validate())
}

func TestSelectTopologyIsTotal(t *testing.T) {
	for _, identity := range []model.Identity{model.Anonymous(), model.Named("a"), model.Named("b")} {
		topology := model.SelectTopology(identity)
		hasLogin := topology.Reachable(model.RouteLogin)
		hasUser := topology.Reachable(model.RouteUser)
		assert.NotEqual(t, hasLogin, hasUser, "%s must see exactly one graph", identity)
		assert.Equal(t, identity.Username(), topology.Username)
	}
}
