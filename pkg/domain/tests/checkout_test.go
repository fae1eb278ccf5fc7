package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type checkoutFixture struct {
	checkout   *service.CheckoutScreen
	cart       service.CartLedger
	navigator  service.Navigator
	dispatcher *mockEventDispatcher
	resets     *int
}

func setupCheckout(t *testing.T) checkoutFixture {
	t.Helper()
	dispatcher := &mockEventDispatcher{}
	cart := service.NewCartLedger(dispatcher, newLogger())
	navigator := service.NewNavigator(t.Context(), model.Anonymous(), 0, dispatcher, newLogger())
	dispatcher.Subscribe(navigator.Handle)

	resets := new(int)
	dispatcher.Subscribe(func(e service.Event) {
		if changed, ok := e.(model.CartChanged); ok && changed.Change == model.CartChangeReset {
			*resets++
		}
	})

	cart.Add(coffee("c1", "9.99"), 3)
	scope, err := navigator.ShowCheckout()
	require.NoError(t, err)

	return checkoutFixture{
		checkout:   service.NewCheckoutScreen(scope, cart, navigator, dispatcher, newLogger()),
		cart:       cart,
		navigator:  navigator,
		dispatcher: dispatcher,
		resets:     resets,
	}
}

func validCheckoutForm() model.CheckoutForm {
	form := model.NewCheckoutForm()
	form.Name = "Ada Lovelace"
	form.AddressLine1 = "1 Main St"
	form.City = "Toronto"
	form.PostalCode = "M5V 1A1"
	return form
}

func TestReview(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupCheckout(t)

		summary, err := f.checkout.Review(validCheckoutForm())
		require.NoError(t, err)
		assert.Equal(t, "29.97", model.FormatPrice(summary.Total))
		assert.Len(t, summary.Lines, 1)
		assert.Equal(t, "N/A", summary.Phone())
		assert.Equal(t, "None", summary.DeliveryInstructions())
		assert.Equal(t, model.DefaultProvince, summary.Form.Province)
		assert.Equal(t, model.CreditCard, summary.Form.PaymentMethod)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		f := setupCheckout(t)
		form := validCheckoutForm()
		form.City = " "
		form.PaymentMethod = "Cash"

		_, err := f.checkout.Review(form)
		var validation *model.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"city", "paymentMethod"}, validation.Fields)
		assert.Equal(t, "Please fill in all required fields.", model.UserMessage(err))

		_, err = f.checkout.Confirm()
		assert.ErrorIs(t, err, service.ErrOrderNotReviewed)
		assert.Equal(t, 3, f.cart.TotalQuantity())
	})

	t.Run("Empty cart", func(t *testing.T) {
		f := setupCheckout(t)
		f.cart.Remove("c1")

		_, err := f.checkout.Review(validCheckoutForm())
		assert.ErrorIs(t, err, service.ErrCartEmpty)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupCheckout(t)
		_, err := f.checkout.Review(validCheckoutForm())
		require.NoError(t, err)

		confirmation, err := f.checkout.Confirm()
		require.NoError(t, err)

		assert.NotEmpty(t, confirmation.OrderID.String())
		assert.Equal(t, "29.97", model.FormatPrice(confirmation.Summary.Total))
		assert.True(t, f.cart.IsEmpty())
		assert.Equal(t, 1, *f.resets)

		location := f.navigator.Location()
		assert.Equal(t, model.TabHome, location.Tab)
		assert.Equal(t, model.ScreenHome, location.Screen)
		assert.Len(t, f.navigator.Stack(model.StackCart), 1)

		_, visible := f.navigator.Badge()
		assert.False(t, visible)

		var confirmed []model.OrderConfirmed
		for _, e := range f.dispatcher.Events() {
			if c, ok := e.(model.OrderConfirmed); ok {
				confirmed = append(confirmed, c)
			}
		}
		require.Len(t, confirmed, 1)
		assert.Equal(t, confirmation.OrderID, confirmed[0].OrderID)
	})

	t.Run("Second confirm resets nothing", func(t *testing.T) {
		f := setupCheckout(t)
		_, err := f.checkout.Review(validCheckoutForm())
		require.NoError(t, err)
		_, err = f.checkout.Confirm()
		require.NoError(t, err)

		f.cart.Add(coffee("c2", "1.00"), 1)
		_, err = f.checkout.Confirm()
		assert.ErrorIs(t, err, service.ErrAlreadyConfirmed)
		assert.Equal(t, 1, *f.resets)
		assert.Equal(t, 1, f.cart.TotalQuantity())
	})

	t.Run("Dismissed summary", func(t *testing.T) {
		f := setupCheckout(t)
		_, err := f.checkout.Review(validCheckoutForm())
		require.NoError(t, err)
		f.checkout.Dismiss()

		_, err = f.checkout.Confirm()
		assert.ErrorIs(t, err, service.ErrOrderNotReviewed)
		assert.Zero(t, *f.resets)
	})

	t.Run("Screen closed", func(t *testing.T) {
		f := setupCheckout(t)
		_, err := f.checkout.Review(validCheckoutForm())
		require.NoError(t, err)
		require.True(t, f.navigator.Back(model.StackCart))

		_, err = f.checkout.Confirm()
		assert.ErrorIs(t, err, service.ErrScreenClosed)
		assert.Zero(t, *f.resets)
		assert.Equal(t, 3, f.cart.TotalQuantity())
	})
}
