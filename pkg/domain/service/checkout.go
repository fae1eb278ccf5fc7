package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var (
	ErrOrderNotReviewed = errors.New("order has not been reviewed")
	ErrAlreadyConfirmed = errors.New("order has already been confirmed")
)

const ThankYouMessage = "Thank you for your order"

// CheckoutScreen collects delivery details, shows a summary and finalizes the
// order. No payment is taken.
type CheckoutScreen struct {
	scope      *Scope
	cart       CartLedger
	navigator  Navigator
	dispatcher EventDispatcher
	logger     logrus.FieldLogger

	mu        sync.Mutex
	pending   *model.OrderSummary
	confirmed bool
}

func NewCheckoutScreen(scope *Scope, cart CartLedger, navigator Navigator, dispatcher EventDispatcher, logger logrus.FieldLogger) *CheckoutScreen {
	return &CheckoutScreen{
		scope:      scope,
		cart:       cart,
		navigator:  navigator,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "checkout"),
	}
}

// Review validates the form locally and opens the confirmation summary.
func (c *CheckoutScreen) Review(form model.CheckoutForm) (model.OrderSummary, error) {
	if err := form.Validate(); err != nil {
		return model.OrderSummary{}, err
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return model.OrderSummary{}, ErrCartEmpty
	}

	summary := model.OrderSummary{Form: form, Lines: lines, Total: model.TotalPrice(lines)}

	c.mu.Lock()
	c.pending = &summary
	c.confirmed = false
	c.mu.Unlock()
	return summary, nil
}

// Dismiss closes the summary without ordering.
func (c *CheckoutScreen) Dismiss() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Confirm resets the cart exactly once per reviewed order and returns to Home.
func (c *CheckoutScreen) Confirm() (model.OrderConfirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		if c.confirmed {
			return model.OrderConfirmation{}, ErrAlreadyConfirmed
		}
		return model.OrderConfirmation{}, ErrOrderNotReviewed
	}
	if !c.scope.Active() {
		return model.OrderConfirmation{}, ErrScreenClosed
	}

	confirmation := model.OrderConfirmation{
		OrderID:     uuid.New(),
		Summary:     *c.pending,
		ConfirmedAt: time.Now().UTC(),
	}
	c.pending = nil
	c.confirmed = true

	c.cart.Reset()
	c.navigator.ReturnHome()

	c.logger.WithFields(logrus.Fields{
		"order": confirmation.OrderID.String(),
		"total": model.FormatPrice(confirmation.Summary.Total),
	}).Info("order confirmed")
	dispatchEvent(c.dispatcher, c.logger, model.OrderConfirmed{
		OrderID:   confirmation.OrderID,
		Total:     confirmation.Summary.Total,
		LineCount: len(confirmation.Summary.Lines),
	})
	return confirmation, nil
}
