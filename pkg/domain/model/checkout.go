package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	CreditCard PaymentMethod = "Credit Card"
	DebitCard  PaymentMethod = "Debit Card"
	PayPal     PaymentMethod = "PayPal"
)

var PaymentMethods = []PaymentMethod{CreditCard, DebitCard, PayPal}

const DefaultProvince = "ON"

const checkoutRequiredMessage = "Please fill in all required fields."

type CheckoutForm struct {
	Name                 string
	Phone                string
	AddressLine1         string
	AddressLine2         string
	City                 string
	Province             string
	PostalCode           string
	DeliveryInstructions string
	PaymentMethod        PaymentMethod
}

func NewCheckoutForm() CheckoutForm {
	return CheckoutForm{
		Province:      DefaultProvince,
		PaymentMethod: CreditCard,
	}
}

func (f CheckoutForm) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", f.Name},
		{"addressLine1", f.AddressLine1},
		{"city", f.City},
		{"province", f.Province},
		{"postalCode", f.PostalCode},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if !validPaymentMethod(f.PaymentMethod) {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: checkoutRequiredMessage}
	}
	return nil
}

func validPaymentMethod(m PaymentMethod) bool {
	for _, method := range PaymentMethods {
		if method == m {
			return true
		}
	}
	return false
}

// OrderSummary is what the confirmation modal displays. Lines are copied out
// of the cart at review time.
type OrderSummary struct {
	Form  CheckoutForm
	Lines []CartLine
	Total decimal.Decimal
}

func (s OrderSummary) Phone() string {
	if s.Form.Phone == "" {
		return "N/A"
	}
	return s.Form.Phone
}

func (s OrderSummary) DeliveryInstructions() string {
	if s.Form.DeliveryInstructions == "" {
		return "None"
	}
	return s.Form.DeliveryInstructions
}

type OrderConfirmation struct {
	OrderID     uuid.UUID
	Summary     OrderSummary
	ConfirmedAt time.Time
}
