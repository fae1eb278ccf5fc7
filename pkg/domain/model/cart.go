package model

import "github.com/shopspring/decimal"

// pricePlaces is applied only when a price is rendered.
const pricePlaces = 2

type CartLine struct {
	ItemID    ItemID
	Name      string
	ImageRef  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// NewCartLine clamps quantity to at least one.
func NewCartLine(item CatalogItem, quantity int) CartLine {
	if quantity < 1 {
		quantity = 1
	}
	return CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		ImageRef:  item.ImageURL,
		UnitPrice: item.Price,
		Quantity:  quantity,
	}
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func TotalPrice(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func TotalQuantity(lines []CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(pricePlaces)
}
