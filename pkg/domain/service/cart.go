package service

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

// CartLedger is total: no operation fails, and operations on a missing line
// are silent no-ops.
type CartLedger interface {
	Add(item model.CatalogItem, quantity int) model.CartLine
	Remove(itemID model.ItemID)
	Increment(itemID model.ItemID)
	Decrement(itemID model.ItemID)
	Reset()

	Lines() []model.CartLine
	Line(itemID model.ItemID) (model.CartLine, bool)
	TotalPrice() decimal.Decimal
	TotalQuantity() int
	IsEmpty() bool
}

func NewCartLedger(dispatcher EventDispatcher, logger logrus.FieldLogger) CartLedger {
	return &cartLedger{dispatcher: dispatcher, logger: logger.WithField("component", "cart")}
}

type cartLedger struct {
	// writeMu orders mutation+notification pairs; mu guards lines for readers.
	// Subscribers may read the cart but must not mutate it.
	writeMu sync.Mutex
	mu      sync.RWMutex
	lines   []model.CartLine

	dispatcher EventDispatcher
	logger     logrus.FieldLogger
}

func (c *cartLedger) Add(item model.CatalogItem, quantity int) model.CartLine {
	added := model.NewCartLine(item, quantity)
	var result model.CartLine
	c.mutate(model.CartChangeAdded, item.ID, func() bool {
		if i := c.indexOf(item.ID); i >= 0 {
			c.lines[i].Quantity += added.Quantity
			result = c.lines[i]
			return true
		}
		c.lines = append(c.lines, added)
		result = added
		return true
	})
	return result
}

func (c *cartLedger) Remove(itemID model.ItemID) {
	c.mutate(model.CartChangeRemoved, itemID, func() bool {
		i := c.indexOf(itemID)
		if i < 0 {
			return false
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	})
}

func (c *cartLedger) Increment(itemID model.ItemID) {
	c.mutate(model.CartChangeIncremented, itemID, func() bool {
		i := c.indexOf(itemID)
		if i < 0 {
			return false
		}
		c.lines[i].Quantity++
		return true
	})
}

// Decrement floors at one; Remove is the only way to drop a line.
func (c *cartLedger) Decrement(itemID model.ItemID) {
	c.mutate(model.CartChangeDecremented, itemID, func() bool {
		i := c.indexOf(itemID)
		if i < 0 || c.lines[i].Quantity <= 1 {
			return false
		}
		c.lines[i].Quantity--
		return true
	})
}

func (c *cartLedger) Reset() {
	c.mutate(model.CartChangeReset, "", func() bool {
		c.lines = nil
		return true
	})
}

func (c *cartLedger) Lines() []model.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CartLine(nil), c.lines...)
}

func (c *cartLedger) Line(itemID model.ItemID) (model.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(itemID); i >= 0 {
		return c.lines[i], true
	}
	return model.CartLine{}, false
}

// TotalPrice is unrounded; use model.FormatPrice to present it.
func (c *cartLedger) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.TotalPrice(c.lines)
}

func (c *cartLedger) TotalQuantity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.TotalQuantity(c.lines)
}

func (c *cartLedger) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

func (c *cartLedger) indexOf(itemID model.ItemID) int {
	for i, line := range c.lines {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (c *cartLedger) mutate(change string, itemID model.ItemID, apply func() bool) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	changed := apply()
	event := model.CartChanged{
		Change:        change,
		ItemID:        itemID,
		TotalQuantity: model.TotalQuantity(c.lines),
		LineCount:     len(c.lines),
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	dispatchEvent(c.dispatcher, c.logger, event)
}
