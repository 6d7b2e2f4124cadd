// Package pricing converts a requested quantity against a priced product unit
// into a price, an order-feasibility answer and a stock classification.
// Everything here is pure.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
)

var ErrUnknownUnit = errors.New("unknown product unit")

// Rounding decides whether a request may consume a fraction of a unit.
type Rounding int

const (
	// RoundingFractional compares the exact ratio requested/unit size with stock.
	RoundingFractional Rounding = iota
	// RoundingWholeUnits rounds the ratio up: customers buy whole packs.
	RoundingWholeUnits
)

func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fractional":
		return RoundingFractional, nil
	case "whole":
		return RoundingWholeUnits, nil
	default:
		return 0, fmt.Errorf("unknown unit rounding %q", s)
	}
}

func (r Rounding) String() string {
	if r == RoundingWholeUnits {
		return "whole"
	}
	return "fractional"
}

// ratio is requested/unit.Quantity. ok is false for a unit without a
// positive size.
func ratio(unit domain.ProductUnit, requested float64) (decimal.Decimal, bool) {
	if unit.Quantity <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(requested).Div(decimal.NewFromFloat(unit.Quantity)), true
}

// CalculateUnitPrice is unit.Prix × requested/unit.Quantity, unrounded. The
// caller keeps both quantities in the same measure.
func CalculateUnitPrice(unit domain.ProductUnit, requested float64) decimal.Decimal {
	r, ok := ratio(unit, requested)
	if !ok {
		return decimal.Zero
	}
	return unit.Prix.Mul(r)
}

// CanOrder reports whether the unit is available and its stock covers the
// exact, unrounded number of units the request consumes.
func CanOrder(unit domain.ProductUnit, requested float64) bool {
	return Calculator{Rounding: RoundingFractional}.CanOrder(unit, requested)
}

// CalculateUnitsNeeded is the whole number of units covering the request.
func CalculateUnitsNeeded(unit domain.ProductUnit, requested float64) int {
	r, ok := ratio(unit, requested)
	if !ok {
		return 0
	}
	return int(r.Ceil().IntPart())
}

// Calculator applies one Rounding policy consistently to feasibility, units
// and price.
type Calculator struct {
	Rounding Rounding
}

func NewCalculator(r Rounding) Calculator {
	return Calculator{Rounding: r}
}

// UnitsNeeded is the exact ratio under RoundingFractional and its ceiling
// under RoundingWholeUnits.
func (c Calculator) UnitsNeeded(unit domain.ProductUnit, requested float64) decimal.Decimal {
	r, ok := ratio(unit, requested)
	if !ok {
		return decimal.Zero
	}
	if c.Rounding == RoundingWholeUnits {
		return r.Ceil()
	}
	return r
}

func (c Calculator) CanOrder(unit domain.ProductUnit, requested float64) bool {
	if !unit.IsAvailable || unit.Quantity <= 0 {
		return false
	}
	return decimal.NewFromInt(int64(unit.Stock)).GreaterThanOrEqual(c.UnitsNeeded(unit, requested))
}

func (c Calculator) Price(unit domain.ProductUnit, requested float64) decimal.Decimal {
	return unit.Prix.Mul(c.UnitsNeeded(unit, requested))
}

type UnitQuote struct {
	Unit        domain.ProductUnit
	Requested   float64
	UnitsNeeded decimal.Decimal
	Price       decimal.Decimal
	Orderable   bool
	Stock       StockLevel
}

// Quote prices a request against one variant of product. An empty unitID
// selects legacy pricing.
func (c Calculator) Quote(p domain.Product, unitID string, requested float64) (UnitQuote, error) {
	unit, ok := p.Unit(unitID)
	if !ok {
		return UnitQuote{}, fmt.Errorf("product %s unit %q: %w", p.ID, unitID, ErrUnknownUnit)
	}
	return UnitQuote{
		Unit:        unit,
		Requested:   requested,
		UnitsNeeded: c.UnitsNeeded(unit, requested),
		Price:       c.Price(unit, requested),
		Orderable:   c.CanOrder(unit, requested),
		Stock:       GetStockLevel(unit.Stock),
	}, nil
}

// FormatPrice renders an amount in euros with two decimals.
func FormatPrice(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", ",", 1) + " €"
}

// CanOrderPacks reports whether count whole units of unit can be ordered.
func CanOrderPacks(unit domain.ProductUnit, count int) bool {
	return count > 0 && unit.IsAvailable && unit.Quantity > 0 && unit.Stock >= count
}
