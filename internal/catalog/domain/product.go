package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnitType string

const (
	UnitPiece  UnitType = "piece"
	UnitWeight UnitType = "weight"
	UnitVolume UnitType = "volume"
	UnitLength UnitType = "length"
)

// Measured reports whether quantities of this unit type are read off a scale
// or a gauge rather than counted.
func (t UnitType) Measured() bool {
	return t == UnitWeight || t == UnitVolume || t == UnitLength
}

// ProductUnit is one purchasable packaging of a product, e.g. a 500g pack.
// Quantity is the physical amount one unit represents.
type ProductUnit struct {
	ID          string          `json:"id"`
	Quantity    float64         `json:"quantity"`
	Label       string          `json:"label"`
	Prix        decimal.Decimal `json:"prix"`
	Stock       int             `json:"stock"`
	IsAvailable bool            `json:"isAvailable"`
	UnitType    UnitType        `json:"unitType"`
}

type Product struct {
	ID          string          `json:"id"`
	Nom         string          `json:"nom"`
	Description string          `json:"description,omitempty"`
	EpicerieID  int64           `json:"epicerieId"`
	Barcode     string          `json:"barcode,omitempty"`
	Prix        decimal.Decimal `json:"prix"`
	Stock       int             `json:"stock"`
	Units       []ProductUnit   `json:"units,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsLegacy is true for products priced without unit variants.
func (p Product) IsLegacy() bool {
	return len(p.Units) == 0
}

// LegacyUnit presents the flat price and stock of a legacy product as a
// single piece unit.
func (p Product) LegacyUnit() ProductUnit {
	return ProductUnit{
		Quantity:    1,
		Label:       "unité",
		Prix:        p.Prix,
		Stock:       p.Stock,
		IsAvailable: true,
		UnitType:    UnitPiece,
	}
}

// PurchasableUnits returns the unit variants, or the legacy unit when there
// are none.
func (p Product) PurchasableUnits() []ProductUnit {
	if p.IsLegacy() {
		return []ProductUnit{p.LegacyUnit()}
	}
	return p.Units
}

// Unit looks up a variant. An empty id selects the legacy unit and only
// matches legacy products.
func (p Product) Unit(id string) (ProductUnit, bool) {
	if id == "" {
		if p.IsLegacy() {
			return p.LegacyUnit(), true
		}
		return ProductUnit{}, false
	}
	for _, u := range p.Units {
		if u.ID == id {
			return u, true
		}
	}
	return ProductUnit{}, false
}
