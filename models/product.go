package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LocationType tags one of the two fixed stock locations of a product
type LocationType string

const (
	LocationMain   LocationType = "main"
	LocationSafety LocationType = "safety"
)

// Valid reports whether t is main or safety
func (t LocationType) Valid() bool {
	return t == LocationMain || t == LocationSafety
}

// Other returns the complementary location type
func (t LocationType) Other() LocationType {
	if t == LocationMain {
		return LocationSafety
	}
	return LocationMain
}

// Product holds identity, descriptive and pricing data. Stock lives in ProductLocation.
type Product struct {
	ID          string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	StoreID     string          `json:"store_id" gorm:"type:varchar(36);index;not null"`
	Name        string          `json:"name" gorm:"not null"`
	SKU         string          `json:"sku" gorm:"type:varchar(9);uniqueIndex;not null"`
	UnitCost    decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2);not null;default:0"`
	IsExpensive bool            `json:"is_expensive" gorm:"not null;default:false"`
	QRURL       *string         `json:"qr_url"`
	MinQuantity int             `json:"min_quantity" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Locations []ProductLocation `json:"locations,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductLocation is one ledger row: the on-hand quantity of a product at one location
type ProductLocation struct {
	ID        string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProductID string       `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_product_location_type"`
	StoreID   string       `json:"store_id" gorm:"type:varchar(36);index;not null"`
	Name      string       `json:"name" gorm:"not null"`
	Type      LocationType `json:"type" gorm:"type:varchar(16);not null;uniqueIndex:idx_product_location_type"`
	Quantity  int          `json:"quantity" gorm:"not null;default:0"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (l *ProductLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
