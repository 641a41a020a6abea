package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryLog is an append-only record of one successful stock mutation.
// UserName is copied from the acting profile at write time and never updated.
type InventoryLog struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	StoreID      string    `json:"store_id" gorm:"type:varchar(36);index;not null"`
	ProductID    string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	UserID       string    `json:"user_id" gorm:"type:varchar(36);not null"`
	UserName     string    `json:"user_name" gorm:"not null"`
	ActionType   string    `json:"action_type" gorm:"type:varchar(16);not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	Reason       *string   `json:"reason"`
	LocationFrom *string   `json:"location_from"`
	LocationTo   *string   `json:"location_to"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (l *InventoryLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
