package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the only authorization discriminant of the system
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Profile is a person who can log into a store
type Profile struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	StoreID      string    `json:"store_id" gorm:"type:varchar(36);index;not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:'staff'"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsOwner reports whether the profile owns its store
func (p *Profile) IsOwner() bool {
	return p.Role == RoleOwner
}
