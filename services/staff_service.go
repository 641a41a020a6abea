package services

import (
	"context"
	"fmt"
	"strings"

	"stockroom-backend/models"
	"stockroom-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewStaffInput is an owner's request to add an employee to their store
type NewStaffInput struct {
	FullName string
	Email    string
	Password string
}

type StaffService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStaffService(db *gorm.DB, log *zap.Logger) *StaffService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StaffService{db: db, log: log}
}

// AddStaff creates a staff profile in the owner's store. Emails are global.
func (s *StaffService) AddStaff(ctx context.Context, actor Actor, in NewStaffInput) (*models.Profile, error) {
	if err := Authorize(actor, PermManageStaff); err != nil {
		return nil, err
	}

	// emails are stored lower-cased
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.FullName)
	if email == "" || name == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: name, email and a password of at least 6 characters are required", ErrInvalidStaff)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := models.Profile{
		StoreID:      actor.StoreID,
		FullName:     name,
		Role:         models.RoleStaff,
		Email:        email,
		PasswordHash: hash,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// an email belongs to one profile system-wide
		var existing int64
		if err := tx.Model(&models.Profile{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if existing > 0 {
			return ErrStaffExists
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("staff member added",
		zap.String("profile_id", profile.ID),
		zap.String("store_id", profile.StoreID))
	return &profile, nil
}

// ListStaff returns every profile of the owner's store, owner included
func (s *StaffService) ListStaff(ctx context.Context, actor Actor) ([]models.Profile, error) {
	if err := Authorize(actor, PermManageStaff); err != nil {
		return nil, err
	}
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Where("store_id = ?", actor.StoreID).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return profiles, nil
}
