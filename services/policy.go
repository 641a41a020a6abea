package services

import (
	"stockroom-backend/models"
)

// Actor is the authenticated caller, passed explicitly into every operation
type Actor struct {
	ProfileID string
	StoreID   string
	FullName  string
	Role      models.Role
}

// ActorFromProfile builds the actor for a freshly loaded profile
func ActorFromProfile(p *models.Profile) Actor {
	return Actor{
		ProfileID: p.ID,
		StoreID:   p.StoreID,
		FullName:  p.FullName,
		Role:      p.Role,
	}
}

func (a Actor) IsOwner() bool {
	return a.Role == models.RoleOwner
}

// Permission names a guarded operation
type Permission string

const (
	PermViewProducts  Permission = "products.view"
	PermCreateProduct Permission = "products.create"
	PermUploadQR      Permission = "products.qr"
	PermMutateStock   Permission = "inventory.mutate"
	PermViewLogs      Permission = "logs.view"
	PermManageStaff   Permission = "staff.manage"
)

var ownerOnly = map[Permission]bool{
	PermCreateProduct: true,
	PermUploadQR:      true,
	PermViewLogs:      true,
	PermManageStaff:   true,
}

// Authorize checks that the actor's role may perform the operation
func Authorize(actor Actor, perm Permission) error {
	switch actor.Role {
	case models.RoleOwner:
		return nil
	case models.RoleStaff:
		if ownerOnly[perm] {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// EnsureSameStore rejects access to a record owned by another tenant
func EnsureSameStore(actor Actor, storeID string) error {
	if actor.StoreID == "" || actor.StoreID != storeID {
		return ErrCrossTenant
	}
	return nil
}
