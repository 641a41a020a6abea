package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom-backend/models"

	"gorm.io/gorm"
)

// AuditService appends and reads the inventory log
type AuditService struct {
	db        *gorm.DB
	listLimit int
}

func NewAuditService(db *gorm.DB, listLimit int) *AuditService {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &AuditService{db: db, listLimit: listLimit}
}

// RecordMutation writes one log row inside the caller's transaction.
// The product is re-read to stamp the store id; actorName is stored as given.
func (a *AuditService) RecordMutation(tx *gorm.DB, productID, actorID, actorName string, fields LogFields) (*models.InventoryLog, error) {
	// store_id comes from the product, not the caller
	var product models.Product
	if err := tx.Select("id", "store_id").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("resolve product store: %w", err)
	}

	entry := &models.InventoryLog{
		StoreID:      product.StoreID,
		ProductID:    productID,
		UserID:       actorID,
		UserName:     actorName, // snapshot, not a join
		ActionType:   string(fields.ActionType),
		Quantity:     fields.Quantity,
		Reason:       fields.Reason,
		LocationFrom: fields.LocationFrom,
		LocationTo:   fields.LocationTo,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("insert inventory log: %w", err)
	}
	return entry, nil
}

// LogEntryView is a log row joined with its product's name and SKU
type LogEntryView struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSKU   string    `json:"product_sku"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	ActionType   string    `json:"action_type"`
	Quantity     int       `json:"quantity"`
	Reason       *string   `json:"reason"`
	LocationFrom *string   `json:"location_from"`
	LocationTo   *string   `json:"location_to"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListLogs returns the newest entries of the actor's store. Owners only.
func (a *AuditService) ListLogs(ctx context.Context, actor Actor, limit int) ([]LogEntryView, error) {
	if err := Authorize(actor, PermViewLogs); err != nil {
		return nil, err
	}
	// clamp to the configured cap
	if limit <= 0 || limit > a.listLimit {
		limit = a.listLimit
	}

	var rows []models.InventoryLog
	err := a.db.WithContext(ctx).
		Preload("Product").
		Where("store_id = ?", actor.StoreID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list inventory logs: %w", err)
	}

	// flatten product name and SKU into each entry
	views := make([]LogEntryView, 0, len(rows))
	for _, row := range rows {
		view := LogEntryView{
			ID:           row.ID,
			ProductID:    row.ProductID,
			UserID:       row.UserID,
			UserName:     row.UserName,
			ActionType:   row.ActionType,
			Quantity:     row.Quantity,
			Reason:       row.Reason,
			LocationFrom: row.LocationFrom,
			LocationTo:   row.LocationTo,
			CreatedAt:    row.CreatedAt,
		}
		if row.Product != nil {
			view.ProductName = row.Product.Name
			view.ProductSKU = row.Product.SKU
		}
		views = append(views, view)
	}
	return views, nil
}
