package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom-backend/metrics"
	"stockroom-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockNotifier is told about every committed mutation
type StockNotifier interface {
	PublishStockChange(storeID string, evt StockChangeEvent)
}

// StockChangeEvent is the live-feed payload for a committed mutation
type StockChangeEvent struct {
	ProductID  string         `json:"product_id"`
	ActionType ActionType     `json:"action_type"`
	Quantity   int            `json:"quantity"`
	Locations  []LocationView `json:"locations"`
	TotalStock int            `json:"total_stock"`
	LogID      string         `json:"log_id"`
	ActorName  string         `json:"actor_name"`
	At         time.Time      `json:"at"`
}

// MutationResult is what a successful mutation returns to the caller
type MutationResult struct {
	Success    bool           `json:"success"`
	ProductID  string         `json:"product_id"`
	Locations  []LocationView `json:"locations"`
	TotalStock int            `json:"total_stock"`
	LogID      string         `json:"log_id"`
}

type InventoryService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier StockNotifier
	log      *zap.Logger
}

func NewInventoryService(db *gorm.DB, audit *AuditService, notifier StockNotifier, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{db: db, audit: audit, notifier: notifier, log: log}
}

// ApplyMutation validates, authorizes and applies one mutation. The location
// updates and the audit row commit together or not at all.
func (s *InventoryService) ApplyMutation(ctx context.Context, actor Actor, req MutationRequest) (*MutationResult, error) {
	// reject bad input before touching the store
	if err := req.Validate(); err != nil {
		metrics.RecordStockMutation(string(req.Action), "rejected")
		return nil, err
	}
	if err := Authorize(actor, PermMutateStock); err != nil {
		metrics.RecordStockMutation(string(req.Action), "rejected")
		return nil, err
	}

	var (
		ledger *Ledger
		entry  *models.InventoryLog
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// load the product and check its tenant
		var product models.Product
		if err := tx.Select("id", "store_id").First(&product, "id = ?", req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("load product: %w", err)
		}
		if err := EnsureSameStore(actor, product.StoreID); err != nil {
			return err
		}

		// load both ledger rows
		var rows []models.ProductLocation
		if err := tx.Where("product_id = ?", product.ID).Find(&rows).Error; err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		l, err := NewLedger(rows)
		if err != nil {
			return err
		}

		// apply the arithmetic in memory
		changed, fields, err := l.Apply(req)
		if err != nil {
			return err
		}
		// write source before destination
		for _, loc := range changed {
			res := tx.Model(&models.ProductLocation{}).
				Where("id = ?", loc.ID).
				Update("quantity", loc.Quantity)
			if res.Error != nil {
				return fmt.Errorf("update location %s: %w", loc.ID, res.Error)
			}
			if res.RowsAffected != 1 {
				return ErrCorruptProductState
			}
		}

		// append the audit row
		entry, err = s.audit.RecordMutation(tx, product.ID, actor.ProfileID, actor.FullName, fields)
		if err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		ledger = l
		return nil
	})
	if err != nil {
		metrics.RecordStockMutation(string(req.Action), mutationOutcome(err))
		if mutationOutcome(err) == "failed" {
			s.log.Error("stock mutation failed",
				zap.String("product_id", req.ProductID),
				zap.String("action", string(req.Action)),
				zap.Error(err))
		}
		return nil, err
	}
	metrics.RecordStockMutation(string(req.Action), "applied")

	// build the response from the committed ledger
	locations := locationViews(ledger.Rows())
	result := &MutationResult{
		Success:    true,
		ProductID:  req.ProductID,
		Locations:  locations,
		TotalStock: ledger.Total(),
		LogID:      entry.ID,
	}

	s.log.Info("stock mutation applied",
		zap.String("product_id", req.ProductID),
		zap.String("store_id", actor.StoreID),
		zap.String("action", string(req.Action)),
		zap.Int("quantity", req.Quantity),
		zap.Int("total_stock", result.TotalStock))

	// notify live clients of the store
	if s.notifier != nil {
		s.notifier.PublishStockChange(actor.StoreID, StockChangeEvent{
			ProductID:  req.ProductID,
			ActionType: req.Action,
			Quantity:   req.Quantity,
			Locations:  locations,
			TotalStock: result.TotalStock,
			LogID:      entry.ID,
			ActorName:  actor.FullName,
			At:         entry.CreatedAt,
		})
	}
	return result, nil
}

func mutationOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCrossTenant),
		errors.Is(err, ErrForbidden):
		return "rejected"
	}
	return "failed"
}
