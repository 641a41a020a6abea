package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"stockroom-backend/metrics"
	"stockroom-backend/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var skuPattern = regexp.MustCompile(`^[0-9]{9}$`)

// ValidateSKU accepts exactly nine ASCII digits
func ValidateSKU(sku string) error {
	if !skuPattern.MatchString(sku) {
		return ErrInvalidSKU
	}
	return nil
}

// LocationView is one ledger row as the API shows it
type LocationView struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Type     models.LocationType `json:"type"`
	Quantity int                 `json:"quantity"`
}

// ProductView is a product with its locations, sanitized for the viewer's role.
// Staff never receive unit_cost or is_expensive: the keys are absent, not null.
type ProductView struct {
	ID          string           `json:"id"`
	StoreID     string           `json:"store_id"`
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	IsExpensive *bool            `json:"is_expensive,omitempty"`
	QRURL       *string          `json:"qr_url"`
	MinQuantity int              `json:"min_quantity"`
	Locations   []LocationView   `json:"locations"`
	TotalStock  int              `json:"total_stock"`
	IsLowStock  bool             `json:"is_low_stock"`
	CreatedAt   time.Time        `json:"created_at"`
}

func locationViews(rows []models.ProductLocation) []LocationView {
	views := make([]LocationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, LocationView{ID: row.ID, Name: row.Name, Type: row.Type, Quantity: row.Quantity})
	}
	// main before safety
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Type == models.LocationMain && views[j].Type != models.LocationMain
	})
	return views
}

// IsLowStock reports whether the main location is at or below the product's threshold
func IsLowStock(p *models.Product) bool {
	for _, loc := range p.Locations {
		if loc.Type == models.LocationMain {
			return loc.Quantity <= p.MinQuantity
		}
	}
	return false
}

// NewProductView builds the role-dependent representation of a product
func NewProductView(p *models.Product, role models.Role) ProductView {
	view := ProductView{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		SKU:         p.SKU,
		QRURL:       p.QRURL,
		MinQuantity: p.MinQuantity,
		Locations:   locationViews(p.Locations),
		IsLowStock:  IsLowStock(p),
		CreatedAt:   p.CreatedAt,
	}
	for _, loc := range p.Locations {
		view.TotalStock += loc.Quantity
	}
	if role == models.RoleOwner {
		cost := p.UnitCost
		expensive := p.IsExpensive
		view.UnitCost = &cost
		view.IsExpensive = &expensive
	}
	return view
}

// CreateProductInput is everything needed to register a product and its two locations
type CreateProductInput struct {
	Name               string
	SKU                string
	UnitCost           decimal.Decimal
	IsExpensive        bool
	MinQuantity        int
	QRURL              *string
	MainLocationName   string
	MainQuantity       int
	SafetyLocationName string
	SafetyQuantity     int
}

func (in CreateProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case strings.TrimSpace(in.MainLocationName) == "", strings.TrimSpace(in.SafetyLocationName) == "":
		return fmt.Errorf("%w: both location names are required", ErrInvalidProduct)
	case in.MainQuantity < 0, in.SafetyQuantity < 0:
		return fmt.Errorf("%w: initial quantities must not be negative", ErrInvalidProduct)
	case in.MinQuantity < 0:
		return fmt.Errorf("%w: min quantity must not be negative", ErrInvalidProduct)
	case in.UnitCost.IsNegative():
		return fmt.Errorf("%w: unit cost must not be negative", ErrInvalidProduct)
	}
	return nil
}

// ListFilter narrows and orders a product listing
type ListFilter struct {
	LowStockOnly bool
	SortByName   bool
}

type ProductService struct {
	db    *gorm.DB
	limit int
	log   *zap.Logger
}

func NewProductService(db *gorm.DB, productLimit int, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{db: db, limit: productLimit, log: log}
}

// Create registers a product with its main and safety rows in one transaction
func (s *ProductService) Create(ctx context.Context, actor Actor, in CreateProductInput) (*ProductView, error) {
	// SKU format is checked before the role
	in.SKU = strings.TrimSpace(in.SKU)
	if err := ValidateSKU(in.SKU); err != nil {
		return nil, err
	}
	if err := Authorize(actor, PermCreateProduct); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := models.Product{
		StoreID:     actor.StoreID,
		Name:        strings.TrimSpace(in.Name),
		SKU:         in.SKU,
		UnitCost:    in.UnitCost,
		IsExpensive: in.IsExpensive,
		QRURL:       in.QRURL,
		MinQuantity: in.MinQuantity,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// per-store product cap
		var count int64
		if err := tx.Model(&models.Product{}).Where("store_id = ?", actor.StoreID).Count(&count).Error; err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if s.limit > 0 && count >= int64(s.limit) {
			return fmt.Errorf("%w (%d products)", ErrProductLimitReached, s.limit)
		}

		// SKU is unique across all stores
		var taken int64
		if err := tx.Model(&models.Product{}).Where("sku = ?", in.SKU).Count(&taken).Error; err != nil {
			return fmt.Errorf("check sku: %w", err)
		}
		if taken > 0 {
			return ErrDuplicateSKU
		}

		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		// exactly one main and one safety row
		locations := []models.ProductLocation{
			{ProductID: product.ID, StoreID: actor.StoreID, Name: strings.TrimSpace(in.MainLocationName), Type: models.LocationMain, Quantity: in.MainQuantity},
			{ProductID: product.ID, StoreID: actor.StoreID, Name: strings.TrimSpace(in.SafetyLocationName), Type: models.LocationSafety, Quantity: in.SafetyQuantity},
		}
		if err := tx.Create(&locations).Error; err != nil {
			return fmt.Errorf("insert locations: %w", err)
		}
		product.Locations = locations
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordProductCreated()
	s.log.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("store_id", product.StoreID),
		zap.String("sku", product.SKU))

	view := NewProductView(&product, actor.Role)
	return &view, nil
}

// Get returns one product of the actor's store
func (s *ProductService) Get(ctx context.Context, actor Actor, id string) (*ProductView, error) {
	if err := Authorize(actor, PermViewProducts); err != nil {
		return nil, err
	}

	var product models.Product
	err := s.db.WithContext(ctx).Preload("Locations").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	if err := EnsureSameStore(actor, product.StoreID); err != nil {
		return nil, err
	}

	view := NewProductView(&product, actor.Role)
	return &view, nil
}

// List returns the actor's store catalogue, newest first unless sorted by name
func (s *ProductService) List(ctx context.Context, actor Actor, filter ListFilter) ([]ProductView, error) {
	if err := Authorize(actor, PermViewProducts); err != nil {
		return nil, err
	}

	order := "created_at DESC"
	if filter.SortByName {
		order = "name ASC"
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Locations").
		Where("store_id = ?", actor.StoreID).
		Order(order).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		if filter.LowStockOnly && !IsLowStock(&products[i]) {
			continue
		}
		views = append(views, NewProductView(&products[i], actor.Role))
	}
	return views, nil
}

// LookupBySKU resolves a scanned SKU to a product id within the actor's store
func (s *ProductService) LookupBySKU(ctx context.Context, actor Actor, sku string) (string, error) {
	if err := Authorize(actor, PermViewProducts); err != nil {
		return "", err
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return "", ErrInvalidSKU
	}

	var product models.Product
	err := s.db.WithContext(ctx).Select("id", "store_id").First(&product, "sku = ?", sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("lookup sku: %w", err)
	}
	if err := EnsureSameStore(actor, product.StoreID); err != nil {
		return "", err
	}
	return product.ID, nil
}

// SetQRURL stores the public QR image address on a product of the actor's store
func (s *ProductService) SetQRURL(ctx context.Context, actor Actor, sku, url string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("sku = ? AND store_id = ?", sku, actor.StoreID).
		Update("qr_url", url)
	if res.Error != nil {
		return fmt.Errorf("update qr url: %w", res.Error)
	}
	return nil
}
