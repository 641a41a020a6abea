// Package testutils builds isolated sqlite databases and fixtures for tests.
package testutils

import (
	"fmt"
	"testing"

	"stockroom-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory database with every table migrated.
// One connection keeps every query on the same memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// CreateStore creates a store with its owner
func CreateStore(t *testing.T, db *gorm.DB, name string) (*models.Store, *models.Profile) {
	t.Helper()

	store := &models.Store{Name: name}
	require.NoError(t, db.Create(store).Error)

	owner := CreateProfile(t, db, store.ID, name+" Owner", models.RoleOwner)
	return store, owner
}

// Password is the password of every fixture profile
const Password = "password123"

// CreateProfile adds a profile that signs in with Password
func CreateProfile(t *testing.T, db *gorm.DB, storeID, fullName string, role models.Role) *models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	profile := &models.Profile{
		StoreID:      storeID,
		FullName:     fullName,
		Role:         role,
		Email:        fmt.Sprintf("%s@test.com", uuid.NewString()[:8]),
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// ProductFixture describes a product to seed
type ProductFixture struct {
	Name        string
	SKU         string
	UnitCost    string
	IsExpensive bool
	MinQuantity int
	Main        int
	Safety      int
}

// CreateProduct seeds a product with "Shelf A" as main and "Back Room" as safety
func CreateProduct(t *testing.T, db *gorm.DB, storeID string, f ProductFixture) *models.Product {
	t.Helper()

	if f.Name == "" {
		f.Name = "Product " + f.SKU
	}
	cost := decimal.Zero
	if f.UnitCost != "" {
		cost = decimal.RequireFromString(f.UnitCost)
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        f.Name,
		SKU:         f.SKU,
		UnitCost:    cost,
		IsExpensive: f.IsExpensive,
		MinQuantity: f.MinQuantity,
	}
	require.NoError(t, db.Create(product).Error)

	locations := []models.ProductLocation{
		{ProductID: product.ID, StoreID: storeID, Name: "Shelf A", Type: models.LocationMain, Quantity: f.Main},
		{ProductID: product.ID, StoreID: storeID, Name: "Back Room", Type: models.LocationSafety, Quantity: f.Safety},
	}
	require.NoError(t, db.Create(&locations).Error)
	product.Locations = locations
	return product
}

// Quantities reads the current main and safety quantities of a product
func Quantities(t *testing.T, db *gorm.DB, productID string) (main, safety int) {
	t.Helper()

	var rows []models.ProductLocation
	require.NoError(t, db.Where("product_id = ?", productID).Find(&rows).Error)
	for _, row := range rows {
		switch row.Type {
		case models.LocationMain:
			main = row.Quantity
		case models.LocationSafety:
			safety = row.Quantity
		}
	}
	return main, safety
}
