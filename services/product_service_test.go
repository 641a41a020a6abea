package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"stockroom-backend/models"
	"stockroom-backend/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductInput(sku string) CreateProductInput {
	return CreateProductInput{
		Name:               "Espresso Beans",
		SKU:                sku,
		UnitCost:           decimal.RequireFromString("12.50"),
		IsExpensive:        true,
		MinQuantity:        3,
		MainLocationName:   "Aisle 4",
		MainQuantity:       6,
		SafetyLocationName: "Stockroom",
		SafetyQuantity:     2,
	}
}

func TestCreateProductInsertsBothLocations(t *testing.T) {
	db := testutils.SetupTestDB(t)
	_, owner := testutils.CreateStore(t, db, "Corner Shop")
	svc := NewProductService(db, 5, nil)

	view, err := svc.Create(context.Background(), ActorFromProfile(owner), newProductInput("000000001"))
	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalStock)
	require.Len(t, view.Locations, 2)
	assert.Equal(t, models.LocationMain, view.Locations[0].Type)
	assert.Equal(t, "Aisle 4", view.Locations[0].Name)
	assert.Equal(t, models.LocationSafety, view.Locations[1].Type)
	require.NotNil(t, view.UnitCost)
	assert.Equal(t, "12.5", view.UnitCost.String())

	var rows []models.ProductLocation
	require.NoError(t, db.Where("product_id = ?", view.ID).Find(&rows).Error)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, owner.StoreID, row.StoreID)
	}
}

func TestCreateProductValidation(t *testing.T) {
	db := testutils.SetupTestDB(t)
	store, owner := testutils.CreateStore(t, db, "Corner Shop")
	staff := testutils.CreateProfile(t, db, store.ID, "Sam Staff", models.RoleStaff)
	svc := NewProductService(db, 5, nil)
	ctx := context.Background()

	for _, sku := range []string{"12345678", "1234567890", "12345678a", "", "١٢٣٤٥٦٧٨٩"} {
		_, err := svc.Create(ctx, ActorFromProfile(owner), newProductInput(sku))
		assert.ErrorIs(t, err, ErrInvalidSKU, "sku %q", sku)
	}

	// bad SKU is reported even to staff
	_, err := svc.Create(ctx, ActorFromProfile(staff), newProductInput("12"))
	assert.ErrorIs(t, err, ErrInvalidSKU)

	_, err = svc.Create(ctx, ActorFromProfile(staff), newProductInput("123456789"))
	assert.ErrorIs(t, err, ErrForbidden)

	in := newProductInput("123456789")
	in.MainQuantity = -1
	_, err = svc.Create(ctx, ActorFromProfile(owner), in)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreateProductEnforcesStoreCap(t *testing.T) {
	db := testutils.SetupTestDB(t)
	_, owner := testutils.CreateStore(t, db, "Corner Shop")
	_, other := testutils.CreateStore(t, db, "Other Shop")
	svc := NewProductService(db, 5, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := svc.Create(ctx, ActorFromProfile(owner), newProductInput(fmt.Sprintf("10000000%d", i)))
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, ActorFromProfile(owner), newProductInput("100000006"))
	assert.ErrorIs(t, err, ErrProductLimitReached)
	assert.Equal(t, "Limit reached (5 products)", err.Error())

	// the cap is per store
	_, err = svc.Create(ctx, ActorFromProfile(other), newProductInput("200000001"))
	assert.NoError(t, err)
}

func TestCreateProductRejectsTakenSKU(t *testing.T) {
	db := testutils.SetupTestDB(t)
	_, owner := testutils.CreateStore(t, db, "Corner Shop")
	_, other := testutils.CreateStore(t, db, "Other Shop")
	svc := NewProductService(db, 5, nil)

	_, err := svc.Create(context.Background(), ActorFromProfile(owner), newProductInput("555555555"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ActorFromProfile(other), newProductInput("555555555"))
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestStaffViewOmitsCostKeys(t *testing.T) {
	db := testutils.SetupTestDB(t)
	store, owner := testutils.CreateStore(t, db, "Corner Shop")
	staff := testutils.CreateProfile(t, db, store.ID, "Sam Staff", models.RoleStaff)
	product := testutils.CreateProduct(t, db, store.ID, testutils.ProductFixture{
		SKU: "123456789", UnitCost: "99.99", IsExpensive: true, Main: 1, Safety: 1,
	})
	svc := NewProductService(db, 5, nil)

	staffView, err := svc.Get(context.Background(), ActorFromProfile(staff), product.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(staffView)
	require.NoError(t, err)

	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.NotContains(t, keys, "unit_cost")
	assert.NotContains(t, keys, "is_expensive")
	assert.Contains(t, keys, "qr_url")
	assert.Equal(t, float64(2), keys["total_stock"])

	ownerView, err := svc.Get(context.Background(), ActorFromProfile(owner), product.ID)
	require.NoError(t, err)
	raw, err = json.Marshal(ownerView)
	require.NoError(t, err)
	keys = nil
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Contains(t, keys, "unit_cost")
	assert.Equal(t, true, keys["is_expensive"])
}

func TestGetProductAcrossTenants(t *testing.T) {
	db := testutils.SetupTestDB(t)
	store, _ := testutils.CreateStore(t, db, "Corner Shop")
	_, intruder := testutils.CreateStore(t, db, "Rival Store")
	product := testutils.CreateProduct(t, db, store.ID, testutils.ProductFixture{SKU: "123456789"})
	svc := NewProductService(db, 5, nil)

	_, err := svc.Get(context.Background(), ActorFromProfile(intruder), product.ID)
	assert.ErrorIs(t, err, ErrCrossTenant)

	_, err = svc.Get(context.Background(), ActorFromProfile(intruder), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLookupBySKU(t *testing.T) {
	db := testutils.SetupTestDB(t)
	storeA, ownerA := testutils.CreateStore(t, db, "Store A")
	_, ownerB := testutils.CreateStore(t, db, "Store B")
	staffA := testutils.CreateProfile(t, db, storeA.ID, "Sam Staff", models.RoleStaff)
	product := testutils.CreateProduct(t, db, storeA.ID, testutils.ProductFixture{SKU: "987654321"})
	svc := NewProductService(db, 5, nil)
	ctx := context.Background()

	id, err := svc.LookupBySKU(ctx, ActorFromProfile(staffA), "987654321")
	require.NoError(t, err)
	assert.Equal(t, product.ID, id)

	id, err = svc.LookupBySKU(ctx, ActorFromProfile(ownerA), " 987654321 ")
	require.NoError(t, err)
	assert.Equal(t, product.ID, id)

	id, err = svc.LookupBySKU(ctx, ActorFromProfile(ownerB), "987654321")
	assert.ErrorIs(t, err, ErrCrossTenant)
	assert.Empty(t, id)

	_, err = svc.LookupBySKU(ctx, ActorFromProfile(ownerA), "111111111")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProductsFiltersLowStock(t *testing.T) {
	db := testutils.SetupTestDB(t)
	store, owner := testutils.CreateStore(t, db, "Corner Shop")
	other, _ := testutils.CreateStore(t, db, "Other Shop")
	testutils.CreateProduct(t, db, store.ID, testutils.ProductFixture{Name: "Tea", SKU: "000000001", Main: 8, Safety: 50, MinQuantity: 8})
	testutils.CreateProduct(t, db, store.ID, testutils.ProductFixture{Name: "Coffee", SKU: "000000002", Main: 9, Safety: 0, MinQuantity: 8})
	testutils.CreateProduct(t, db, store.ID, testutils.ProductFixture{Name: "Biscuits", SKU: "000000003", Main: 0, Safety: 0, MinQuantity: 0})
	testutils.CreateProduct(t, db, other.ID, testutils.ProductFixture{Name: "Alien", SKU: "000000004", Main: 0})
	svc := NewProductService(db, 5, nil)

	all, err := svc.List(context.Background(), ActorFromProfile(owner), ListFilter{SortByName: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Biscuits", "Coffee", "Tea"}, []string{all[0].Name, all[1].Name, all[2].Name})

	low, err := svc.List(context.Background(), ActorFromProfile(owner), ListFilter{LowStockOnly: true, SortByName: true})
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Biscuits", low[0].Name)
	assert.Equal(t, "Tea", low[1].Name)
	assert.True(t, low[1].IsLowStock)
}

func TestIsLowStockUsesMainOnly(t *testing.T) {
	p := &models.Product{
		MinQuantity: 5,
		Locations: []models.ProductLocation{
			{Type: models.LocationMain, Quantity: 5},
			{Type: models.LocationSafety, Quantity: 100},
		},
	}
	assert.True(t, IsLowStock(p))

	p.Locations[0].Quantity = 6
	assert.False(t, IsLowStock(p))
}
