package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"stockroom-backend/models"
	"stockroom-backend/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productBody(sku string) map[string]interface{} {
	return map[string]interface{}{
		"name":                 "Green Tea",
		"sku":                  sku,
		"unit_cost":            "4.20",
		"is_expensive":         false,
		"min_quantity":         2,
		"main_location_name":   "Shelf A",
		"main_quantity":        10,
		"safety_location_name": "Back Room",
		"safety_quantity":      4,
	}
}

func TestCreateProductRoute(t *testing.T) {
	srv := setupTestServer(t, false)
	_, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	token := tokenFor(t, owner)

	status, body := srv.doJSON(t, "POST", "/api/products", token, productBody("12345"))
	assert.Equal(t, 400, status)
	assert.Equal(t, "SKU must be 9 digits.", body["error"])

	for i := 1; i <= 5; i++ {
		status, body = srv.doJSON(t, "POST", "/api/products", token, productBody(fmt.Sprintf("00000000%d", i)))
		require.Equal(t, 201, status, body)
	}
	assert.Equal(t, float64(14), body["total_stock"])
	assert.Len(t, body["locations"], 2)

	status, body = srv.doJSON(t, "POST", "/api/products", token, productBody("000000006"))
	assert.Equal(t, 402, status)
	assert.Equal(t, "Limit reached (5 products)", body["error"])
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	srv := setupTestServer(t, false)
	_, ownerA := testutils.CreateStore(t, srv.db, "Store A")
	_, ownerB := testutils.CreateStore(t, srv.db, "Store B")

	status, _ := srv.doJSON(t, "POST", "/api/products", tokenFor(t, ownerA), productBody("111111111"))
	require.Equal(t, 201, status)

	status, _ = srv.doJSON(t, "POST", "/api/products", tokenFor(t, ownerB), productBody("111111111"))
	assert.Equal(t, 409, status)
}

func TestGetProductRoleView(t *testing.T) {
	srv := setupTestServer(t, false)
	store, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	staff := testutils.CreateProfile(t, srv.db, store.ID, "Sam Staff", models.RoleStaff)
	_, intruder := testutils.CreateStore(t, srv.db, "Rival Store")
	product := testutils.CreateProduct(t, srv.db, store.ID, testutils.ProductFixture{
		SKU: "123456789", UnitCost: "250.00", IsExpensive: true, Main: 2, Safety: 1, MinQuantity: 3,
	})
	path := "/api/products/" + product.ID

	status, body := srv.doJSON(t, "GET", path, tokenFor(t, staff), nil)
	require.Equal(t, 200, status)
	assert.NotContains(t, body, "unit_cost")
	assert.NotContains(t, body, "is_expensive")
	assert.Equal(t, true, body["is_low_stock"])
	assert.Equal(t, float64(3), body["total_stock"])

	status, body = srv.doJSON(t, "GET", path, tokenFor(t, owner), nil)
	require.Equal(t, 200, status)
	assert.Contains(t, body, "unit_cost")
	assert.Equal(t, true, body["is_expensive"])

	status, _ = srv.doJSON(t, "GET", path, tokenFor(t, intruder), nil)
	assert.Equal(t, 403, status)

	status, _ = srv.doJSON(t, "GET", "/api/products/does-not-exist", tokenFor(t, owner), nil)
	assert.Equal(t, 404, status)
}

func TestListProductsRoute(t *testing.T) {
	srv := setupTestServer(t, false)
	store, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	testutils.CreateProduct(t, srv.db, store.ID, testutils.ProductFixture{Name: "Tea", SKU: "000000001", Main: 1, MinQuantity: 5})
	testutils.CreateProduct(t, srv.db, store.ID, testutils.ProductFixture{Name: "Coffee", SKU: "000000002", Main: 50, MinQuantity: 5})

	status, body := srv.doJSON(t, "GET", "/api/products?sort=name", tokenFor(t, owner), nil)
	require.Equal(t, 200, status)
	products := body["products"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "Coffee", products[0].(map[string]interface{})["name"])

	status, body = srv.doJSON(t, "GET", "/api/products?low_stock=true", tokenFor(t, owner), nil)
	require.Equal(t, 200, status)
	products = body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Tea", products[0].(map[string]interface{})["name"])
}

func TestLookupRoute(t *testing.T) {
	srv := setupTestServer(t, false)
	storeA, _ := testutils.CreateStore(t, srv.db, "Store A")
	_, ownerB := testutils.CreateStore(t, srv.db, "Store B")
	staffA := testutils.CreateProfile(t, srv.db, storeA.ID, "Sam Staff", models.RoleStaff)
	product := testutils.CreateProduct(t, srv.db, storeA.ID, testutils.ProductFixture{SKU: "987654321"})

	status, body := srv.doJSON(t, "POST", "/api/products/lookup", tokenFor(t, staffA), map[string]interface{}{"sku": "987654321"})
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, product.ID, body["id"])

	status, body = srv.doJSON(t, "POST", "/api/products/lookup", tokenFor(t, ownerB), map[string]interface{}{"sku": "987654321"})
	assert.Equal(t, 403, status)
	assert.NotContains(t, body, "id")
	assert.Equal(t, "Product belongs to another store", body["error"])

	status, body = srv.doJSON(t, "POST", "/api/products/lookup", tokenFor(t, staffA), map[string]interface{}{"sku": "000000000"})
	assert.Equal(t, 404, status)
	assert.Equal(t, false, body["found"])
}

func TestQRUploadRoute(t *testing.T) {
	srv := setupTestServer(t, true)
	store, owner := testutils.CreateStore(t, srv.db, "Corner Shop")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 20, 20))))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("sku", "123456789"))
	part, err := writer.CreateFormFile("file", "qr.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/products/qr", bytes.NewReader(form.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, owner))

	status, body := srv.send(t, req)
	require.Equal(t, 201, status, body)
	key := store.ID + "/123456789.png"
	assert.Equal(t, "https://storage.test/qrcode/"+key, body["qr_url"])
	assert.Contains(t, srv.objects.objects, key)

	disabled := setupTestServer(t, false)
	_, otherOwner := testutils.CreateStore(t, disabled.db, "No Bucket Shop")
	req = httptest.NewRequest("POST", "/api/products/qr", bytes.NewReader(form.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, otherOwner))

	status, _ = disabled.send(t, req)
	assert.Equal(t, 503, status)
}
