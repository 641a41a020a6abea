package main

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"stockroom-backend/models"
	"stockroom-backend/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLogsRoute(t *testing.T) {
	srv := setupTestServer(t, false)
	store, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	staff := testutils.CreateProfile(t, srv.db, store.ID, "Sam Staff", models.RoleStaff)
	product := testutils.CreateProduct(t, srv.db, store.ID, testutils.ProductFixture{Name: "Tea", SKU: "123456789", Main: 10, Safety: 5})

	status, _ := srv.doJSON(t, "POST", "/api/inventory/action", tokenFor(t, staff), map[string]interface{}{
		"productId": product.ID, "action": "move", "quantity": 2, "moveFromType": "main", "reason": "front display",
	})
	require.Equal(t, 200, status)

	status, body := srv.doJSON(t, "GET", "/api/logs", tokenFor(t, owner), nil)
	require.Equal(t, 200, status)
	logs := body["logs"].([]interface{})
	require.Len(t, logs, 1)

	entry := logs[0].(map[string]interface{})
	assert.Equal(t, "move", entry["action_type"])
	assert.Equal(t, "Tea", entry["product_name"])
	assert.Equal(t, "123456789", entry["product_sku"])
	assert.Equal(t, "Sam Staff", entry["user_name"])
	assert.Equal(t, "Shelf A", entry["location_from"])
	assert.Equal(t, "Back Room", entry["location_to"])
	assert.Equal(t, "front display", entry["reason"])
}

func TestLogsExportRoute(t *testing.T) {
	srv := setupTestServer(t, false)
	store, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	product := testutils.CreateProduct(t, srv.db, store.ID, testutils.ProductFixture{Name: "Tea", SKU: "123456789", Main: 10})

	status, _ := srv.doJSON(t, "POST", "/api/inventory/action", tokenFor(t, owner), map[string]interface{}{
		"productId": product.ID, "action": "stock_out", "quantity": 3, "locationType": "main",
	})
	require.Equal(t, 200, status)

	req := httptest.NewRequest("GET", "/api/logs/export", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, owner))
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment; filename=inventory-logs-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Logs")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tea", rows[1][1])
	assert.Equal(t, "stock_out", rows[1][3])
	assert.Equal(t, "3", rows[1][4])
}

func TestStaffRoutes(t *testing.T) {
	srv := setupTestServer(t, false)
	_, owner := testutils.CreateStore(t, srv.db, "Corner Shop")
	token := tokenFor(t, owner)

	status, body := srv.doJSON(t, "POST", "/api/staff", token, map[string]interface{}{
		"name": "Nina Night", "email": "nina@example.com", "password": "password123",
	})
	require.Equal(t, 201, status)
	assert.Equal(t, "staff", body["role"])
	assert.Equal(t, owner.StoreID, body["store_id"])

	status, body = srv.doJSON(t, "POST", "/api/staff", token, map[string]interface{}{
		"name": "Nina Again", "email": "nina@example.com", "password": "password123",
	})
	assert.Equal(t, 409, status)
	assert.Equal(t, "Staff member already exists in the system.", body["error"])

	status, body = srv.doJSON(t, "POST", "/api/staff", token, map[string]interface{}{
		"name": "No Mail", "password": "password123",
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "email is required", body["error"])

	status, body = srv.doJSON(t, "GET", "/api/staff", token, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["staff"], 2)

	// the new employee can sign in and sees the owner's store
	status, body = srv.doJSON(t, "POST", "/auth/login", "", map[string]interface{}{
		"email": "nina@example.com", "password": "password123",
	})
	require.Equal(t, 200, status)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, owner.StoreID, profile["store_id"])
}
