package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stockroom-backend/config"
	"stockroom-backend/models"
	"stockroom-backend/services"
	"stockroom-backend/testutils"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memoryObjects stands in for the bucket
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryObjects) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://storage.test/qrcode/" + key, nil
}

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	hub     *services.Hub
	objects *memoryObjects
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "stockroom-test",
		Server:      config.ServerConfig{Env: "test", Port: "0", CORSOrigins: "*"},
		JWT:         config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		Log:         config.LogConfig{Level: "error"},
		Metrics:     config.MetricsConfig{Prefix: "stockroom_test"},
		Limits:      config.LimitsConfig{ProductsPerStore: 5, LogListLimit: 100},
	}
}

// setupTestServer builds the full app over a private database. withStorage=false
// leaves QR uploads disabled.
func setupTestServer(t *testing.T, withStorage bool) *testServer {
	t.Helper()

	cfg := testConfig()
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	db := testutils.SetupTestDB(t)
	hub := services.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := &testServer{db: db, hub: hub}
	var store services.ObjectStore
	if withStorage {
		srv.objects = &memoryObjects{objects: map[string][]byte{}}
		store = srv.objects
	}
	srv.app = newApp(cfg, db, zap.NewNop(), hub, store)
	return srv
}

// tokenFor issues a session token for a fixture profile
func tokenFor(t *testing.T, profile *models.Profile) string {
	t.Helper()
	token, err := utils.GenerateJWT(profile)
	require.NoError(t, err)
	return token
}

// doJSON sends a JSON request and decodes the JSON response into a map
func (s *testServer) doJSON(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}
