package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"productapi/internal/config"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(messageType string, payload interface{}) error {
	args := m.Called(messageType, payload)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		AppPort:     ":8081",
		LogLevel:    "info",
		FrontendURL: "http://localhost:5173",
		Database:    config.DatabaseConfig{Driver: config.DriverMemory},
	}
}

func TestHealthAndDocs(t *testing.T) {
	app := newApp(testConfig(), dependencies{repo: repositories.NewMockProductRepository()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "up", health["database"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSAllowsFrontend(t *testing.T) {
	app := newApp(testConfig(), dependencies{repo: repositories.NewMockProductRepository()})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCreatePublishesEvent(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", models.EventProductCreated, mock.AnythingOfType("models.ProductEvent")).Return(nil).Once()
	app := newApp(testConfig(), dependencies{repo: repositories.NewMockProductRepository(), publisher: publisher})

	body, _ := json.Marshal(map[string]interface{}{"name": "Mouse - Testing", "price": 50})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	publisher.AssertExpectations(t)
}

func TestWriteGuardIsWiredWhenTokensConfigured(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)
	app := newApp(testConfig(), dependencies{repo: repositories.NewMockProductRepository(), tokens: tokens})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/products/1", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuditProductEvent(t *testing.T) {
	event := models.ProductEvent{ID: "evt-1", Type: models.EventProductDeleted, Product: models.Product{ID: 3}}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	assert.NoError(t, auditProductEvent(amqp.Delivery{Body: body}))
	assert.NoError(t, auditProductEvent(amqp.Delivery{Body: []byte("not json")}))
}
