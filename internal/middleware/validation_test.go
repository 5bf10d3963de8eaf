package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"productapi/internal/middleware"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls int
}

func (r *recorder) handler(c *fiber.Ctx) error {
	r.calls++
	id, _ := middleware.ProductID(c)
	input, _ := middleware.ProductInput(c)
	return c.JSON(fiber.Map{"id": id, "name": input.Name, "price": input.Price})
}

func newTestApp(rec *recorder) *fiber.App {
	v := validation.New()
	app := fiber.New()
	app.Post("/items", middleware.ValidateBody(v), rec.handler)
	app.Get("/items/:id", middleware.ValidateID(v), rec.handler)
	app.Put("/items/:id", middleware.ValidateID(v), middleware.ValidateBody(v), rec.handler)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestValidateBody(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(rec)

	status, body := send(t, app, http.MethodPost, "/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 4)
	assert.Equal(t, 0, rec.calls)

	status, body = send(t, app, http.MethodPost, "/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 1)
	assert.Equal(t, 0, rec.calls)

	status, body = send(t, app, http.MethodPost, "/items", `{"name":"Mouse","price":50}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Mouse", body["name"])
	assert.Equal(t, 50.0, body["price"])
	assert.Equal(t, 1, rec.calls)
}

func TestValidateID(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(rec)

	status, body := send(t, app, http.MethodGet, "/items/hello", "")
	assert.Equal(t, http.StatusBadRequest, status)
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "Invalid ID", first["msg"])
	assert.Equal(t, "hello", first["value"])
	assert.Equal(t, "params", first["location"])
	assert.Equal(t, 0, rec.calls)

	status, body = send(t, app, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 42.0, body["id"])
}

func TestInvalidIDShortCircuitsBodyValidation(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(rec)

	status, body := send(t, app, http.MethodPut, "/items/1.5", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 1)

	status, body = send(t, app, http.MethodPut, "/items/7", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 4)
	assert.Equal(t, 0, rec.calls)
}
