package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestRespondDomainErrorMapsDomainErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return respondDomainError(c, subscription.ErrSubscriptionNotFound)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, fiber.StatusNotFound, env.StatusCode)
	assert.Equal(t, "subscription_not_found", env.Error)
}

func TestRespondDomainErrorHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return respondDomainError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "internal_server_error", env.Error)
	assert.NotContains(t, env.Message, "10.0.0.5", "internal details must not leak")
}

func TestParseUintParam(t *testing.T) {
	app := fiber.New()
	app.Get("/business/:businessID", func(c *fiber.Ctx) error {
		id, err := parseUintParam(c, "businessID")
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
		}
		return respondOK(c, fiber.Map{"id": id})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/business/7", wantStatus: fiber.StatusOK},
		{path: "/business/0", wantStatus: fiber.StatusBadRequest},
		{path: "/business/-3", wantStatus: fiber.StatusBadRequest},
		{path: "/business/abc", wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, "path %s", tt.path)
	}
}
