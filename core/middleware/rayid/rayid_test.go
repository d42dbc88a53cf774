package rayid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Generates RayID", func(t *testing.T) {
		app := fiber.New()
		app.Use(New())

		var seen string
		app.Get("/", func(c *fiber.Ctx) error {
			seen = FromCtx(c)
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)

		header := resp.Header.Get(HeaderName)
		assert.NotEmpty(t, header)
		assert.Equal(t, header, seen)

		_, err = uuid.Parse(header)
		assert.NoError(t, err, "generated ray id should be a UUID")
	})

	t.Run("Reuses Client RayID", func(t *testing.T) {
		app := fiber.New()
		app.Use(New())
		app.Get("/", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderName, "upstream-id")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "upstream-id", resp.Header.Get(HeaderName))
	})
}

func TestFromCtx_Missing(t *testing.T) {
	app := fiber.New()

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = FromCtx(c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Empty(t, seen)
}
