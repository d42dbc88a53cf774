package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the fiber locals key under which the ray id is stored.
const LocalsKey = "ray_id"

// HeaderName is the response header carrying the ray id.
const HeaderName = "X-Ray-ID"

// New returns a middleware that assigns a unique ray id to every request.
// If the client already sent an X-Ray-ID header it is reused so ids survive
// proxy hops; otherwise a fresh UUID is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)

		return c.Next()
	}
}

// FromCtx returns the ray id stored in the request context, or "" when the
// middleware did not run.
func FromCtx(c *fiber.Ctx) string {
	if rid, ok := c.Locals(LocalsKey).(string); ok {
		return rid
	}
	return ""
}
