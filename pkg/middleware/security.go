package middleware

import "github.com/gofiber/fiber/v2"

type securityMiddleware struct{}

// NewSecurityMiddleware sets conservative response headers. The service only
// serves JSON.
func NewSecurityMiddleware() Middleware {
	return &securityMiddleware{}
}

func (m *securityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}
