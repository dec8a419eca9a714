package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

type Transport struct {
	PanicRecoverMiddleware Middleware
	CORSGlobalMiddleware   Middleware
	SecurityMiddleware     Middleware
	MetricsMiddleware      Middleware
	SessionMiddleware      Middleware
}

// Global returns the middlewares applied to every route, outermost first.
func (t *Transport) Global() []Middleware {
	var out []Middleware
	for _, m := range []Middleware{
		t.PanicRecoverMiddleware,
		t.CORSGlobalMiddleware,
		t.SecurityMiddleware,
		t.MetricsMiddleware,
	} {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
