package middleware

import (
	"context"
	"strings"

	"github.com/NeuralTrust/PromptGuard/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fastjson"
)

const maxSessionIDLength = 256

type sessionMiddleware struct {
	bodyParamName string
}

// NewSessionMiddleware resolves the caller's session id from the
// X-Session-Id header or the session_id body field. Callers that send
// neither get a fresh UUID, echoed back in the response header.
func NewSessionMiddleware() Middleware {
	return &sessionMiddleware{bodyParamName: "session_id"}
}

func (m *sessionMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionID := m.getSessionID(ctx)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		ctx.Locals(common.SessionIDContextKey, sessionID)
		ctx.SetUserContext(context.WithValue(ctx.UserContext(), common.SessionIDContextKey, sessionID))
		ctx.Set(common.SessionIDHeader, sessionID)

		return ctx.Next()
	}
}

func (m *sessionMiddleware) getSessionID(ctx *fiber.Ctx) string {
	if id := clean(ctx.Get(common.SessionIDHeader)); id != "" {
		return id
	}
	body := ctx.Body()
	if len(body) == 0 {
		return ""
	}
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return ""
	}
	return clean(string(v.GetStringBytes(m.bodyParamName)))
}

func clean(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > maxSessionIDLength {
		return ""
	}
	return id
}

// SessionID returns the id resolved by the session middleware.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(common.SessionIDContextKey).(string)
	return id
}
