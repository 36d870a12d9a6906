package services

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// EngineContext carries the acting user and the evaluation instant into every
// engine call. Nothing in the engine reads ambient state — handlers build one
// of these per request, tests build them by hand.
type EngineContext struct {
	ActorID string
	Roles   []string
	Now     time.Time
}

// EngineContextFromFiber builds the context from the user-context middleware
// locals.
func EngineContextFromFiber(c *fiber.Ctx) EngineContext {
	ec := EngineContext{Now: time.Now()}
	if id, ok := c.Locals("user_id").(string); ok {
		ec.ActorID = id
	}
	if roles, ok := c.Locals("user_roles").([]string); ok {
		ec.Roles = roles
	}
	return ec
}

// HasRole checks role membership resolved upstream by the gateway.
func (ec EngineContext) HasRole(role string) bool {
	for _, r := range ec.Roles {
		if r == role {
			return true
		}
	}
	return false
}
