package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/usecases"
	"github.com/samirrijal/greenmap/internal/pkg/auth"
)

const userIDKey = "user_id"

// RequireAuth rejects requests without a valid bearer token for an existing
// user. The user ID is stored in c.Locals for downstream handlers.
func RequireAuth(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return errUnauthorized(c, "no token provided")
		}

		claims, err := deps.Tokens.ValidateToken(strings.TrimSpace(token))
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return errUnauthorized(c, "token expired")
		case err != nil:
			return errUnauthorized(c, "invalid token")
		}

		user, err := deps.Auth.Me(c.UserContext(), claims.UserID())
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return errUnauthorized(c, "user not found")
		}
		if err != nil {
			return handleError(c, err)
		}

		c.Locals(userIDKey, user.ID)
		return c.Next()
	}
}

// currentUserID returns the authenticated user's ID, or "" outside RequireAuth.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// RegisterHandler creates an account and returns a session.
func RegisterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		session, err := deps.Auth.Register(c.UserContext(), in)
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// LoginHandler exchanges credentials for a session.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in usecases.LoginInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		session, err := deps.Auth.Login(c.UserContext(), in)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(session)
	}
}

// MeHandler returns the signed-in user.
func MeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := deps.Auth.Me(c.UserContext(), currentUserID(c))
		if err != nil {
			return handleError(c, err)
		}
		c.Set("Cache-Control", "private, no-store")
		return c.JSON(user)
	}
}
