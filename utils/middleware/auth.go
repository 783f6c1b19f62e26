package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/auth"
)

const (
	localUser   = "user"
	localClaims = "claims"
)

// UserLoader loads the account a token was issued to.
type UserLoader interface {
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	blacklist  *auth.BlacklistService
	users      UserLoader
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, blacklist *auth.BlacklistService, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
		users:      users,
	}
}

func unauthorized(msg string) error {
	return fiber.NewError(fiber.StatusUnauthorized, msg)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", unauthorized("Missing authorization token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", unauthorized("Invalid authorization format")
	}
	return parts[1], nil
}

// Require admits requests carrying a valid, unrevoked access token of an
// unblocked account that holds at least group.
func (m *AuthMiddleware) Require(group model.Group) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := BearerToken(c)
		if err != nil {
			return err
		}

		claims, err := m.jwtManager.ValidateTokenOfType(tokenString, auth.TokenTypeAccess)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return unauthorized("Token has expired")
			}
			return unauthorized("Invalid token")
		}

		ctx := c.UserContext()
		revoked, err := m.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return unauthorized("Token has been revoked")
		}

		user, err := m.users.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return unauthorized("User not found")
			}
			return err
		}
		if user.TokenVersion != claims.TokenVersion {
			return unauthorized("Token has been invalidated")
		}
		if user.Blocked {
			return fiber.NewError(fiber.StatusForbidden, "Account is blocked")
		}
		if !user.HasGroup(group) {
			return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
		}

		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// GetUser extracts the authenticated user from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(localUser).(*model.User)
	return u, ok && u != nil
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(localClaims).(*auth.Claims)
	return claims, ok && claims != nil
}
