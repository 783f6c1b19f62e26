package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	authutil "github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles POST /api/v1/auth/refresh. The presented refresh
// token is revoked and a new pair issued.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with refresh_token", err)
	}
	if err := h.validator.Check(req); err != nil {
		return err
	}

	claims, err := h.jwtManager.ValidateTokenOfType(req.RefreshToken, authutil.TokenTypeRefresh)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	ctx := c.UserContext()
	revoked, err := h.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return fiber.NewError(fiber.StatusUnauthorized, "Token has been revoked")
	}

	user, err := h.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return fiber.NewError(fiber.StatusUnauthorized, "User not found")
		}
		return err
	}
	if user.TokenVersion != claims.TokenVersion {
		return fiber.NewError(fiber.StatusUnauthorized, "Token has been invalidated")
	}
	if user.Blocked {
		return fiber.NewError(fiber.StatusForbidden, "Account is blocked")
	}

	if err := h.blacklist.Revoke(ctx, claims, "token_refresh"); err != nil {
		return err
	}

	res, err := h.session(user)
	if err != nil {
		return err
	}
	return response.Success(c, res)
}

// LogoutRequest optionally names the refresh token to revoke as well.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	ctx := c.UserContext()
	if err := h.blacklist.Revoke(ctx, claims, "logout"); err != nil {
		return err
	}

	var req LogoutRequest
	if len(c.Body()) > 0 && c.BodyParser(&req) == nil && req.RefreshToken != "" {
		refresh, err := h.jwtManager.ValidateTokenOfType(req.RefreshToken, authutil.TokenTypeRefresh)
		if err == nil && refresh.UserID == claims.UserID {
			if err := h.blacklist.Revoke(ctx, refresh, "logout"); err != nil {
				return err
			}
		}
	}
	return response.NoContent(c)
}
