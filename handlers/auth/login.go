package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	authutil "github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with email and password", err)
	}
	if err := h.validator.Check(req); err != nil {
		return err
	}

	ctx := c.UserContext()
	ip := c.IP()

	user, err := h.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return err
		}
		h.bruteForceProtection.RecordFailure(ctx, ip)
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.bruteForceProtection.RecordFailure(ctx, ip)
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}
	h.bruteForceProtection.RecordSuccess(ctx, ip)

	if user.Blocked {
		return fiber.NewError(fiber.StatusForbidden, "Account is blocked")
	}

	res, err := h.session(user)
	if err != nil {
		return err
	}
	return response.Success(c, res)
}
