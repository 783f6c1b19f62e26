package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	authutil "github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/response"
	"github.com/sahilchouksey/course-catalog/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// Register handles POST /api/v1/auth/register. New accounts are members.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with email, password and name", err)
	}
	req.Name = validation.SanitizeString(req.Name)
	if err := h.validator.Check(req); err != nil {
		return err
	}
	if err := checkPassword("password", req.Password); err != nil {
		return err
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return apperr.NewValidationError("password", err.Error())
	}
	user, err := model.NewUser(req.Name, req.Email, hash, model.GroupMember)
	if err != nil {
		return err
	}
	if err := h.repo.AddUser(c.UserContext(), user); err != nil {
		return err
	}
	h.log.Info("user registered", "email", user.Email)

	res, err := h.session(user)
	if err != nil {
		return err
	}
	return response.CreatedData(c, res)
}
