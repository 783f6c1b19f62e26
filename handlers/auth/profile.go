package auth

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	authutil "github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
	"github.com/sahilchouksey/course-catalog/utils/response"
	"github.com/sahilchouksey/course-catalog/utils/storage"
	"github.com/sahilchouksey/course-catalog/utils/validation"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return response.Success(c, NewUserResponse(user))
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with name", err)
	}
	req.Name = validation.SanitizeString(req.Name)
	if err := h.validator.Check(req); err != nil {
		return err
	}

	if err := h.repo.EditUserName(c.UserContext(), user.Email, req.Name); err != nil {
		return err
	}
	user.Name = req.Name
	return response.Success(c, NewUserResponse(user))
}

// ChangePassword handles PUT /api/v1/auth/password. Every token issued
// before the change stops working, so a fresh pair is returned.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with current_password and new_password", err)
	}
	if err := h.validator.Check(req); err != nil {
		return err
	}
	if err := checkPassword("new_password", req.NewPassword); err != nil {
		return err
	}
	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperr.NewValidationError("current_password", "Current password is incorrect")
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.NewValidationError("new_password", err.Error())
	}

	ctx := c.UserContext()
	if err := h.repo.UpdateUserPassword(ctx, user.Email, hash); err != nil {
		return err
	}
	updated, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return err
	}
	res, err := h.session(updated)
	if err != nil {
		return err
	}
	return response.Success(c, res)
}

// UploadAvatar handles PUT /api/v1/auth/avatar with a multipart "avatar" file.
func (h *AuthHandler) UploadAvatar(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	if h.avatars == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Avatar storage is not configured")
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		return apperr.NewValidationError("avatar", "An avatar image file is required")
	}
	if header.Size > storage.MaxAvatarBytes {
		return apperr.NewValidationError("avatar", storage.ErrAvatarTooLarge.Error())
	}
	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "open avatar upload")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxAvatarBytes+1))
	if err != nil {
		return errors.Wrap(err, "read avatar upload")
	}

	ctx := c.UserContext()
	url, err := h.avatars.UploadAvatar(ctx, user.ID, data)
	if err != nil {
		if errors.Is(err, storage.ErrAvatarTooLarge) || errors.Is(err, storage.ErrUnsupportedAvatar) {
			return apperr.NewValidationError("avatar", err.Error())
		}
		h.log.Error("avatar upload failed", "user_id", user.ID, "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "Avatar storage is unavailable")
	}
	if err := h.repo.SetUserAvatar(ctx, user.Email, url); err != nil {
		return err
	}
	if user.AvatarURL != "" {
		if err := h.avatars.DeleteByURL(ctx, user.AvatarURL); err != nil {
			h.log.Warn("old avatar not removed", "url", user.AvatarURL, "error", err)
		}
	}
	user.AvatarURL = url
	return response.Success(c, NewUserResponse(user))
}
