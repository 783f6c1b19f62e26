package admin

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	authhandler "github.com/sahilchouksey/course-catalog/handlers/auth"
	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// SetGroupRequest names the new access group of an account.
type SetGroupRequest struct {
	AccessGroup string `json:"access_group"`
}

func toResponses(users []model.User) []authhandler.UserResponse {
	out := make([]authhandler.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, authhandler.NewUserResponse(&users[i]))
	}
	return out
}

// ListUsers handles GET /api/v1/admin/users. With ?members=true only
// member accounts are listed.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		users []model.User
		err   error
	)
	if c.QueryBool("members") {
		users, err = h.repo.GetMembers(ctx)
	} else {
		users, err = h.repo.GetUsers(ctx)
	}
	if err != nil {
		return err
	}
	return response.Success(c, toResponses(users))
}

// GetUser handles GET /api/v1/admin/users/:email
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	email, err := emailParam(c)
	if err != nil {
		return err
	}
	user, err := h.repo.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return response.Success(c, authhandler.NewUserResponse(user))
}

// ToggleBlock handles PUT /api/v1/admin/users/:email/block. Blocking also
// invalidates every token the account holds.
func (h *AdminHandler) ToggleBlock(c *fiber.Ctx) error {
	actor, target, err := h.loadTarget(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	blocked, err := h.repo.ToggleUserBlock(ctx, target.Email)
	if err != nil {
		return err
	}
	action := ActionUserUnblock
	if blocked {
		action = ActionUserBlock
		if err := h.repo.BumpTokenVersion(ctx, target.Email); err != nil {
			return err
		}
	}
	h.audit(c, actor, action, target.Email, map[string]interface{}{"blocked": blocked})

	target.Blocked = blocked
	return response.Success(c, authhandler.NewUserResponse(target))
}

// SetGroup handles PUT /api/v1/admin/users/:email/group
func (h *AdminHandler) SetGroup(c *fiber.Ctx) error {
	var req SetGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Malformed("Request body must be a JSON object with access_group", err)
	}
	group, err := model.ParseGroup(req.AccessGroup)
	if err != nil {
		return apperr.NewValidationError("access_group", err.Error())
	}
	if group == model.GroupServerAdmin {
		return fiber.NewError(fiber.StatusForbidden, "The Server Admin group cannot be granted")
	}

	actor, target, err := h.loadTarget(c)
	if err != nil {
		return err
	}
	if group > actor.AccessGroup {
		return fiber.NewError(fiber.StatusForbidden, "Cannot grant a group above your own")
	}

	ctx := c.UserContext()
	previous := target.AccessGroup
	if err := h.repo.EditUserGroup(ctx, target.Email, group); err != nil {
		return err
	}
	if group < previous {
		if err := h.repo.BumpTokenVersion(ctx, target.Email); err != nil {
			return err
		}
	}
	h.audit(c, actor, ActionUserGroupEdit, target.Email, map[string]interface{}{
		"from": previous.String(),
		"to":   group.String(),
	})

	target.AccessGroup = group
	return response.Success(c, authhandler.NewUserResponse(target))
}

// DeleteUser handles DELETE /api/v1/admin/users/:email
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, target, err := h.loadTarget(c)
	if err != nil {
		return err
	}
	if err := h.repo.DeleteUser(c.UserContext(), target.Email); err != nil {
		return err
	}
	h.audit(c, actor, ActionUserDelete, target.Email, nil)
	return response.NoContent(c)
}

// loadTarget resolves the acting admin and the account named in the path.
// Admins may only act on accounts in a lower group than their own.
func (h *AdminHandler) loadTarget(c *fiber.Ctx) (*model.User, *model.User, error) {
	actor, ok := middleware.GetUser(c)
	if !ok {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	email, err := emailParam(c)
	if err != nil {
		return nil, nil, err
	}
	target, err := h.repo.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		return nil, nil, err
	}
	if target.ID == actor.ID {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Cannot modify your own account")
	}
	if target.AccessGroup >= actor.AccessGroup {
		return nil, nil, fiber.NewError(fiber.StatusForbidden, "Cannot modify an account in an equal or higher group")
	}
	return actor, target, nil
}

func emailParam(c *fiber.Ctx) (string, error) {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil || email == "" {
		return "", apperr.NewValidationError("email", "A valid email address is required")
	}
	return email, nil
}
