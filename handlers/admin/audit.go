package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// ListAuditLogs handles GET /api/v1/admin/audit-logs, newest first.
// ?action filters by action.
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListAuditLogs(c.UserContext(), c.Query("action"), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// audit records an admin action. Failures are logged and do not fail the request.
func (h *AdminHandler) audit(c *fiber.Ctx, actor *model.User, action, targetEmail string, details map[string]interface{}) {
	if err := h.repo.RecordAudit(c.UserContext(), actor.ID, action, targetEmail, c.IP(), details); err != nil {
		h.log.Error("failed to record audit log", "action", action, "target", targetEmail, "error", err)
	}
}

// ListJobRuns handles GET /api/v1/admin/jobs with the most recent
// scheduled job runs.
func (h *AdminHandler) ListJobRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	logs, err := h.repo.LatestJobLogs(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return response.Success(c, logs)
}
