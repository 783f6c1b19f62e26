package admin

import (
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// Audit actions recorded by the admin handlers.
const (
	ActionUserBlock     = "user_block"
	ActionUserUnblock   = "user_unblock"
	ActionUserGroupEdit = "user_group_edit"
	ActionUserDelete    = "user_delete"
)

// AdminHandler serves the account management routes under /admin.
type AdminHandler struct {
	repo *repository.Repository
	log  *logger.Logger
}

func NewAdminHandler(repo *repository.Repository, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{repo: repo, log: log}
}
