package term

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

const missingTerm = "Specified term id does not exist"

// TermHandler handles term-related requests
type TermHandler struct {
	repo *repository.Repository
}

// NewTermHandler creates a new term handler
func NewTermHandler(repo *repository.Repository) *TermHandler {
	return &TermHandler{repo: repo}
}

func termURL(id int) string {
	return fmt.Sprintf("/api/v1/terms/%d", id)
}

// ListTerms handles GET /api/v1/terms
func (h *TermHandler) ListTerms(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListTerms(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateTerm handles POST /api/v1/terms
func (h *TermHandler) CreateTerm(c *fiber.Ctx) error {
	rec, err := query.Record(c, "term")
	if err != nil {
		return err
	}
	term, err := model.TermFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddTerm(c.UserContext(), term); err != nil {
		return err
	}
	return response.Created(c, termURL(term.TermID), "New term resource created")
}

// GetTerm handles GET /api/v1/terms/:id
func (h *TermHandler) GetTerm(c *fiber.Ctx) error {
	notFound := query.CouldNotFind("term")
	id, err := query.IntParam(c, "id", notFound)
	if err != nil {
		return err
	}
	term, err := h.repo.GetTerm(c.UserContext(), id)
	if err != nil {
		return query.ReadNotFound(err, notFound)
	}
	return response.Resource(c, term)
}

// UpdateTerm handles PUT /api/v1/terms/:id. A term that does not exist yet
// is created.
func (h *TermHandler) UpdateTerm(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingTerm)
	if err != nil {
		return query.WriteNotFound(err)
	}
	rec, err := query.Record(c, "term")
	if err != nil {
		return err
	}
	term, err := model.TermFromRecord(rec)
	if err != nil {
		return err
	}
	if term.TermID != id {
		return apperr.NewValidationError("term_id", "Term id specified in the URL must match the submitted term id")
	}

	ctx := c.UserContext()
	_, err = h.repo.GetTerm(ctx, id)
	switch {
	case err == nil:
		if err := h.repo.EditTerm(ctx, term); err != nil {
			return err
		}
		return response.Created(c, termURL(id), "Update Term Request Complete")
	case apperr.IsNotFound(err):
		if err := h.repo.AddTerm(ctx, term); err != nil {
			return err
		}
		return response.Created(c, termURL(id), "Add Term Request Complete")
	default:
		return err
	}
}

// DeleteTerm handles DELETE /api/v1/terms/:id
func (h *TermHandler) DeleteTerm(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingTerm)
	if err != nil {
		return query.WriteNotFound(err)
	}
	if err := h.repo.DeleteTerm(c.UserContext(), id); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}
