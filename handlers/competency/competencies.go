package competency

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// CompetencyHandler handles competency-related requests
type CompetencyHandler struct {
	repo *repository.Repository
}

// NewCompetencyHandler creates a new competency handler
func NewCompetencyHandler(repo *repository.Repository) *CompetencyHandler {
	return &CompetencyHandler{repo: repo}
}

func competencyURL(id string) string {
	return fmt.Sprintf("/api/v1/competencies/%s", id)
}

// ListCompetencies handles GET /api/v1/competencies
func (h *CompetencyHandler) ListCompetencies(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListCompetencies(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateCompetency handles POST /api/v1/competencies. The body carries the
// competency together with its first element.
func (h *CompetencyHandler) CreateCompetency(c *fiber.Ctx) error {
	rec, err := query.Record(c, "competency and element")
	if err != nil {
		return err
	}
	cw, err := model.CompetencyWithElementFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddCompetencyWithElement(c.UserContext(), cw); err != nil {
		return err
	}
	return response.Created(c, competencyURL(cw.Competency.CompetencyID), "New competency resource created")
}

// GetCompetency handles GET /api/v1/competencies/:id
func (h *CompetencyHandler) GetCompetency(c *fiber.Ctx) error {
	competency, err := h.repo.GetCompetency(c.UserContext(), c.Params("id"))
	if err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("competency"))
	}
	return response.Resource(c, competency)
}

// PutCompetency handles PUT /api/v1/competencies/:id. An existing competency
// is updated from the competency keys alone. Otherwise the body must also
// carry the first element and both are created together.
func (h *CompetencyHandler) PutCompetency(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	rec, err := query.Record(c, "competency")
	if err != nil {
		return err
	}
	competency, err := model.CompetencyFromUpdateRecord(rec)
	if err != nil {
		return err
	}
	if competency.CompetencyID != id {
		return apperr.NewValidationError("competency_id", "Competency id specified in the URL must match the submitted competency id")
	}

	_, err = h.repo.GetCompetency(ctx, id)
	if err == nil {
		if err := h.repo.EditCompetency(ctx, competency); err != nil {
			return err
		}
		return response.Created(c, competencyURL(id),
			"Update Competency Request Complete. New element resource, if provided, must be added separately")
	}
	if !apperr.IsNotFound(err) {
		return err
	}

	cw, err := model.CompetencyWithElementFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddCompetencyWithElement(ctx, cw); err != nil {
		return err
	}
	return response.Created(c, competencyURL(id), "Add Competency And Element Request Complete")
}

// DeleteCompetency handles DELETE /api/v1/competencies/:id
func (h *CompetencyHandler) DeleteCompetency(c *fiber.Ctx) error {
	if err := h.repo.DeleteCompetency(c.UserContext(), c.Params("id")); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}

// ListCompetencyElements handles GET /api/v1/competencies/:id/elements
func (h *CompetencyHandler) ListCompetencyElements(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	req, err := query.Page(c)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetCompetency(ctx, id); err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("competency"))
	}
	page, err := h.repo.ListElementsOfCompetency(ctx, id, req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateCompetencyElement handles POST /api/v1/competencies/:id/elements
func (h *CompetencyHandler) CreateCompetencyElement(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	rec, err := query.Record(c, "element")
	if err != nil {
		return err
	}
	element, err := model.ElementFromRecord(rec)
	if err != nil {
		return err
	}
	if element.CompetencyID != id {
		return apperr.NewValidationError("competency_id", "Competency id specified in the URL must match the submitted element competency id")
	}
	if _, err := h.repo.GetCompetency(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NewValidationError("competency_id", "Competency id specified in the URL does not exist")
		}
		return err
	}
	if err := h.repo.AddElement(ctx, element); err != nil {
		return err
	}
	return response.Created(c, c.Path(), "New element resource created")
}

// ListCompetencyCourses handles GET /api/v1/competencies/:id/courses
func (h *CompetencyHandler) ListCompetencyCourses(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	if _, err := h.repo.GetCompetency(ctx, id); err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("competency"))
	}
	courses, err := h.repo.CoursesOfCompetency(ctx, id)
	if err != nil {
		return err
	}
	return response.Records(c, courses)
}
