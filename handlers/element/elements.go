package element

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

const missingElement = "Specified element id does not exist"

// ElementHandler handles element-related requests
type ElementHandler struct {
	repo *repository.Repository
}

// NewElementHandler creates a new element handler
func NewElementHandler(repo *repository.Repository) *ElementHandler {
	return &ElementHandler{repo: repo}
}

func elementURL(id int) string {
	return fmt.Sprintf("/api/v1/elements/%d", id)
}

// ListElements handles GET /api/v1/elements
func (h *ElementHandler) ListElements(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListElements(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateElement handles POST /api/v1/elements
func (h *ElementHandler) CreateElement(c *fiber.Ctx) error {
	rec, err := query.Record(c, "element")
	if err != nil {
		return err
	}
	element, err := model.ElementFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddElement(c.UserContext(), element); err != nil {
		return err
	}
	return response.Created(c, elementURL(element.ElementID), "New element resource created")
}

// GetLatestElement handles GET /api/v1/elements/latest
func (h *ElementHandler) GetLatestElement(c *fiber.Ctx) error {
	element, err := h.repo.LatestElement(c.UserContext())
	if err != nil {
		return err
	}
	return response.Resource(c, element)
}

// GetElement handles GET /api/v1/elements/:id
func (h *ElementHandler) GetElement(c *fiber.Ctx) error {
	notFound := query.CouldNotFind("element")
	id, err := query.IntParam(c, "id", notFound)
	if err != nil {
		return err
	}
	element, err := h.repo.GetElement(c.UserContext(), id)
	if err != nil {
		return query.ReadNotFound(err, notFound)
	}
	return response.Resource(c, element)
}

// UpdateElement handles PUT /api/v1/elements/:id
func (h *ElementHandler) UpdateElement(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingElement)
	if err != nil {
		return query.WriteNotFound(err)
	}
	rec, err := query.Record(c, "element")
	if err != nil {
		return err
	}
	element, err := model.ElementFromRecord(rec)
	if err != nil {
		return err
	}
	if element.ElementID != 0 && element.ElementID != id {
		return apperr.NewValidationError("element_id", "Element id specified in the URL must match the submitted element id")
	}
	element.ElementID = id
	if err := h.repo.EditElement(c.UserContext(), element); err != nil {
		return query.WriteNotFound(err)
	}
	return response.Created(c, elementURL(id), "Update Element Request Complete")
}

// DeleteElement handles DELETE /api/v1/elements/:id. The element's course
// links are removed with it.
func (h *ElementHandler) DeleteElement(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingElement)
	if err != nil {
		return query.WriteNotFound(err)
	}
	if err := h.repo.DeleteElement(c.UserContext(), id, true); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}

// ListElementCourses handles GET /api/v1/elements/:id/courses
func (h *ElementHandler) ListElementCourses(c *fiber.Ctx) error {
	ctx := c.UserContext()
	notFound := query.CouldNotFind("element")
	id, err := query.IntParam(c, "id", notFound)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetElement(ctx, id); err != nil {
		return query.ReadNotFound(err, notFound)
	}
	courses, err := h.repo.CoursesOfElement(ctx, id)
	if err != nil {
		return err
	}
	return response.Records(c, courses)
}

// DeleteElementLinks handles DELETE /api/v1/elements/:id/courses
func (h *ElementHandler) DeleteElementLinks(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingElement)
	if err != nil {
		return query.WriteNotFound(err)
	}
	if err := h.repo.DeleteAllCourseLinksOfElement(c.UserContext(), id); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}
