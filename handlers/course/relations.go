package course

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// DefaultElementHours is the allocation given to an element created
// through a course.
const DefaultElementHours = 12

const missingLink = "Specified course and element are not linked"

// ListCourseCompetencies handles GET /api/v1/courses/:id/competencies
func (h *CourseHandler) ListCourseCompetencies(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListCompetenciesOfCourse(c.UserContext(), c.Params("id"), req)
	var count int64
	if page != nil {
		count = page.Count
	}
	if err := query.EmptyAsNotFound(count, err, query.CouldNotFind("course")); err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// GetCourseCompetency handles GET /api/v1/courses/:id/competencies/:cid
func (h *CourseHandler) GetCourseCompetency(c *fiber.Ctx) error {
	ctx := c.UserContext()
	notFound := query.CouldNotFindEach("course or competency")
	if _, err := h.repo.GetCourse(ctx, c.Params("id")); err != nil {
		return query.ReadNotFound(err, notFound)
	}
	competency, err := h.repo.GetCompetency(ctx, c.Params("cid"))
	if err != nil {
		return query.ReadNotFound(err, notFound)
	}
	return response.Resource(c, competency)
}

// ListCourseElements handles GET /api/v1/courses/:id/competencies/:cid/elements
func (h *CourseHandler) ListCourseElements(c *fiber.Ctx) error {
	ctx := c.UserContext()
	courseID, competencyID := c.Params("id"), c.Params("cid")
	notFound := query.CouldNotFindEach("course or competency")

	req, err := query.Page(c)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetCourse(ctx, courseID); err != nil {
		return query.ReadNotFound(err, notFound)
	}
	if _, err := h.repo.GetCompetency(ctx, competencyID); err != nil {
		return query.ReadNotFound(err, notFound)
	}
	page, err := h.repo.ListCourseElementsOfCompetency(ctx, courseID, competencyID, req)
	var count int64
	if page != nil {
		count = page.Count
	}
	if err := query.EmptyAsNotFound(count, err, notFound); err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateCourseElement handles POST /api/v1/courses/:id/competencies/:cid/elements.
// The new element is linked to the course with DefaultElementHours.
func (h *CourseHandler) CreateCourseElement(c *fiber.Ctx) error {
	ctx := c.UserContext()
	courseID, competencyID := c.Params("id"), c.Params("cid")

	rec, err := query.Record(c, "element")
	if err != nil {
		return err
	}
	element, err := model.ElementFromRecord(rec)
	if err != nil {
		return err
	}
	if element.CompetencyID != competencyID {
		return apperr.NewValidationError("competency_id", "Competency id specified in the URL must match the submitted element competency id")
	}
	if _, err := h.repo.GetCompetency(ctx, competencyID); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NewValidationError("competency_id", "Competency id specified in the URL does not exist")
		}
		return err
	}
	if err := h.repo.AddElementToCourse(ctx, courseID, element, DefaultElementHours); err != nil {
		return err
	}
	return response.Created(c, c.Path(), "New element resource created")
}

// ListElementLinks handles GET /api/v1/courses/:id/elements
func (h *CourseHandler) ListElementLinks(c *fiber.Ctx) error {
	ctx := c.UserContext()
	courseID := c.Params("id")
	if _, err := h.repo.GetCourse(ctx, courseID); err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("course"))
	}
	links, err := h.repo.CourseElementHours(ctx, courseID)
	if err != nil {
		return err
	}
	return response.Records(c, links)
}

// CreateElementLink handles POST /api/v1/courses/:id/elements
func (h *CourseHandler) CreateElementLink(c *fiber.Ctx) error {
	courseID := c.Params("id")
	rec, err := query.Record(c, "course element")
	if err != nil {
		return err
	}
	link, err := model.CourseElementFromRecord(courseID, rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddCourseElementLink(c.UserContext(), link); err != nil {
		return err
	}
	return response.Created(c, fmt.Sprintf("%s/elements/%d", courseURL(courseID), link.ElementID),
		"New course element resource created")
}

// UpdateElementLink handles PUT /api/v1/courses/:id/elements/:eid
func (h *CourseHandler) UpdateElementLink(c *fiber.Ctx) error {
	courseID := c.Params("id")
	elementID, err := query.IntParam(c, "eid", missingLink)
	if err != nil {
		return query.WriteNotFound(err)
	}
	rec, err := query.Record(c, "course element")
	if err != nil {
		return err
	}
	rec["element_id"] = elementID
	link, err := model.CourseElementFromRecord(courseID, rec)
	if err != nil {
		return err
	}
	if err := h.repo.EditCourseElementHours(c.UserContext(), courseID, elementID, link.ElementHours); err != nil {
		return query.WriteNotFound(err)
	}
	return response.Created(c, c.Path(), "Update Course Element Request Complete")
}

// DeleteElementLink handles DELETE /api/v1/courses/:id/elements/:eid
func (h *CourseHandler) DeleteElementLink(c *fiber.Ctx) error {
	elementID, err := query.IntParam(c, "eid", missingLink)
	if err != nil {
		return query.WriteNotFound(err)
	}
	if err := h.repo.DeleteCourseElementLink(c.UserContext(), c.Params("id"), elementID); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}

// DeleteAllElementLinks handles DELETE /api/v1/courses/:id/elements
func (h *CourseHandler) DeleteAllElementLinks(c *fiber.Ctx) error {
	if err := h.repo.DeleteAllElementLinksOfCourse(c.UserContext(), c.Params("id")); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}
