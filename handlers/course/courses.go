package course

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	repo *repository.Repository
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(repo *repository.Repository) *CourseHandler {
	return &CourseHandler{repo: repo}
}

func courseURL(id string) string {
	return fmt.Sprintf("/api/v1/courses/%s", id)
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListCourses(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	rec, err := query.Record(c, "course")
	if err != nil {
		return err
	}
	course, err := model.CourseFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddCourse(c.UserContext(), course); err != nil {
		return err
	}
	return response.Created(c, courseURL(course.CourseID), "New course resource created")
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.repo.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("course"))
	}
	return response.Resource(c, course)
}

// PutCourse handles PUT /api/v1/courses/:id. The course is updated when it
// exists and created otherwise.
func (h *CourseHandler) PutCourse(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, err := query.Record(c, "course")
	if err != nil {
		return err
	}
	course, err := model.CourseFromRecord(rec)
	if err != nil {
		return err
	}
	if course.CourseID != id {
		return apperr.NewValidationError("course_id", "Course id specified in the URL must match the submitted course id")
	}

	ctx := c.UserContext()
	_, err = h.repo.GetCourse(ctx, id)
	switch {
	case err == nil:
		if err := h.repo.EditCourse(ctx, course); err != nil {
			return err
		}
		return response.Created(c, courseURL(id), "Update Course Request Complete")
	case apperr.IsNotFound(err):
		if err := h.repo.AddCourse(ctx, course); err != nil {
			return err
		}
		return response.Created(c, courseURL(id), "Add Course Request Complete")
	default:
		return err
	}
}

// DeleteCourse handles DELETE /api/v1/courses/:id. The course's element
// links are removed with it.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.repo.DeleteCourse(c.UserContext(), c.Params("id"), true); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}

// GetCourseDomain handles GET /api/v1/courses/:id/domain
func (h *CourseHandler) GetCourseDomain(c *fiber.Ctx) error {
	domain, err := h.repo.DomainOfCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return query.ReadNotFound(err, query.CouldNotFind("course"))
	}
	return response.Success(c, domain.ToRecord())
}
