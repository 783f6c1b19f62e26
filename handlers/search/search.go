package search

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// SearchHandler serves catalog search and the cross-reference groupings.
type SearchHandler struct {
	repo *repository.Repository
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(repo *repository.Repository) *SearchHandler {
	return &SearchHandler{repo: repo}
}

// SearchResponse holds one list per entity kind. A list is null when its
// lookup failed; Unavailable names those lists.
type SearchResponse struct {
	Query        string         `json:"query"`
	Courses      []model.Record `json:"courses"`
	Competencies []model.Record `json:"competencies"`
	Elements     []model.Record `json:"elements"`
	Domains      []model.Record `json:"domains"`
	Unavailable  []string       `json:"unavailable"`
}

func records[T response.Recorder](items []T, failed bool) []model.Record {
	if failed {
		return nil
	}
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToRecord())
	}
	return out
}

// Search handles GET /api/v1/search?q=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperr.NewValidationError("q", "A search query is required")
	}

	res := h.repo.Search(c.UserContext(), q)
	failed := func(set string) bool {
		_, ok := res.Failures[set]
		return ok
	}

	unavailable := make([]string, 0, len(res.Failures))
	for set := range res.Failures {
		unavailable = append(unavailable, set)
	}
	sort.Strings(unavailable)

	return response.Success(c, SearchResponse{
		Query:        q,
		Courses:      records(res.Courses, failed("courses")),
		Competencies: records(res.Competencies, failed("competencies")),
		Elements:     records(res.Elements, failed("elements")),
		Domains:      records(res.Domains, failed("domains")),
		Unavailable:  unavailable,
	})
}

// ElementGroupings handles GET /api/v1/groupings/elements
func (h *SearchHandler) ElementGroupings(c *fiber.Ctx) error {
	rows, err := h.repo.CourseElementGroupings(c.UserContext())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []repository.CourseElementGrouping{}
	}
	return response.Success(c, rows)
}

// CompetencyGroupings handles GET /api/v1/groupings/competencies
func (h *SearchHandler) CompetencyGroupings(c *fiber.Ctx) error {
	rows, err := h.repo.CourseCompetencyGroupings(c.UserContext())
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []repository.CourseCompetencyGrouping{}
	}
	return response.Success(c, rows)
}
