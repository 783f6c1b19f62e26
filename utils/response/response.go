package response

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
)

// Message ids used in response bodies.
const (
	IDComplete        = "Request Complete"
	IDDataError       = "Data Error"
	IDNotFound        = "Not Found"
	IDInvalidPage     = "Invalid Page Number"
	IDDatabaseError   = "Database Error"
	IDUnauthorized    = "Unauthorized"
	IDForbidden       = "Forbidden"
	IDTooManyRequests = "Too Many Requests"
	IDUnavailable     = "Service Unavailable"
)

// DatabaseErrorDescription is returned for every storage failure.
const DatabaseErrorDescription = "Unable to connect to the database. Please try again later."

// Message is the body of every error and of write acknowledgements.
type Message struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// PageBody is a paginated listing. Page links are null when there is no such page.
type PageBody struct {
	Count        int64       `json:"count"`
	CurrentPage  string      `json:"current_page"`
	PreviousPage *string     `json:"previous_page"`
	NextPage     *string     `json:"next_page"`
	Results      interface{} `json:"results"`
}

// Recorder is implemented by catalog entities.
type Recorder interface {
	ToRecord() model.Record
}

// Error writes an {id, description} body with the given status.
func Error(c *fiber.Ctx, status int, id, description string) error {
	return c.Status(status).JSON(Message{ID: id, Description: description})
}

// Complete acknowledges a write with the given status.
func Complete(c *fiber.Ctx, status int, description string) error {
	return c.Status(status).JSON(Message{ID: IDComplete, Description: description})
}

// Created returns a 201 Created response pointing at location.
func Created(c *fiber.Ctx, location, description string) error {
	if location != "" {
		c.Location(location)
	}
	return Complete(c, fiber.StatusCreated, description)
}

// NoContent returns a 204 No Content response
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Success returns data with 200.
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Resource returns one entity with its own url added.
func Resource(c *fiber.Ctx, entity Recorder) error {
	rec := entity.ToRecord()
	rec["url"] = c.Path()
	return Success(c, rec)
}

// Records returns a list of entities as records.
func Records[T Recorder](c *fiber.Ctx, items []T) error {
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToRecord())
	}
	return Success(c, out)
}

// PageLink is the url of page n of the listing served at path.
func PageLink(path string, n int) string {
	return fmt.Sprintf("%s?page=%d", path, n)
}

func pageLink(path string, n *int) *string {
	if n == nil {
		return nil
	}
	link := PageLink(path, *n)
	return &link
}

// Paginated writes one page of a listing served at the current path.
func Paginated[T Recorder](c *fiber.Ctx, page *repository.Page[T]) error {
	path := c.Path()
	results := make([]model.Record, 0, len(page.Items))
	for _, item := range page.Items {
		results = append(results, item.ToRecord())
	}
	return Success(c, PageBody{
		Count:        page.Count,
		CurrentPage:  PageLink(path, page.Number),
		PreviousPage: pageLink(path, page.Previous),
		NextPage:     pageLink(path, page.Next),
		Results:      results,
	})
}

// CreatedData returns a 201 Created response carrying data.
func CreatedData(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}
