package domain

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/query"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

const missingDomain = "Specified domain id does not exist"

// DomainHandler handles domain-related requests
type DomainHandler struct {
	repo *repository.Repository
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(repo *repository.Repository) *DomainHandler {
	return &DomainHandler{repo: repo}
}

func domainURL(id int) string {
	return fmt.Sprintf("/api/v1/domains/%d", id)
}

// ListDomains handles GET /api/v1/domains
func (h *DomainHandler) ListDomains(c *fiber.Ctx) error {
	req, err := query.Page(c)
	if err != nil {
		return err
	}
	page, err := h.repo.ListDomains(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Paginated(c, page)
}

// CreateDomain handles POST /api/v1/domains
func (h *DomainHandler) CreateDomain(c *fiber.Ctx) error {
	rec, err := query.Record(c, "domain")
	if err != nil {
		return err
	}
	domain, err := model.DomainFromRecord(rec)
	if err != nil {
		return err
	}
	if err := h.repo.AddDomain(c.UserContext(), domain); err != nil {
		return err
	}
	return response.Created(c, domainURL(domain.DomainID), "New domain resource created")
}

// GetDomain handles GET /api/v1/domains/:id
func (h *DomainHandler) GetDomain(c *fiber.Ctx) error {
	notFound := query.CouldNotFind("domain")
	id, err := query.IntParam(c, "id", notFound)
	if err != nil {
		return err
	}
	domain, err := h.repo.GetDomain(c.UserContext(), id)
	if err != nil {
		return query.ReadNotFound(err, notFound)
	}
	return response.Resource(c, domain)
}

// UpdateDomain handles PUT /api/v1/domains/:id. Domain ids are assigned by
// the store, so only existing domains can be updated.
func (h *DomainHandler) UpdateDomain(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingDomain)
	if err != nil {
		return query.WriteNotFound(err)
	}
	rec, err := query.Record(c, "domain")
	if err != nil {
		return err
	}
	domain, err := model.DomainFromRecord(rec)
	if err != nil {
		return err
	}
	if domain.DomainID != 0 && domain.DomainID != id {
		return apperr.NewValidationError("domain_id", "Domain id specified in the URL must match the submitted domain id")
	}
	domain.DomainID = id
	if err := h.repo.EditDomain(c.UserContext(), domain); err != nil {
		return query.WriteNotFound(err)
	}
	return response.Created(c, domainURL(id), "Update Domain Request Complete")
}

// DeleteDomain handles DELETE /api/v1/domains/:id
func (h *DomainHandler) DeleteDomain(c *fiber.Ctx) error {
	id, err := query.IntParam(c, "id", missingDomain)
	if err != nil {
		return query.WriteNotFound(err)
	}
	if err := h.repo.DeleteDomain(c.UserContext(), id); err != nil {
		return query.WriteNotFound(err)
	}
	return response.NoContent(c)
}
