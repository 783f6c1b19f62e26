// Package query reads path parameters, the page query and JSON record bodies
// from catalog requests.
package query

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/repository"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

// Page reads the optional ?page= parameter. An absent parameter is the
// implicit first page.
func Page(c *fiber.Ctx) (repository.PageRequest, error) {
	raw := c.Query("page")
	if raw == "" {
		return repository.FirstPage(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return repository.PageRequest{}, apperr.NewValidationError("page", "Page number must be an integer")
	}
	return repository.PageNumber(n), nil
}

// IntParam reads an integer path parameter. A non-integer value cannot name
// any resource, so it is reported as not found with message.
func IntParam(c *fiber.Ctx, name, message string) (int, error) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, &apperr.NotFoundError{Entity: name, Key: c.Params(name), Message: message}
	}
	return n, nil
}

// Record decodes the request body as a JSON object. kind names the expected
// entity in the error message.
func Record(c *fiber.Ctx, kind string) (model.Record, error) {
	var rec model.Record
	if err := c.BodyParser(&rec); err != nil || rec == nil {
		return nil, apperr.Malformed(
			fmt.Sprintf("Data must contain complete %s information, and formatted as dictionary object", kind), err)
	}
	return rec, nil
}

// CouldNotFind is the description of a GET for a missing resource.
func CouldNotFind(what string) string {
	return fmt.Sprintf("The specified %s could not be found. Make sure it was entered correctly, or try again later.", what)
}

// CouldNotFindEach is CouldNotFind for a pair of resources.
func CouldNotFindEach(what string) string {
	return fmt.Sprintf("The specified %s could not be found. Make sure each was entered correctly, or try again later.", what)
}

// ReadNotFound rewrites a NotFoundError with the read description for what.
func ReadNotFound(err error, message string) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return &apperr.NotFoundError{Entity: nf.Entity, Key: nf.Key, Message: message}
	}
	return err
}

// WriteNotFound reports a write against a missing resource as a data error.
func WriteNotFound(err error) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return apperr.NewValidationError(nf.Entity, nf.Error())
	}
	return err
}

// EmptyAsNotFound turns an empty sub-listing into a NotFoundError. An
// explicit page of an empty listing is reported the same way.
func EmptyAsNotFound(count int64, err error, message string) error {
	var pageErr *apperr.InvalidPageError
	if errors.As(err, &pageErr) && pageErr.MaxPage == 0 {
		return &apperr.NotFoundError{Message: message}
	}
	if err == nil && count == 0 {
		return &apperr.NotFoundError{Message: message}
	}
	return err
}
