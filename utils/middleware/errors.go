package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/logger"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

// ErrorHandler maps every error returned by a handler to a status and an
// {id, description} body. Storage failures are logged and reported with a
// fixed description.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		var (
			pageErr    *apperr.InvalidPageError
			notFound   *apperr.NotFoundError
			storageErr *apperr.StorageUnavailableError
			fiberErr   *fiber.Error
		)
		switch {
		case errors.As(err, &pageErr):
			return response.Error(c, fiber.StatusNotFound, response.IDInvalidPage, pageErr.Error())
		case errors.As(err, &notFound):
			return response.Error(c, fiber.StatusNotFound, response.IDNotFound, notFound.Error())
		case apperr.IsDataError(err):
			return response.Error(c, fiber.StatusBadRequest, response.IDDataError, err.Error())
		case errors.As(err, &storageErr):
			log.Error("storage unavailable", "method", c.Method(), "path", c.Path(), "error", err)
			return response.Error(c, fiber.StatusInternalServerError, response.IDDatabaseError, response.DatabaseErrorDescription)
		case errors.As(err, &fiberErr):
			return response.Error(c, fiberErr.Code, statusID(fiberErr.Code), fiberErr.Message)
		default:
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			return response.Error(c, fiber.StatusInternalServerError, response.IDDatabaseError, response.DatabaseErrorDescription)
		}
	}
}

func statusID(code int) string {
	switch code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return response.IDDataError
	case fiber.StatusUnauthorized:
		return response.IDUnauthorized
	case fiber.StatusForbidden:
		return response.IDForbidden
	case fiber.StatusNotFound:
		return response.IDNotFound
	case fiber.StatusTooManyRequests:
		return response.IDTooManyRequests
	case fiber.StatusServiceUnavailable:
		return response.IDUnavailable
	case fiber.StatusInternalServerError:
		return response.IDDatabaseError
	default:
		return fiber.ErrBadRequest.Message
	}
}
