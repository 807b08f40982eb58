package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-bearer-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
)

// NewErrorHandler renders errors as a go-errors ErrorResponse with the
// status from HTTPStatus. Install it as fiber.Config.ErrorHandler.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger()
	}

	return func(c *fiber.Ctx, err error) error {
		richErr := toRichError(err)
		status := HTTPStatus(richErr)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
		} else {
			logger.Info("request rejected", "path", c.Path(), "status", status, "text_code", richErr.TextCode)
		}

		if status == http.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}

		return c.Status(status).JSON(publicError(richErr).ToErrorResponse(false, nil))
	}
}

// publicError strips server side details (source file location, wrapped
// source error) from the copy sent to clients.
func publicError(err *errors.Error) *errors.Error {
	out := err.Clone()
	out.Location = nil
	out.Source = nil
	out.StackTrace = nil
	return out
}

func toRichError(err error) *errors.Error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}

	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return ErrMissingToken.Clone()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return errors.Wrap(err, errors.HTTPStatusToCategory(fiberErr.Code), fiberErr.Message).
			WithCode(fiberErr.Code).
			WithTextCode(errors.HTTPStatusToTextCode(fiberErr.Code))
	}

	return internalError(err, "An unexpected server error occurred")
}
